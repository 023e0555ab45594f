package main

import (
	"context"
	"fmt"
	"log"
	"net/mail"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	grpcRouter "github.com/dtroode/voc-auth/internal/api/grpc/router"
	grpcServer "github.com/dtroode/voc-auth/internal/api/grpc/server"
	httpContext "github.com/dtroode/voc-auth/internal/api/http/context"
	"github.com/dtroode/voc-auth/internal/api/http/middleware"
	httpRouter "github.com/dtroode/voc-auth/internal/api/http/router"
	httpServer "github.com/dtroode/voc-auth/internal/api/http/server"
	"github.com/dtroode/voc-auth/internal/config"
	"github.com/dtroode/voc-auth/internal/hasher"
	"github.com/dtroode/voc-auth/internal/logger"
	"github.com/dtroode/voc-auth/internal/model"
	"github.com/dtroode/voc-auth/internal/notify"
	"github.com/dtroode/voc-auth/internal/repository/postgres"
	"github.com/dtroode/voc-auth/internal/server"
	"github.com/dtroode/voc-auth/internal/service"
	storage "github.com/dtroode/voc-auth/internal/storage/minio"
	"github.com/dtroode/voc-auth/internal/token"
	"github.com/dtroode/voc-auth/internal/worker"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel, cfg.LogFormat)

	logAppVersion()

	db, err := postgres.NewConection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	passwordHasher, err := hasher.NewBcrypt(cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("failed to create password hasher", "error", err)
	}

	tokenManager, err := token.NewJWT(token.Params{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		Expiry:   cfg.JWT.Expiry(),
	})
	if err != nil {
		logger.Fatal("failed to create token manager", "error", err)
	}

	mailer, err := newMailer(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to create mailer", "error", err)
	}

	authService := service.NewAuth(userRepo, notificationRepo, passwordHasher, tokenManager, mailer, service.AuthParams{
		MinPasswordLength: cfg.Auth.MinPasswordLength,
		StoreTimeout:      cfg.Auth.StoreTimeout,
		MailTimeout:       cfg.Auth.MailTimeout,
		ResetTokenTTL:     cfg.Auth.ResetTokenTTL,
		ResetURL:          cfg.Auth.ResetURL,
	}, logger)
	notificationService := service.NewNotifications(notificationRepo, cfg.Auth.StoreTimeout, logger)
	healthService := service.NewHealth(db, cfg.Auth.StoreTimeout)

	sweeper, err := worker.NewSweeper(userRepo, cfg.Auth.SweepSchedule, cfg.Auth.StoreTimeout, logger)
	if err != nil {
		logger.Fatal("failed to create reset token sweeper", "error", err)
	}
	sweeper.Start()

	limiter := newRateLimiter(ctx, cfg, logger)
	defer limiter.Close()

	publicRouter := httpRouter.New(
		authService,
		notificationService,
		healthService,
		tokenManager,
		httpContext.NewManager(),
		limiter,
		middleware.NewMetrics(),
		httpRouter.Params{
			RequestTimeout: cfg.HTTP.RequestTimeout,
			AllowedOrigins: cfg.HTTP.AllowedOrigins,
			RateLimit:      cfg.RateLimit.Requests,
			RateWindow:     cfg.RateLimit.Window,
		},
		logger,
	)
	opsRouter := grpcRouter.New(healthService, logger)

	servers := []model.Server{
		httpServer.NewHTTPServer(publicRouter.Register(), cfg.HTTP.Addr, cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout),
		grpcServer.NewGRPCServer(opsRouter.Register(), fmt.Sprintf(":%s", cfg.GRPC.Port)),
	}
	sl := server.NewSecurityLayer(cfg.HTTP.EnableHTTPS, cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)

	var wg sync.WaitGroup
	for _, s := range servers {
		wg.Add(1)
		go func(s model.Server) {
			defer wg.Done()
			logger.Info("Starting server on", "server", s.Name(), "address", s.Address())
			if err := s.Start(sl); err != nil {
				logger.Error("failed to start server", "server", s.Name(), "error", err)
				stop()
			}
		}(s)
	}

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	for _, s := range servers {
		if err := s.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "server", s.Name(), "error", err, "address", s.Address())
		}
	}
	if err := sweeper.Stop(shutdownCtx); err != nil {
		logger.Error("error during sweeper shutdown", "error", err)
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

// newMailer sends through SMTP when a relay is configured and archives sent mail when enabled.
func newMailer(ctx context.Context, cfg *config.Config, logger *logger.Logger) (model.Notifier, error) {
	if cfg.SMTP.Host == "" {
		logger.Warn("SMTP_HOST is not set, emails will only be logged")
		return notify.NewLog(logger), nil
	}

	smtpMailer, err := notify.NewSMTP(notify.SMTPParams{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		FromName: cfg.SMTP.FromName,
	})
	if err != nil {
		return nil, err
	}
	if !cfg.Archive.Enabled {
		return smtpMailer, nil
	}

	archive, err := storage.NewClient(ctx, storage.Params{
		Endpoint:  cfg.Archive.Endpoint,
		AccessKey: cfg.Archive.AccessKey,
		SecretKey: cfg.Archive.SecretKey,
		Bucket:    cfg.Archive.Bucket,
		UseSSL:    cfg.Archive.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mail archive: %w", err)
	}

	from := mail.Address{Name: cfg.SMTP.FromName, Address: cfg.SMTP.From}
	return notify.NewArchive(smtpMailer, archive, from, logger), nil
}

// newRateLimiter shares counters through redis when configured and falls back to memory.
func newRateLimiter(ctx context.Context, cfg *config.Config, logger *logger.Logger) middleware.RateLimiter {
	if cfg.Redis.Addr == "" {
		return middleware.NewMemoryRateLimiter()
	}

	limiter, err := middleware.NewRedisRateLimiter(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Warn("redis is unavailable, rate limits are kept in memory", "error", err)
		return middleware.NewMemoryRateLimiter()
	}
	return limiter
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
