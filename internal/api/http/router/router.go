package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dtroode/voc-auth/internal/api/http/handler"
	"github.com/dtroode/voc-auth/internal/api/http/middleware"
	"github.com/dtroode/voc-auth/internal/logger"
	"github.com/dtroode/voc-auth/internal/model"
)

// Params holds transport-level limits of the public API.
type Params struct {
	RequestTimeout time.Duration
	AllowedOrigins []string
	RateLimit      int
	RateWindow     time.Duration
}

// Router represents the public HTTP router.
// It wires handlers to routes and sets up the middleware chain.
type Router struct {
	authService         handler.AuthService
	notificationService handler.NotificationService
	healthChecker       handler.HealthChecker
	tokens              middleware.TokenValidator
	contextManager      model.ContextManager
	limiter             middleware.RateLimiter
	metrics             *middleware.Metrics
	params              Params
	logger              *logger.Logger
}

// New creates new HTTP Router instance.
//
// Parameters:
//   - authService: The credential lifecycle service
//   - notificationService: The in-app notification service
//   - healthChecker: The readiness probe
//   - tokens: Bearer token validator for protected routes
//   - contextManager: Carries the authenticated identity
//   - limiter: Rate limiter backend, nil disables limiting
//   - metrics: Request metrics collectors
//   - params: Transport limits
//   - logger: The logger for request logging
//
// Returns a pointer to the newly created Router instance.
func New(
	authService handler.AuthService,
	notificationService handler.NotificationService,
	healthChecker handler.HealthChecker,
	tokens middleware.TokenValidator,
	contextManager model.ContextManager,
	limiter middleware.RateLimiter,
	metrics *middleware.Metrics,
	params Params,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:         authService,
		notificationService: notificationService,
		healthChecker:       healthChecker,
		tokens:              tokens,
		contextManager:      contextManager,
		limiter:             limiter,
		metrics:             metrics,
		params:              params,
		logger:              logger,
	}
}

// Register builds the handler tree.
//
// Returns the root handler to be served.
func (r *Router) Register() http.Handler {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.tokens, r.contextManager, r.logger)
	rateLimit := middleware.NewRateLimit(r.limiter, r.params.RateLimit, r.params.RateWindow, r.metrics, r.logger)

	mux := chi.NewRouter()
	mux.Use(
		chiMiddleware.RequestID,
		chiMiddleware.RealIP,
		logging.Handle,
		r.metrics.Handle,
		chiMiddleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins:   r.params.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
	)
	if r.params.RequestTimeout > 0 {
		mux.Use(chiMiddleware.Timeout(r.params.RequestTimeout))
	}

	health := handler.NewHealth(r.healthChecker, r.logger)
	mux.Get("/healthz", health.Check)
	mux.Method(http.MethodGet, "/metrics", r.metrics.Handler())

	r.registerAuthRoutes(mux, rateLimit)
	r.registerAccountRoutes(mux, authenticate)

	return mux
}

func (r *Router) registerAuthRoutes(mux chi.Router, rateLimit *middleware.RateLimit) {
	auth := handler.NewAuth(r.authService, r.contextManager, r.logger)

	mux.Post("/register", auth.Register)
	mux.With(rateLimit.Handle("/login")).Post("/login", auth.Login)
	mux.With(rateLimit.Handle("/forget-password")).Post("/forget-password", auth.ForgotPassword)
	mux.With(rateLimit.Handle("/reset-password")).Post("/reset-password", auth.ResetPassword)
	mux.With(rateLimit.Handle("/verify-reset-token")).Post("/verify-reset-token", auth.VerifyResetToken)
	mux.With(rateLimit.Handle("/update-password")).Put("/update-password", auth.UpdatePassword)
}

func (r *Router) registerAccountRoutes(mux chi.Router, authenticate *middleware.Authenticate) {
	auth := handler.NewAuth(r.authService, r.contextManager, r.logger)
	notifications := handler.NewNotification(r.notificationService, r.contextManager, r.logger)

	mux.Group(func(protected chi.Router) {
		protected.Use(authenticate.Handle)
		protected.Get("/me", auth.Me)
		protected.Get("/notifications", notifications.List)
		protected.Post("/notifications/{id}/read", notifications.MarkRead)
	})
}
