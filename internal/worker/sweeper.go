package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dtroode/voc-auth/internal/logger"
	"github.com/dtroode/voc-auth/internal/model"
)

// Sweeper periodically drops reset tokens that expired without being used.
type Sweeper struct {
	users   model.UserStore
	timeout time.Duration
	logger  *logger.Logger
	now     func() time.Time
	cron    *cron.Cron
}

// NewSweeper schedules the sweep. schedule accepts standard cron specs and descriptors such as "@every 15m".
func NewSweeper(users model.UserStore, schedule string, timeout time.Duration, logger *logger.Logger) (*Sweeper, error) {
	s := &Sweeper{
		users:   users,
		timeout: timeout,
		logger:  logger,
		now:     time.Now,
	}

	cl := cronLogger{logger: logger}
	s.cron = cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	return s, nil
}

func (s *Sweeper) Start() {
	s.logger.Info("Reset token sweeper: started")
	s.cron.Start()
}

// Stop waits for a running sweep to finish or for ctx to end.
func (s *Sweeper) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("Reset token sweeper: stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Sweep clears every reset token that is expired at the current time.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.users.ClearExpiredResetTokens(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired reset tokens: %w", err)
	}
	return n, nil
}

func (s *Sweeper) run() {
	n, err := s.Sweep(context.Background())
	if err != nil {
		s.logger.Error("Reset token sweeper: sweep failed",
			"error", err.Error())
		return
	}
	if n > 0 {
		s.logger.Info("Reset token sweeper: cleared expired tokens",
			"count", n)
	}
}

// cronLogger adapts Logger to cron.Logger.
type cronLogger struct {
	logger *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err.Error())...)
}
