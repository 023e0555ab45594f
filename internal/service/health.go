package service

import (
	"context"
	"time"

	"github.com/dtroode/voc-auth/internal/model"
)

// Pinger reports whether a backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health checks the dependencies the service cannot work without.
type Health struct {
	db      Pinger
	timeout time.Duration
}

func NewHealth(db Pinger, timeout time.Duration) *Health {
	return &Health{db: db, timeout: timeout}
}

// Check returns a transient error when the database does not answer in time.
func (h *Health) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		return model.NewTransientError("database unavailable", err)
	}
	return nil
}
