package handler

import (
	"context"
	"net/http"

	"github.com/dtroode/voc-auth/internal/logger"
)

// HealthChecker reports readiness.
type HealthChecker interface {
	Check(ctx context.Context) error
}

type Health struct {
	checker HealthChecker
	logger  *logger.Logger
}

func NewHealth(checker HealthChecker, logger *logger.Logger) *Health {
	return &Health{checker: checker, logger: logger}
}

// Check handles GET /healthz.
func (h *Health) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.checker.Check(r.Context()); err != nil {
		h.logger.Warn("HTTP handler: health check failed",
			"error", err.Error())
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
