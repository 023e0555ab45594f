package handler

import (
	"context"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dtroode/voc-auth/internal/logger"
	"github.com/dtroode/voc-auth/internal/model"
)

// ServiceName is the name reported through the health protocol.
const ServiceName = "voc.auth.v1.Auth"

// HealthChecker reports readiness.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// Health implements the standard gRPC health protocol on top of the database probe.
type Health struct {
	healthpb.UnimplementedHealthServer

	checker HealthChecker
	logger  *logger.Logger
}

func NewHealth(checker HealthChecker, logger *logger.Logger) *Health {
	return &Health{checker: checker, logger: logger}
}

// Check answers for the server as a whole ("") and for ServiceName.
func (h *Health) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if svc := req.GetService(); svc != "" && svc != ServiceName {
		return nil, handleError(model.NewNotFoundError("unknown service " + svc))
	}

	if err := h.checker.Check(ctx); err != nil {
		h.logger.Warn("gRPC handler: health check failed",
			"error", err.Error())
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}

	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}
