package router

import (
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/dtroode/voc-auth/internal/api/grpc/handler"
	"github.com/dtroode/voc-auth/internal/api/grpc/middleware"
	"github.com/dtroode/voc-auth/internal/logger"
)

// Router represents the operational gRPC router.
// It exposes the health protocol and server reflection for orchestrators and tooling.
type Router struct {
	healthChecker handler.HealthChecker
	logger        *logger.Logger
}

// New creates new gRPC Router instance.
//
// Parameters:
//   - healthChecker: The readiness probe
//   - logger: The logger for call logging
//
// Returns a pointer to the newly created Router instance.
func New(healthChecker handler.HealthChecker, logger *logger.Logger) *Router {
	return &Router{
		healthChecker: healthChecker,
		logger:        logger,
	}
}

// Register registers all gRPC services and interceptors.
//
// Returns the configured gRPC server instance.
func (r *Router) Register() *grpc.Server {
	interceptorLogger := middleware.InterceptorLogger(r.logger)
	recoverer := middleware.NewRecovery(r.logger)

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logging.UnaryServerInterceptor(interceptorLogger, middleware.LoggingOptions()...),
			recovery.UnaryServerInterceptor(recovery.WithRecoveryHandlerContext(recoverer.HandlePanic)),
		),
		grpc.ChainStreamInterceptor(
			logging.StreamServerInterceptor(interceptorLogger, middleware.LoggingOptions()...),
			recovery.StreamServerInterceptor(recovery.WithRecoveryHandlerContext(recoverer.HandlePanic)),
		),
	)

	healthpb.RegisterHealthServer(s, handler.NewHealth(r.healthChecker, r.logger))
	reflection.Register(s)

	return s
}
