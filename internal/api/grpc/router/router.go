package router

import (
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/dtroode/profilekeeper/internal/api/grpc/handler"
	"github.com/dtroode/profilekeeper/internal/api/grpc/middleware"
	"github.com/dtroode/profilekeeper/internal/logger"
	"github.com/dtroode/profilekeeper/internal/model"
)

// Router represents the admin gRPC router.
// It registers the health service backed by the profile store.
type Router struct {
	checker     model.HealthChecker
	pingTimeout time.Duration
	logger      *logger.Logger
}

// New creates new gRPC Router instance.
func New(checker model.HealthChecker, pingTimeout time.Duration, logger *logger.Logger) *Router {
	return &Router{
		checker:     checker,
		pingTimeout: pingTimeout,
		logger:      logger,
	}
}

// Register builds the gRPC server with logging and recovery interceptors,
// the health service and server reflection.
func (r *Router) Register() *grpc.Server {
	logging := middleware.NewLogging(r.logger)
	recoveryOpts := middleware.Recovery(r.logger)

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logging.HandleGRPC,
			recovery.UnaryServerInterceptor(recoveryOpts...),
		),
		grpc.ChainStreamInterceptor(
			recovery.StreamServerInterceptor(recoveryOpts...),
		),
	)
	healthpb.RegisterHealthServer(s, handler.NewHealth(r.checker, r.pingTimeout, r.logger))
	reflection.Register(s)

	return s
}
