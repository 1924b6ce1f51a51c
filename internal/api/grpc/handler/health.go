package handler

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/dtroode/profilekeeper/internal/logger"
	"github.com/dtroode/profilekeeper/internal/model"
)

// ProfileStoreService is the health service name reported for the profile store.
// The empty name stands for the whole server and reports the same status.
const ProfileStoreService = "profilekeeper.ProfileStore"

// Health answers grpc.health.v1 checks by pinging the profile store.
type Health struct {
	healthpb.UnimplementedHealthServer

	checker model.HealthChecker
	timeout time.Duration
	logger  *logger.Logger
}

func NewHealth(checker model.HealthChecker, timeout time.Duration, logger *logger.Logger) *Health {
	return &Health{checker: checker, timeout: timeout, logger: logger}
}

func (h *Health) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	switch req.GetService() {
	case "", ProfileStoreService:
	default:
		return nil, status.Errorf(codes.NotFound, "unknown service %q", req.GetService())
	}

	if err := ctx.Err(); err != nil {
		return nil, handleError(model.ErrCancelled)
	}

	pingCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	if err := h.checker.Ping(pingCtx); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, handleError(model.ErrCancelled)
		}
		h.logger.Warn("gRPC health: store ping failed", "error", err.Error())
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}

	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}
