package middleware

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/profilekeeper/internal/logger"
)

// Recovery builds the recovery interceptor options turning handler panics into Internal errors.
func Recovery(logger *logger.Logger) []recovery.Option {
	return []recovery.Option{
		recovery.WithRecoveryHandlerContext(func(_ context.Context, p any) error {
			logger.Error("gRPC handler panicked", "panic", fmt.Sprint(p))
			return status.Error(codes.Internal, "internal server error")
		}),
	}
}
