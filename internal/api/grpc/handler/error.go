package handler

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/profilekeeper/internal/model"
)

func handleError(err error) error {
	switch {
	case errors.Is(err, model.ErrInvalidKey):
		return status.Error(codes.InvalidArgument, model.ErrInvalidKey.Error())
	case errors.Is(err, model.ErrInvalidProfile):
		return status.Error(codes.InvalidArgument, model.ErrInvalidProfile.Error())
	case errors.Is(err, model.ErrNotFound):
		return status.Error(codes.NotFound, model.ErrNotFound.Error())
	case errors.Is(err, model.ErrStoreUnavailable):
		return status.Error(codes.Unavailable, model.ErrStoreUnavailable.Error())
	case errors.Is(err, model.ErrCancelled):
		return status.Error(codes.DeadlineExceeded, model.ErrCancelled.Error())
	default:
		return status.Error(codes.Internal, "internal server error")
	}
}
