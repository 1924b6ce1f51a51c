package handler

import (
	"errors"
	"net/http"

	"github.com/dtroode/profilekeeper/internal/model"
)

// statusFor maps store errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidKey), errors.Is(err, model.ErrInvalidProfile):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, model.ErrCancelled):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the client-facing text for err.
// Driver details are not exposed.
func messageFor(err error) string {
	switch {
	case errors.Is(err, model.ErrInvalidKey):
		return model.ErrInvalidKey.Error()
	case errors.Is(err, model.ErrInvalidProfile):
		return model.ErrInvalidProfile.Error()
	case errors.Is(err, model.ErrNotFound):
		return model.ErrNotFound.Error()
	case errors.Is(err, model.ErrStoreUnavailable):
		return model.ErrStoreUnavailable.Error()
	case errors.Is(err, model.ErrCancelled):
		return model.ErrCancelled.Error()
	case errors.Is(err, model.ErrCorruptEntry):
		return model.ErrCorruptEntry.Error()
	default:
		return "internal server error"
	}
}
