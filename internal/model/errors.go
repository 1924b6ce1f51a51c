package model

import "errors"

var (
	// ErrInvalidKey is returned for keys the backends cannot address.
	ErrInvalidKey = errors.New("invalid profile key")
	// ErrInvalidProfile is returned for payloads that cannot be stored losslessly.
	ErrInvalidProfile = errors.New("invalid profile")
	// ErrNotFound is returned when no entry exists for a key.
	ErrNotFound = errors.New("profile not found")
	// ErrStoreUnavailable wraps connectivity failures of the backend.
	ErrStoreUnavailable = errors.New("profile store unavailable")
	// ErrCancelled is returned when the caller's context ends first.
	ErrCancelled = errors.New("profile store operation cancelled")
	// ErrCorruptEntry is returned when a stored payload cannot be decoded.
	ErrCorruptEntry = errors.New("corrupt profile entry")
)
