// Package repository holds helpers shared by the profile store backends.
// Backends live in subpackages and implement model.ProfileStore.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dtroode/profilekeeper/internal/model"
)

// Encode serializes a profile into its stored JSON form.
func Encode(p model.Profile) ([]byte, error) {
	data, err := json.Marshal(p.Normalize())
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}
	return data, nil
}

// Decode parses a stored payload. Failures wrap model.ErrCorruptEntry.
func Decode(key string, data []byte) (model.Profile, error) {
	var p model.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return model.Profile{}, fmt.Errorf("%w: key %q: %w", model.ErrCorruptEntry, key, err)
	}
	return p.Normalize(), nil
}

// CheckContext fails with model.ErrCancelled when ctx is already done,
// so that no remote call is attempted.
func CheckContext(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to %s: %w: %w", op, model.ErrCancelled, err)
	}
	return nil
}

// BackendError classifies a driver error returned during op.
// Errors caused by the caller's context map to model.ErrCancelled,
// everything else to model.ErrStoreUnavailable.
func BackendError(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("failed to %s: %w: %w", op, model.ErrCancelled, err)
	}
	return fmt.Errorf("failed to %s: %w: %w", op, model.ErrStoreUnavailable, err)
}
