package model

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ProfileStore defines persistence operations for profiles.
type ProfileStore interface {
	GetAll(ctx context.Context) ([]ProfileEntry, error)
	GetByKey(ctx context.Context, key string) (Profile, error)
	Save(ctx context.Context, key string, profile Profile) error
	Delete(ctx context.Context, key string) error
}

// HealthChecker reports whether a backend is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Profile represents a stored profile document.
type Profile struct {
	Name       string            `json:"name"`
	Bio        string            `json:"bio,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Normalize returns a copy of p that owns its attribute map.
// An empty attribute map is normalized to nil.
func (p Profile) Normalize() Profile {
	if len(p.Attributes) == 0 {
		p.Attributes = nil
		return p
	}
	attrs := make(map[string]string, len(p.Attributes))
	for k, v := range p.Attributes {
		attrs[k] = v
	}
	p.Attributes = attrs
	return p
}

// Validate reports whether every text field survives the JSON round trip
// unchanged and is accepted by all backends. The returned error wraps ErrInvalidProfile.
func (p Profile) Validate() error {
	if err := validateText("name", p.Name); err != nil {
		return err
	}
	if err := validateText("bio", p.Bio); err != nil {
		return err
	}
	for k, v := range p.Attributes {
		if err := validateText("attribute name", k); err != nil {
			return err
		}
		if err := validateText(fmt.Sprintf("attribute %q", k), v); err != nil {
			return err
		}
	}
	return nil
}

func validateText(field, s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: %s is not valid UTF-8", ErrInvalidProfile, field)
	}
	if strings.ContainsRune(s, 0) {
		return fmt.Errorf("%w: %s contains a NUL character", ErrInvalidProfile, field)
	}
	return nil
}

// ProfileEntry is a profile together with the key it is stored under.
type ProfileEntry struct {
	Key     string  `json:"key"`
	Profile Profile `json:"profile"`
}
