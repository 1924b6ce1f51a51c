package model

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxKeyLength is the longest key, in bytes, a backend accepts.
const MaxKeyLength = 250

var namespacePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateKey reports whether key can address a profile entry.
// The returned error wraps ErrInvalidKey.
func ValidateKey(key string) error {
	switch {
	case key == "":
		return fmt.Errorf("%w: key is empty", ErrInvalidKey)
	case len(key) > MaxKeyLength:
		return fmt.Errorf("%w: key is longer than %d bytes", ErrInvalidKey, MaxKeyLength)
	case !utf8.ValidString(key):
		return fmt.Errorf("%w: key is not valid UTF-8", ErrInvalidKey)
	case strings.ContainsRune(key, '/'):
		return fmt.Errorf("%w: key contains '/'", ErrInvalidKey)
	case strings.IndexFunc(key, unicode.IsControl) >= 0:
		return fmt.Errorf("%w: key contains control characters", ErrInvalidKey)
	}
	return nil
}

// ValidateNamespace reports whether ns is usable as a backend key prefix.
func ValidateNamespace(ns string) error {
	if !namespacePattern.MatchString(ns) {
		return fmt.Errorf("namespace %q must match %s", ns, namespacePattern.String())
	}
	return nil
}
