package errors

import (
	"math"
	"strings"
	"unicode"
)

// RequirePositive returns an INVALID_CONFIG error unless v is a finite value
// strictly greater than zero. NaN is rejected.
func RequirePositive(field string, v float64) error {
	if !(v > 0) || math.IsInf(v, 1) {
		return New(ErrCodeInvalidConfig, "%s must be a positive finite number, got %v", field, v)
	}
	return nil
}

// RequirePositiveInt returns an INVALID_CONFIG error unless v > 0.
func RequirePositiveInt(field string, v int) error {
	if v <= 0 {
		return New(ErrCodeInvalidConfig, "%s must be positive, got %d", field, v)
	}
	return nil
}

// RequireOneOf returns an INVALID_CONFIG error unless v is one of allowed.
func RequireOneOf(field, v string, allowed ...string) error {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return New(ErrCodeInvalidConfig, "invalid %s: %q (must be one of: %s)", field, v, strings.Join(allowed, ", "))
}

// ValidateNodeID validates a vertex identifier read from untrusted input.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters
//   - Maximum length of 256 characters
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidGraph, "node ID cannot be empty")
	}
	if len(id) > 256 {
		return New(ErrCodeInvalidGraph, "node ID too long (max 256 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidGraph, "node ID contains invalid control characters")
		}
	}
	return nil
}
