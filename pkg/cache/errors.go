package cache

import "errors"

// Sentinel errors for caching operations.
var (
	// ErrUnavailable is returned when a remote backend cannot be reached.
	ErrUnavailable = errors.New("cache backend unavailable")

	// ErrUnsupportedBackend is returned by Open for an unknown spec.
	ErrUnsupportedBackend = errors.New("unsupported cache backend")
)
