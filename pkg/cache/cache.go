// Package cache provides pluggable storage for computed layouts and rendered
// artifacts.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under an XDG cache directory (CLI)
//   - [RedisCache]: shared cache for API deployments
//   - [MongoCache]: document store with a TTL index on expiry
//   - [NullCache]: disables caching
//
// [Open] picks a backend from a spec string such as "file", "none",
// "redis://localhost:6379/0" or "mongodb://localhost:27017". Remote backends
// are wrapped in a [BreakerCache] so an outage fails fast.
//
// # Keys
//
// A [Keyer] derives keys from content hashes and the options that influence
// the cached value, so a layout computed with a different seed or sample
// size never collides with another one. [NewScopedKeyer] prefixes keys for
// namespace isolation.
package cache

import (
	"context"
	"time"
)

// Default TTLs for cached values.
const (
	// LayoutTTL is how long computed layouts stay cached.
	LayoutTTL = 7 * 24 * time.Hour

	// ArtifactTTL is how long rendered artifacts stay cached.
	ArtifactTTL = 7 * 24 * time.Hour
)

// Cache stores opaque byte values under string keys.
// A miss is reported as ok == false with a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
