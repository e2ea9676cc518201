package cache

import (
	"context"
	"fmt"
	"strings"
)

// Backend names accepted by Open besides URLs.
const (
	BackendFile = "file"
	BackendNone = "none"
)

// Open returns the cache described by spec:
//
//	"" or "file"                  FileCache in dir
//	"none"                        NullCache
//	"redis://..." "rediss://..."  RedisCache behind a BreakerCache
//	"mongodb://..." "mongodb+srv://..."  MongoCache behind a BreakerCache
func Open(ctx context.Context, spec, dir string) (Cache, error) {
	var (
		c   Cache
		err error
	)
	switch {
	case spec == "" || spec == BackendFile:
		c, err = NewFileCache(dir)
	case spec == BackendNone:
		c = NewNullCache()
	case strings.HasPrefix(spec, "redis://"), strings.HasPrefix(spec, "rediss://"):
		var rc *RedisCache
		if rc, err = NewRedisCache(ctx, spec); err == nil {
			c = NewBreakerCache(rc, "redis")
		}
	case strings.HasPrefix(spec, "mongodb://"), strings.HasPrefix(spec, "mongodb+srv://"):
		var mc *MongoCache
		if mc, err = NewMongoCache(ctx, spec); err == nil {
			c = NewBreakerCache(mc, "mongodb")
		}
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedBackend, spec)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
