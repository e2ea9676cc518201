package cache

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// Breaker defaults for remote backends.
const (
	breakerFailures = 3
	breakerInterval = 60 * time.Second
	breakerTimeout  = 30 * time.Second
)

// BreakerCache guards a remote backend with a circuit breaker. After
// consecutive failures the breaker opens and calls fail fast with
// [ErrUnavailable] until the timeout elapses, so an unreachable Redis or
// MongoDB costs one error per request instead of one network timeout.
//
// Context cancellation is not counted against the backend.
type BreakerCache struct {
	inner Cache
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerCache wraps inner with a breaker named after the backend.
func NewBreakerCache(inner Cache, name string) *BreakerCache {
	return newBreakerCache(inner, gobreaker.Settings{
		Name:     name,
		Interval: breakerInterval,
		Timeout:  breakerTimeout,
	})
}

func newBreakerCache(inner Cache, st gobreaker.Settings) *BreakerCache {
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= breakerFailures
	}
	st.IsSuccessful = func(err error) bool {
		return err == nil || stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
	}
	return &BreakerCache{inner: inner, cb: gobreaker.NewCircuitBreaker(st)}
}

// State reports the breaker state: "closed", "half-open" or "open".
func (c *BreakerCache) State() string { return c.cb.State().String() }

type getResult struct {
	data []byte
	ok   bool
}

// Get reads through the breaker.
func (c *BreakerCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := c.cb.Execute(func() (interface{}, error) {
		data, ok, err := c.inner.Get(ctx, key)
		return getResult{data: data, ok: ok}, err
	})
	if err != nil {
		return nil, false, c.wrap(err)
	}
	res := v.(getResult)
	return res.data, res.ok, nil
}

// Set writes through the breaker.
func (c *BreakerCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.inner.Set(ctx, key, data, ttl)
	})
	return c.wrap(err)
}

// Delete removes through the breaker.
func (c *BreakerCache) Delete(ctx context.Context, key string) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.inner.Delete(ctx, key)
	})
	return c.wrap(err)
}

// Close closes the wrapped backend.
func (c *BreakerCache) Close() error { return c.inner.Close() }

func (c *BreakerCache) wrap(err error) error {
	if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s: %w", ErrUnavailable, c.cb.Name(), err)
	}
	return err
}
