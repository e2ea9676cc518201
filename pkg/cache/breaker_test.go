package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
)

// flakyCache fails every call while down is set and counts calls that reach it.
type flakyCache struct {
	data  map[string][]byte
	down  bool
	calls int
}

var errBackendDown = errors.New("connection refused")

func (f *flakyCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.calls++
	if f.down {
		return nil, false, errBackendDown
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *flakyCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	f.calls++
	if f.down {
		return errBackendDown
	}
	f.data[key] = data
	return nil
}

func (f *flakyCache) Delete(_ context.Context, key string) error {
	f.calls++
	if f.down {
		return errBackendDown
	}
	delete(f.data, key)
	return nil
}

func (f *flakyCache) Close() error { return nil }

func newTestBreaker(inner Cache) *BreakerCache {
	return newBreakerCache(inner, gobreaker.Settings{Name: "test", Timeout: time.Hour})
}

func TestBreakerCachePassesThrough(t *testing.T) {
	ctx := context.Background()
	inner := &flakyCache{data: map[string][]byte{}}
	c := newTestBreaker(inner)

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || string(data) != "v" {
		t.Fatalf("Get = %q, %v, %v", data, ok, err)
	}
	if _, ok, _ := c.Get(ctx, "missing"); ok {
		t.Error("Get(missing) should miss")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if c.State() != "closed" {
		t.Errorf("State = %s, want closed", c.State())
	}
}

func TestBreakerCacheTrips(t *testing.T) {
	ctx := context.Background()
	inner := &flakyCache{data: map[string][]byte{}, down: true}
	c := newTestBreaker(inner)

	for i := range breakerFailures {
		if _, _, err := c.Get(ctx, "k"); !errors.Is(err, errBackendDown) {
			t.Fatalf("call %d: err = %v, want backend error", i, err)
		}
	}
	if c.State() != "open" {
		t.Fatalf("State = %s, want open", c.State())
	}

	calls := inner.calls
	_, _, err := c.Get(ctx, "k")
	if !errors.Is(err, ErrUnavailable) || !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("open breaker err = %v", err)
	}
	if err := c.Set(ctx, "k", []byte("v"), 0); !errors.Is(err, ErrUnavailable) {
		t.Errorf("open breaker Set err = %v", err)
	}
	if inner.calls != calls {
		t.Errorf("open breaker reached backend %d times", inner.calls-calls)
	}
}

func TestBreakerCacheIgnoresCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := newTestBreaker(ctxCache{})

	for range breakerFailures + 2 {
		if _, _, err := c.Get(ctx, "k"); !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	}
	if c.State() != "closed" {
		t.Errorf("State = %s, want closed", c.State())
	}
}

// ctxCache returns the context error from every call.
type ctxCache struct{}

func (ctxCache) Get(ctx context.Context, _ string) ([]byte, bool, error) { return nil, false, ctx.Err() }
func (ctxCache) Set(ctx context.Context, _ string, _ []byte, _ time.Duration) error {
	return ctx.Err()
}
func (ctxCache) Delete(ctx context.Context, _ string) error { return ctx.Err() }
func (ctxCache) Close() error { return nil }
