// Package retry runs operations that can fail transiently.
//
// Callers mark transient failures (refused connections, 429 and 5xx
// responses) with [Retryable]; [Do] retries only those and returns any
// other error at once. The remote cache backends use it to connect and
// the graph loader uses it to fetch URLs.
package retry

import (
	"context"
	"errors"
	"time"
)

// Defaults used by [WithBackoff].
const (
	DefaultAttempts = 3
	DefaultDelay    = time.Second
)

// Error wraps an error to indicate it should trigger a retry.
type Error struct{ Err error }

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Retryable wraps err as an [Error]. It returns nil for nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Err: err}
}

// IsRetryable reports whether err is wrapped with [Retryable].
func IsRetryable(err error) bool {
	return errors.As(err, new(*Error))
}

// Do executes fn up to attempts times, doubling delay after each retryable
// failure. It returns the last error if all attempts fail, or ctx.Err() if
// ctx is canceled while waiting.
func Do(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// WithBackoff calls [Do] with [DefaultAttempts] and [DefaultDelay].
func WithBackoff(ctx context.Context, fn func() error) error {
	return Do(ctx, DefaultAttempts, DefaultDelay, fn)
}
