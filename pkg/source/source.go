// Package source resolves graph references to compound graphs.
//
// A reference is one of:
//
//   - "-": the graph JSON is read from standard input
//   - an http:// or https:// URL: the graph JSON is fetched with retries
//   - anything else: a local file path
//
// Remote fetches retry network failures, 429 and 5xx responses with
// exponential backoff. Bodies larger than
// [DefaultMaxBytes] are rejected.
package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/matzehuels/spectra/pkg/buildinfo"
	"github.com/matzehuels/spectra/pkg/core/cgraph"
	"github.com/matzehuels/spectra/pkg/errors"
	"github.com/matzehuels/spectra/pkg/graph"
	"github.com/matzehuels/spectra/pkg/retry"
)

const (
	// Stdin is the reference that reads from standard input.
	Stdin = "-"

	// DefaultMaxBytes caps remote graph bodies.
	DefaultMaxBytes = 64 << 20

	httpTimeout = 30 * time.Second
)

// Loader reads graphs from files, stdin, or HTTP.
type Loader struct {
	HTTP     *http.Client
	Stdin    io.Reader
	MaxBytes int64

	// RetryDelay is the first backoff delay for remote fetches.
	RetryDelay time.Duration
}

// NewLoader returns a Loader with a timeout-bound HTTP client reading
// stdin from os.Stdin.
func NewLoader() *Loader {
	return &Loader{
		HTTP:       &http.Client{Timeout: httpTimeout},
		Stdin:      os.Stdin,
		MaxBytes:   DefaultMaxBytes,
		RetryDelay: retry.DefaultDelay,
	}
}

// IsURL reports whether ref is fetched over HTTP.
func IsURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// Load decodes the graph that ref points to.
func (l *Loader) Load(ctx context.Context, ref string) (*cgraph.Graph, error) {
	switch {
	case ref == Stdin:
		return graph.ReadGraph(l.Stdin)
	case IsURL(ref):
		data, err := l.fetch(ctx, ref)
		if err != nil {
			return nil, err
		}
		return graph.ReadGraph(bytes.NewReader(data))
	default:
		return graph.ReadGraphFile(ref)
	}
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	var data []byte
	err := retry.Do(ctx, retry.DefaultAttempts, l.RetryDelay, func() error {
		var err error
		data, err = l.get(ctx, url)
		return err
	})
	return data, err
}

func (l *Loader) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "graph url %s", url)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "spectra/"+buildinfo.Version)

	resp, err := l.HTTP.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, retry.Retryable(fmt.Errorf("fetch %s: %w", url, err))
	}
	defer resp.Body.Close()

	if err := checkStatus(url, resp.StatusCode); err != nil {
		return nil, err
	}

	limit := l.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, retry.Retryable(fmt.Errorf("read %s: %w", url, err))
	}
	if int64(len(data)) > limit {
		return nil, errors.New(errors.ErrCodeRequestTooLong, "graph at %s exceeds %d bytes", url, limit)
	}
	return data, nil
}

func checkStatus(url string, code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "graph not found at %s", url)
	case code == http.StatusTooManyRequests || code >= 500:
		return retry.Retryable(fmt.Errorf("fetch %s: status %d", url, code))
	default:
		return errors.New(errors.ErrCodeInvalidInput, "fetch %s: status %d", url, code)
	}
}
