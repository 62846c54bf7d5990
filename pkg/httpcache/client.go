package httpcache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

// ErrRateLimited is returned when the server answers 429. It is not retried.
var ErrRateLimited = errors.New("rate limited")

// HTTPClient is the subset of *http.Client used here.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client performs cached GET requests with retries.
type Client struct {
	cache    *OtterCache
	http     HTTPClient
	logger   *slog.Logger
	attempts uint
	delay    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithAttempts sets how many times a request is tried.
func WithAttempts(n uint) Option {
	return func(c *Client) { c.attempts = n }
}

// WithRetryDelay sets the base delay between attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.delay = d }
}

// NewClient returns a client. A nil cache disables caching and a nil
// httpClient uses a client with a 30 second timeout.
func NewClient(cache *OtterCache, httpClient HTTPClient, logger *slog.Logger, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		cache:    cache,
		http:     httpClient,
		logger:   logger,
		attempts: 5,
		delay:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the body of url, from the cache when present.
// Server errors and transport failures are retried with backoff; 429 and
// other non-200 statuses are returned immediately.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if c.cache != nil {
		if data, _, ok := c.cache.Get(url); ok {
			return data, nil
		}
	}

	start := time.Now()
	var body []byte
	var etag string

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("building request: %w", err))
			}
			resp, err := c.http.Do(req)
			if err != nil {
				c.logger.Warn("request failed", "url", url, "error", err, "duration", time.Since(start))
				return err
			}
			defer func() {
				if err := resp.Body.Close(); err != nil {
					c.logger.Debug("failed to close response body", "error", err)
				}
			}()

			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				return retry.Unrecoverable(fmt.Errorf("%w: %s", ErrRateLimited, url))
			case resp.StatusCode >= 500:
				c.logger.Warn("server error", "url", url, "status", resp.StatusCode)
				return fmt.Errorf("server error from %s: %d", url, resp.StatusCode)
			case resp.StatusCode != http.StatusOK:
				return retry.Unrecoverable(fmt.Errorf("unexpected status from %s: %d", url, resp.StatusCode))
			default:
			}

			data, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("reading body: %w", err)
			}
			body = data
			etag = resp.Header.Get("ETag")
			return nil
		},
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.MaxDelay(2*time.Minute),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Info("retrying request", "url", url, "attempt", n+1, "error", err)
		}),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		c.logger.Error("request failed after retries", "url", url, "error", err, "duration", time.Since(start))
		return nil, err
	}

	c.logger.Debug("request completed", "url", url, "size", len(body), "duration", time.Since(start))
	if c.cache != nil {
		c.cache.Set(url, body, etag)
	}
	return body, nil
}
