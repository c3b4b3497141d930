// Package fetch provides the rate-limited HTTP client used to pull
// company pages. One Client is shared by all workers so the rpm cap
// holds for the whole process.
package fetch

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"ycscout/internal/logging"

	"golang.org/x/time/rate"
)

// maxBodySize caps how much of a response we read. Company pages are
// well under this.
const maxBodySize = 4 << 20

// Options configures a Client.
type Options struct {
	RPM       int           // max requests per minute, shared across workers
	Retries   int           // additional attempts after the first failure
	Timeout   time.Duration // per-request timeout
	UserAgent string
}

// Client fetches pages politely: shared token bucket, browser-like
// headers, exponential backoff with jitter on failure.
type Client struct {
	http        *http.Client
	limiter     *rate.Limiter
	retries     int
	userAgent   string
	backoffBase time.Duration
}

// New builds a Client from opts, filling zero values with defaults.
func New(opts Options) *Client {
	if opts.RPM < 1 {
		opts.RPM = 120
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
			"(KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	}
	return &Client{
		http: &http.Client{
			Timeout: opts.Timeout,
		},
		limiter:     rate.NewLimiter(rate.Limit(opts.RPM)/60.0, 1),
		retries:     opts.Retries,
		userAgent:   opts.UserAgent,
		backoffBase: time.Minute / time.Duration(opts.RPM),
	}
}

// Get performs a single rate-limited request and returns the body.
func (c *Client) Get(ctx context.Context, url string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}
	return string(body), nil
}

// GetWithRetry fetches with exponential backoff and jitter. The backoff
// base derives from the rpm delay, so a stricter rate limit also backs
// off more patiently.
func (c *Client) GetWithRetry(ctx context.Context, url string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= c.retries+1; attempt++ {
		body, err := c.Get(ctx, url)
		if err == nil {
			if attempt > 1 {
				logging.Fetch("recovered on attempt %d: %s", attempt, url)
			}
			return body, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		logging.FetchDebug("attempt %d failed for %s: %v", attempt, url, err)

		if attempt > c.retries {
			break
		}
		sleep := c.backoffBase*time.Duration(1<<(attempt-1)) + time.Duration(rand.Int63n(int64(500*time.Millisecond)))
		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	logging.Fetch("giving up after %d attempts: %s", c.retries+1, url)
	return "", lastErr
}
