package api

import (
	"math"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RetryConfig tunes the transport-level retry decorator.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetryConfig returns the standard backoff schedule.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 500 * time.Millisecond,
		MaxWait:     10 * time.Second,
		Multiplier:  2.0,
	}
}

// retryTransport retries idempotent requests with exponential backoff and
// jitter. Only GETs are retried; mutating calls surface their first error
// so a review is never double-submitted.
type retryTransport struct {
	base http.RoundTripper
	cfg  RetryConfig
}

// WithRetries wraps the client's HTTP transport with the retry decorator.
func WithRetries(cfg RetryConfig) Option {
	return func(c *Client) {
		base := c.http.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		wrapped := *c.http
		wrapped.Transport = &retryTransport{base: base, cfg: cfg}
		c.http = &wrapped
	}
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.base.RoundTrip(req)
	}

	var resp *http.Response
	var err error

	for attempt := range t.cfg.MaxAttempts {
		resp, err = t.base.RoundTrip(req)
		if err == nil && !retryableStatus(resp.StatusCode) {
			return resp, nil
		}
		if req.Context().Err() != nil {
			break
		}
		if attempt == t.cfg.MaxAttempts-1 {
			break
		}

		wait := t.backoff(attempt, resp)
		if resp != nil {
			resp.Body.Close()
		}

		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(wait):
		}
	}

	return resp, err
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// backoff computes the wait for the given attempt, honoring Retry-After
// on rate limits.
func (t *retryTransport) backoff(attempt int, resp *http.Response) time.Duration {
	if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
		if secs, err := strconv.Atoi(strings.TrimSpace(resp.Header.Get("Retry-After"))); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}

	wait := float64(t.cfg.InitialWait) * math.Pow(t.cfg.Multiplier, float64(attempt))
	if wait > float64(t.cfg.MaxWait) {
		wait = float64(t.cfg.MaxWait)
	}

	// ±20% jitter.
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
