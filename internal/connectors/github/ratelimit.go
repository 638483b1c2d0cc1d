package github

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/prsync/internal/logger"
)

const (
	// GitHubRateLimit is the authenticated rate limit (5000/hour).
	GitHubRateLimit = 5000

	// DefaultSecondaryWait is slept when a secondary rate limit carries no Retry-After.
	DefaultSecondaryWait = time.Minute

	// HeaderRateLimit is the rate limit header.
	HeaderRateLimit = "X-RateLimit-Limit"

	// HeaderRateRemaining is the remaining requests header.
	HeaderRateRemaining = "X-RateLimit-Remaining"

	// HeaderRateReset is the reset timestamp header (Unix seconds).
	HeaderRateReset = "X-RateLimit-Reset"
)

// RateLimiter throttles requests proactively and tracks the quota
// reported by GitHub response headers.
type RateLimiter struct {
	mu        sync.Mutex
	remaining int           // From API header
	limit     int           // From API header
	resetTime time.Time     // From API header
	bucket    *rate.Limiter // Proactive throttling
}

// NewRateLimiter creates a rate limiter allowing rps requests per second.
// Zero or negative rps disables proactive throttling.
func NewRateLimiter(rps float64) *RateLimiter {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &RateLimiter{
		remaining: GitHubRateLimit, // Assume full quota initially
		limit:     GitHubRateLimit,
		bucket:    rate.NewLimiter(limit, 1),
	}
}

// Wait blocks until the token bucket admits a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.bucket.Wait(ctx)
}

// UpdateFromResponse updates rate limit state from response headers.
func (r *RateLimiter) UpdateFromResponse(resp *http.Response) {
	if resp == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if remaining := resp.Header.Get(HeaderRateRemaining); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			r.remaining = val
		}
	}

	if limit := resp.Header.Get(HeaderRateLimit); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			r.limit = val
		}
	}

	if reset := resp.Header.Get(HeaderRateReset); reset != "" {
		if val, err := strconv.ParseInt(reset, 10, 64); err == nil {
			r.resetTime = time.Unix(val, 0)
		}
	}
}

// Remaining returns the current remaining requests.
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining
}

// Limit returns the rate limit.
func (r *RateLimiter) Limit() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.limit
}

// ResetTime returns the rate limit reset time.
func (r *RateLimiter) ResetTime() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resetTime
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// rateLimitReset reports whether err is a GitHub quota failure and when it lifts.
func rateLimitReset(err error, now time.Time) (time.Time, bool) {
	var primary *gh.RateLimitError
	if errors.As(err, &primary) {
		return primary.Rate.Reset.Time, true
	}
	var secondary *gh.AbuseRateLimitError
	if errors.As(err, &secondary) {
		if secondary.RetryAfter != nil {
			return now.Add(*secondary.RetryAfter), true
		}
		return now.Add(DefaultSecondaryWait), true
	}
	return time.Time{}, false
}

// waitUntil returns the whole seconds from now until reset, never negative.
func waitUntil(reset, now time.Time) time.Duration {
	secs := math.Ceil(reset.Sub(now).Seconds())
	if secs < 0 {
		secs = 0
	}
	return time.Duration(secs) * time.Second
}

// retryOnRateLimit performs call and, if it fails because the quota is
// exhausted, sleeps until the reported reset and performs it exactly once more.
// A second quota failure surfaces as *RateLimitError. Other errors pass through
// wrapError unchanged in kind.
func retryOnRateLimit[T any](
	ctx context.Context, c *Client, op string, call func() (T, *gh.Response, error),
) (T, *gh.Response, error) {
	v, resp, err := doCall(ctx, c, call)
	if err == nil {
		return v, resp, nil
	}

	reset, limited := rateLimitReset(err, c.now())
	if !limited {
		return v, resp, c.wrapError(err, op)
	}

	wait := waitUntil(reset, c.now())
	logger.Warn("github: rate limit hit during %s, sleeping %s until %s", op, wait, reset.UTC().Format(time.RFC3339))
	if err := c.sleep(ctx, wait); err != nil {
		var zero T
		return zero, nil, err
	}

	v, resp, err = doCall(ctx, c, call)
	return v, resp, c.wrapError(err, op)
}
