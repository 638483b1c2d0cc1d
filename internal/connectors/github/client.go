package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/prsync/internal/core/domain"
	"github.com/custodia-labs/prsync/internal/core/ports/driven"
)

// Ensure interface compliance.
var _ driven.PullRequestSource = (*Client)(nil)

// Client wraps the go-github client with lazy authentication, proactive
// throttling and a single retry on rate limit exhaustion.
type Client struct {
	cfg         Config
	credentials driven.CredentialProvider
	rateLimiter *RateLimiter
	sleep       Sleeper
	now         func() time.Time

	mu sync.Mutex
	gh *gh.Client
}

// Option customises a Client.
type Option func(*Client)

// WithSleeper replaces the rate limit sleep. Used by tests.
func WithSleeper(s Sleeper) Option {
	return func(c *Client) {
		c.sleep = s
	}
}

// WithClock replaces the clock the rate limit wait is computed against.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a GitHub API client. Credentials are requested from
// the provider on first use and kept for the client's lifetime.
func NewClient(credentials driven.CredentialProvider, cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:         cfg,
		credentials: credentials,
		rateLimiter: NewRateLimiter(cfg.RequestsPerSecond),
		sleep:       sleepContext,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ensureClient initializes the go-github client if not already done.
// This is called lazily so credentials are only resolved when needed.
func (c *Client) ensureClient(ctx context.Context) (*gh.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gh != nil {
		return c.gh, nil
	}
	if c.credentials == nil {
		return nil, domain.ErrAuthRequired
	}

	creds, err := c.credentials.Credentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("get credentials: %w", err)
	}

	var httpClient *http.Client
	switch {
	case creds.HasToken():
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: creds.Token},
		)
		httpClient = oauth2.NewClient(ctx, ts)
	case creds.HasBasicAuth():
		tp := &gh.BasicAuthTransport{Username: creds.Login, Password: creds.Password}
		httpClient = tp.Client()
	default:
		return nil, domain.ErrAuthRequired
	}

	httpClient.Timeout = c.cfg.Timeout
	if httpClient.Timeout == 0 {
		httpClient.Timeout = DefaultTimeout
	}

	client := gh.NewClient(httpClient)
	if c.cfg.BaseURL != "" {
		base, err := c.cfg.baseURL()
		if err != nil {
			return nil, fmt.Errorf("parse github base URL: %w", err)
		}
		client.BaseURL = base
	}

	c.gh = client
	return c.gh, nil
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// doCall throttles, performs one call and records the quota headers.
func doCall[T any](ctx context.Context, c *Client, call func() (T, *gh.Response, error)) (T, *gh.Response, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		var zero T
		return zero, nil, fmt.Errorf("rate limit wait: %w", err)
	}
	v, resp, err := call()
	c.updateRateLimitFromResponse(resp)
	return v, resp, err
}

// updateRateLimitFromResponse updates the rate limiter from GitHub response headers.
func (c *Client) updateRateLimitFromResponse(resp *gh.Response) {
	if resp == nil || resp.Response == nil {
		return
	}
	c.rateLimiter.UpdateFromResponse(resp.Response)
}

// wrapError converts go-github errors to our error types.
func (c *Client) wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	if reset, limited := rateLimitReset(err, c.now()); limited {
		return &RateLimitError{
			ResetAt:   reset,
			Remaining: c.rateLimiter.Remaining(),
			Limit:     c.rateLimiter.Limit(),
		}
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		apiErr := &APIError{
			StatusCode: ghErr.Response.StatusCode,
			Message:    ghErr.Message,
		}
		if ghErr.Response.Request != nil {
			apiErr.URL = ghErr.Response.Request.URL.String()
		}
		return fmt.Errorf("%s: %w", operation, apiErr)
	}

	return fmt.Errorf("%s: %w", operation, err)
}
