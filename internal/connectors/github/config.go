package github

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/prsync/internal/core/domain"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultPerPage is the page size requested from list endpoints (the API maximum).
	DefaultPerPage = 100
)

// Config holds the connection settings of the GitHub client.
type Config struct {
	// BaseURL overrides the REST API root, e.g. for GitHub Enterprise.
	// Empty means https://api.github.com/.
	BaseURL string

	// RequestsPerSecond throttles outbound calls proactively.
	// Zero or negative disables throttling.
	RequestsPerSecond float64

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// PerPage is the list page size, 1 to 100.
	PerPage int
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		Timeout: DefaultTimeout,
		PerPage: DefaultPerPage,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: github base URL %q", domain.ErrInvalidInput, c.BaseURL)
		}
	}
	if c.PerPage < 0 || c.PerPage > DefaultPerPage {
		return fmt.Errorf("%w: github page size %d not in 1..%d", domain.ErrInvalidInput, c.PerPage, DefaultPerPage)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: negative github timeout", domain.ErrInvalidInput)
	}
	return nil
}

// baseURL returns the API root with the trailing slash go-github requires.
func (c Config) baseURL() (*url.URL, error) {
	raw := c.BaseURL
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	return url.Parse(raw)
}

func (c Config) perPage() int {
	if c.PerPage <= 0 {
		return DefaultPerPage
	}
	return c.PerPage
}
