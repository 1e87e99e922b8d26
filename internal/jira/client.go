// Package jira is the client for the remote tracker's REST API: issue
// search, work-log paging, and the handful of single-shot endpoints the
// sync engine needs. Pagination is hidden behind the package API; callers
// always receive fully assembled result sets.
package jira

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// apiPrefix is the REST base below the configured host URL.
	apiPrefix = "/rest/api/latest"

	// pageSize is the maxResults requested per page for both the issue
	// search and the work-log endpoints.
	pageSize = 50
)

// Config carries everything the client needs to talk to one tracker
// instance. It is built once at startup and injected; the client keeps no
// package-level state.
type Config struct {
	// URL is the tracker host, e.g. https://company.atlassian.net.
	URL string
	// User enables HTTP Basic auth (user + Token). When empty the Token
	// is sent as a Bearer token instead.
	User  string
	Token string
	// Timeout applies per request. Zero means DefaultTimeout.
	Timeout time.Duration
}

// DefaultTimeout bounds a single HTTP request. There is no separate
// cancellation mechanism; a sync runs to completion or first hard error.
const DefaultTimeout = 30 * time.Second

// Client issues authenticated requests against one tracker instance.
// Safe for concurrent use.
type Client struct {
	rest   *resty.Client
	logger *slog.Logger
}

// NewClient builds a Client from cfg. A nil logger falls back to the
// process default.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("jira: missing base URL")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("jira: missing token")
	}
	if logger == nil {
		logger = slog.Default()
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	rest := resty.New().
		SetBaseURL(cfg.URL + apiPrefix).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	if cfg.User != "" {
		rest.SetBasicAuth(cfg.User, cfg.Token)
	} else {
		rest.SetAuthToken(cfg.Token)
	}

	return &Client{rest: rest, logger: logger}, nil
}
