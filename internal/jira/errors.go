package jira

import (
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// Sentinel failure classes surfaced to callers. Rate-limit responses are
// not retried here; retry policy belongs to the caller.
var (
	ErrUnauthorized = errors.New("jira: unauthorized")
	ErrNotFound     = errors.New("jira: not found")
	ErrRateLimited  = errors.New("jira: rate limited")
)

// ServerFault is any other non-success HTTP response, carrying the status
// code and raw body for diagnostics.
type ServerFault struct {
	Code int
	Body string
}

func (e *ServerFault) Error() string {
	return fmt.Sprintf("jira: server fault %d: %s", e.Code, e.Body)
}

// classify maps a completed response to the error taxonomy. A nil return
// means the request succeeded.
func classify(resp *resty.Response) error {
	if !resp.IsError() {
		return nil
	}
	switch resp.StatusCode() {
	case 401, 403:
		return ErrUnauthorized
	case 404:
		return ErrNotFound
	case 429:
		return ErrRateLimited
	default:
		return &ServerFault{Code: resp.StatusCode(), Body: resp.String()}
	}
}
