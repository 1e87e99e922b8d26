package jira

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentFetches caps in-flight work-log requests during a
// multi-issue fetch.
const maxConcurrentFetches = 10

// FetchFailure records one issue whose work-log fetch failed.
type FetchFailure struct {
	IssueKey string
	Err      error
}

// FetchReport is the per-issue outcome of a chunked fetch. Failures do
// not abort the batch; they are collected here so the caller can decide
// whether partial results are acceptable.
type FetchReport struct {
	Succeeded []string
	Failed    []FetchFailure
}

// Ok reports whether every issue fetch succeeded.
func (r *FetchReport) Ok() bool { return len(r.Failed) == 0 }

// ChunkedWorklogs fetches work logs for many issues concurrently, at most
// maxConcurrentFetches requests in flight. Results are flattened; the
// report lists which issues succeeded and which failed with what error.
func (c *Client) ChunkedWorklogs(ctx context.Context, issueKeys []string, startedAfter time.Time) ([]Worklog, *FetchReport, error) {
	var (
		mu     sync.Mutex
		all    []Worklog
		report FetchReport
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)

	for _, key := range issueKeys {
		g.Go(func() error {
			entries, err := c.FetchWorklogs(ctx, key, startedAfter)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				c.logger.Warn("worklog fetch failed", "issue", key, "error", err)
				report.Failed = append(report.Failed, FetchFailure{IssueKey: key, Err: err})
				return nil
			}
			report.Succeeded = append(report.Succeeded, key)
			all = append(all, entries...)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	sort.Strings(report.Succeeded)
	sort.Slice(report.Failed, func(i, j int) bool {
		return report.Failed[i].IssueKey < report.Failed[j].IssueKey
	})
	return all, &report, nil
}
