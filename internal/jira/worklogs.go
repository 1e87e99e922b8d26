package jira

import (
	"context"
	"fmt"
	"time"
)

// FetchWorklogs returns every work log on issueKey started after the
// given boundary.
//
// The endpoint is offset-paged: the client walks startAt in pageSize
// steps and treats a short page as the last one. The offset is also
// checked against the number of rows already collected so a misbehaving
// server can never make the loop revisit data.
func (c *Client) FetchWorklogs(ctx context.Context, issueKey string, startedAfter time.Time) ([]Worklog, error) {
	issueKey = NormalizeIssueKey(issueKey)

	var all []Worklog
	startAt := 0
	for {
		var page worklogsPage
		resp, err := c.rest.R().
			SetContext(ctx).
			SetQueryParam("startAt", fmt.Sprint(startAt)).
			SetQueryParam("maxResults", fmt.Sprint(pageSize)).
			SetQueryParam("startedAfter", fmt.Sprint(startedAfter.UnixMilli())).
			SetResult(&page).
			Get(fmt.Sprintf("/issue/%s/worklog", issueKey))
		if err != nil {
			return nil, fmt.Errorf("fetching worklogs for %s: %w", issueKey, err)
		}
		if err := classify(resp); err != nil {
			return nil, fmt.Errorf("fetching worklogs for %s: %w", issueKey, err)
		}

		for i := range page.Worklogs {
			page.Worklogs[i].IssueKey = issueKey
		}
		all = append(all, page.Worklogs...)

		if len(page.Worklogs) < pageSize {
			break
		}
		next := startAt + len(page.Worklogs)
		if next <= startAt {
			// A zero-advance offset would revisit the same page forever.
			break
		}
		startAt = next
	}

	c.logger.Debug("worklog fetch complete", "issue", issueKey, "entries", len(all))
	return all, nil
}

// InsertWorklog creates a work log on the issue identified by issueID
// (the numeric identifier, not the key) and returns the created record as
// the server stored it.
func (c *Client) InsertWorklog(ctx context.Context, issueID string, started time.Time, timeSpentSeconds int64, comment string) (Worklog, error) {
	body := map[string]any{
		"started":          started.Format(timeLayout),
		"timeSpentSeconds": timeSpentSeconds,
	}
	if comment != "" {
		body["comment"] = comment
	}

	var created Worklog
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&created).
		Post(fmt.Sprintf("/issue/%s/worklog", issueID))
	if err != nil {
		return Worklog{}, fmt.Errorf("inserting worklog on %s: %w", issueID, err)
	}
	if err := classify(resp); err != nil {
		return Worklog{}, fmt.Errorf("inserting worklog on %s: %w", issueID, err)
	}
	return created, nil
}

// DeleteWorklog removes one work log from the given issue.
func (c *Client) DeleteWorklog(ctx context.Context, issueID, worklogID string) error {
	resp, err := c.rest.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/issue/%s/worklog/%s", issueID, worklogID))
	if err != nil {
		return fmt.Errorf("deleting worklog %s on %s: %w", worklogID, issueID, err)
	}
	if err := classify(resp); err != nil {
		return fmt.Errorf("deleting worklog %s on %s: %w", worklogID, issueID, err)
	}
	return nil
}
