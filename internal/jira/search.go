package jira

import (
	"context"
	"fmt"
	"strings"
)

// SearchIssues fetches issue summaries matching the given project keys
// and/or issue keys. Issue keys take precedence when both filters are
// given. With both filters empty no request is made and an empty result
// is returned; callers must supply a scope or fall back to locally known
// keys.
//
// The search endpoint is cursor-paged: each page carries an opaque
// continuation token, and the server omits the token on the last page.
// Cursor paging cannot return duplicates when the remote result set
// shifts under concurrent writes, unlike the offset paging used for work
// logs.
func (c *Client) SearchIssues(ctx context.Context, projects, issues []string, allUsers bool) ([]IssueSummary, error) {
	jql := buildJQL(projects, issues, allUsers)
	if jql == "" {
		return nil, nil
	}

	var all []IssueSummary
	token := ""
	for {
		var page searchPage
		req := c.rest.R().
			SetContext(ctx).
			SetQueryParam("jql", jql).
			SetQueryParam("fields", "summary,components").
			SetQueryParam("maxResults", fmt.Sprint(pageSize)).
			SetResult(&page)
		if token != "" {
			req.SetQueryParam("nextPageToken", token)
		}

		resp, err := req.Get("/search/jql")
		if err != nil {
			return nil, fmt.Errorf("searching issues: %w", err)
		}
		if err := classify(resp); err != nil {
			return nil, err
		}

		for i := range page.Issues {
			page.Issues[i].Key = NormalizeIssueKey(page.Issues[i].Key)
		}
		all = append(all, page.Issues...)

		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken
	}

	c.logger.Debug("issue search complete", "jql", jql, "issues", len(all))
	return all, nil
}

// buildJQL assembles the search expression. An explicit issue list is the
// narrower filter and wins over projects.
func buildJQL(projects, issues []string, allUsers bool) string {
	var clause string
	switch {
	case len(issues) > 0:
		keys := make([]string, len(issues))
		for i, k := range issues {
			keys[i] = NormalizeIssueKey(k)
		}
		clause = fmt.Sprintf("issuekey in (%s)", strings.Join(keys, ", "))
	case len(projects) > 0:
		clause = fmt.Sprintf("project in (%s)", strings.Join(projects, ", "))
	default:
		return ""
	}
	if !allUsers {
		clause += " AND worklogAuthor = currentUser()"
	}
	return clause
}
