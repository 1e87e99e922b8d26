package jira

import (
	"context"
	"fmt"
)

// createdIssue is the response to an issue creation request.
type createdIssue struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// CreateIssue creates a plain task issue in the given project and returns
// its key.
func (c *Client) CreateIssue(ctx context.Context, projectKey, summary, description string) (string, error) {
	body := map[string]any{
		"fields": map[string]any{
			"project":     map[string]string{"key": projectKey},
			"summary":     summary,
			"description": description,
			"issuetype":   map[string]string{"name": "Task"},
		},
	}

	var created createdIssue
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&created).
		Post("/issue")
	if err != nil {
		return "", fmt.Errorf("creating issue in %s: %w", projectKey, err)
	}
	if err := classify(resp); err != nil {
		return "", fmt.Errorf("creating issue in %s: %w", projectKey, err)
	}
	return NormalizeIssueKey(created.Key), nil
}

// DeleteIssue removes an issue by key or id.
func (c *Client) DeleteIssue(ctx context.Context, issueKey string) error {
	resp, err := c.rest.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/issue/%s", NormalizeIssueKey(issueKey)))
	if err != nil {
		return fmt.Errorf("deleting issue %s: %w", issueKey, err)
	}
	if err := classify(resp); err != nil {
		return fmt.Errorf("deleting issue %s: %w", issueKey, err)
	}
	return nil
}
