package jira

import (
	"context"
	"fmt"
)

// GetCurrentUser returns the account the configured credentials belong
// to. Sync filters fetched work logs down to this account unless asked
// for all users.
func (c *Client) GetCurrentUser(ctx context.Context) (User, error) {
	var user User
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(&user).
		Get("/myself")
	if err != nil {
		return User{}, fmt.Errorf("fetching current user: %w", err)
	}
	if err := classify(resp); err != nil {
		return User{}, fmt.Errorf("fetching current user: %w", err)
	}
	return user, nil
}

// GetTimeTrackingConfiguration returns the server's working-hours
// calibration. Duration strings like "1w2d" are only meaningful relative
// to these values.
func (c *Client) GetTimeTrackingConfiguration(ctx context.Context) (TimeTrackingConfiguration, error) {
	var body configurationResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(&body).
		Get("/configuration")
	if err != nil {
		return TimeTrackingConfiguration{}, fmt.Errorf("fetching configuration: %w", err)
	}
	if err := classify(resp); err != nil {
		return TimeTrackingConfiguration{}, fmt.Errorf("fetching configuration: %w", err)
	}
	return body.TimeTrackingConfiguration, nil
}
