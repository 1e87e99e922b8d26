package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNoUser is returned before the first successful sync has cached the
// authenticated account.
var ErrNoUser = errors.New("store: no cached user")

// UpsertUser stores the authenticated account. The database holds one
// user per credential set; re-syncing refreshes the row.
func (s *Store) UpsertUser(ctx context.Context, user User) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO user (account_id, email, display_name, timezone)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(account_id) DO UPDATE SET
			email = excluded.email,
			display_name = excluded.display_name,
			timezone = excluded.timezone`,
		user.AccountID, user.Email, user.DisplayName, user.TimeZone)
	if err != nil {
		return fmt.Errorf("upserting user %s: %w", user.AccountID, err)
	}
	return nil
}

// FindUser returns the cached authenticated account.
func (s *Store) FindUser(ctx context.Context) (User, error) {
	var user User
	row := s.conn.QueryRowContext(ctx, `
		SELECT account_id, email, display_name, timezone FROM user LIMIT 1`)
	if err := row.Scan(&user.AccountID, &user.Email, &user.DisplayName, &user.TimeZone); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNoUser
		}
		return User{}, fmt.Errorf("querying user: %w", err)
	}
	return user, nil
}

// Stats summarizes the cache contents for status output.
type Stats struct {
	Issues      int
	Worklogs    int
	Timers      int
	LastStarted sql.NullString
}

// GetStats counts the cached rows and finds the most recent work-log
// start time.
func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	var stats Stats
	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM issue`, &stats.Issues},
		{`SELECT COUNT(*) FROM worklog`, &stats.Worklogs},
		{`SELECT COUNT(*) FROM timer`, &stats.Timers},
	}
	for _, c := range counts {
		if err := s.conn.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return Stats{}, fmt.Errorf("counting rows: %w", err)
		}
	}
	if err := s.conn.QueryRowContext(ctx,
		`SELECT MAX(started) FROM worklog`).Scan(&stats.LastStarted); err != nil {
		return Stats{}, fmt.Errorf("querying last started: %w", err)
	}
	return stats, nil
}
