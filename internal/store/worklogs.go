package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// AddWorklogEntry inserts one cached work-log row. The referenced issue
// must already exist (foreign key), and no row with the same id may be
// present; sync removes stale rows before inserting.
func (s *Store) AddWorklogEntry(ctx context.Context, entry LocalWorklog) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO worklog (
			id, issue_key, issue_id, author,
			created, updated, started,
			time_spent, time_spent_seconds, comment
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.IssueKey, entry.IssueID, entry.Author,
		timeToString(entry.Created), timeToString(entry.Updated), timeToString(entry.Started),
		entry.TimeSpent, entry.TimeSpentSeconds, entry.Comment,
	)
	if err != nil {
		return fmt.Errorf("inserting worklog %s: %w", entry.ID, err)
	}
	return nil
}

// AddWorklogEntries inserts a batch, stopping at the first failure.
// Already-inserted rows are kept; a re-run of sync replaces them anyway.
func (s *Store) AddWorklogEntries(ctx context.Context, entries []LocalWorklog) error {
	for _, entry := range entries {
		if err := s.AddWorklogEntry(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

// RemoveWorklogEntry deletes a cached row by remote id. Deleting an
// absent row is not an error.
func (s *Store) RemoveWorklogEntry(ctx context.Context, id string) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM worklog WHERE id = ?`, id); err != nil {
		return fmt.Errorf("removing worklog %s: %w", id, err)
	}
	return nil
}

// FindWorklogsAfter returns cached entries started strictly after since,
// optionally restricted to the given issue keys and author names. An
// empty filter places no restriction on that axis. Results are ordered
// by start time.
func (s *Store) FindWorklogsAfter(ctx context.Context, since time.Time, issueKeys, authors []string) ([]LocalWorklog, error) {
	query := `
		SELECT id, issue_key, issue_id, author,
		       created, updated, started,
		       time_spent, time_spent_seconds, comment
		FROM worklog
		WHERE started > ?`
	args := []any{timeToString(since)}

	if len(issueKeys) > 0 {
		query += fmt.Sprintf(" AND issue_key IN (%s)", placeholders(len(issueKeys)))
		for _, k := range issueKeys {
			args = append(args, k)
		}
	}
	if len(authors) > 0 {
		query += fmt.Sprintf(" AND author IN (%s)", placeholders(len(authors)))
		for _, a := range authors {
			args = append(args, a)
		}
	}
	query += " ORDER BY started ASC"

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying worklogs: %w", err)
	}
	defer rows.Close()
	return scanWorklogs(rows)
}

// FindUniqueIssueKeys returns the distinct issue keys present in the
// work-log table, ascending. Sync falls back to this set when invoked
// without an explicit scope.
func (s *Store) FindUniqueIssueKeys(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT DISTINCT(issue_key) FROM worklog ORDER BY issue_key ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying distinct issue keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scanning issue key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func scanWorklogs(rows *sql.Rows) ([]LocalWorklog, error) {
	var entries []LocalWorklog
	for rows.Next() {
		var (
			entry                     LocalWorklog
			created, updated, started string
		)
		if err := rows.Scan(
			&entry.ID, &entry.IssueKey, &entry.IssueID, &entry.Author,
			&created, &updated, &started,
			&entry.TimeSpent, &entry.TimeSpentSeconds, &entry.Comment,
		); err != nil {
			return nil, fmt.Errorf("scanning worklog: %w", err)
		}

		var err error
		if entry.Created, err = stringToTime(created); err != nil {
			return nil, err
		}
		if entry.Updated, err = stringToTime(updated); err != nil {
			return nil, err
		}
		if entry.Started, err = stringToTime(started); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
