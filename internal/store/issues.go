package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrIssueNotFound is returned when a lookup references an issue key the
// cache has never seen.
var ErrIssueNotFound = errors.New("store: issue not found")

// AddIssueSummaries upserts a batch of issues and their components.
// Summary and components are refreshed on conflict; issues are never
// deleted here (only PurgeIssue removes them).
func (s *Store) AddIssueSummaries(ctx context.Context, issues []IssueSummary) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning issue upsert: %w", err)
	}
	defer tx.Rollback()

	issueStmt := `
		INSERT INTO issue (key, id, summary) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			id = excluded.id,
			summary = excluded.summary`
	componentStmt := `
		INSERT INTO component (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name`
	linkStmt := `
		INSERT OR IGNORE INTO issue_component (issue_key, component_id) VALUES (?, ?)`

	for _, issue := range issues {
		if _, err := tx.ExecContext(ctx, issueStmt, issue.Key, issue.ID, issue.Summary); err != nil {
			return fmt.Errorf("upserting issue %s: %w", issue.Key, err)
		}
		for _, comp := range issue.Components {
			if _, err := tx.ExecContext(ctx, componentStmt, comp.ID, comp.Name); err != nil {
				return fmt.Errorf("upserting component %s: %w", comp.Name, err)
			}
			if _, err := tx.ExecContext(ctx, linkStmt, issue.Key, comp.ID); err != nil {
				return fmt.Errorf("linking component %s to %s: %w", comp.Name, issue.Key, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing issue upsert: %w", err)
	}
	s.logger.Debug("issue summaries upserted", "count", len(issues))
	return nil
}

// FindIssue returns one cached issue by key, with components attached.
func (s *Store) FindIssue(ctx context.Context, key string) (IssueSummary, error) {
	var issue IssueSummary
	row := s.conn.QueryRowContext(ctx,
		`SELECT key, id, summary FROM issue WHERE key = ?`, key)
	if err := row.Scan(&issue.Key, &issue.ID, &issue.Summary); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return IssueSummary{}, fmt.Errorf("%w: %s", ErrIssueNotFound, key)
		}
		return IssueSummary{}, fmt.Errorf("querying issue %s: %w", key, err)
	}

	rows, err := s.conn.QueryContext(ctx, `
		SELECT c.id, c.name
		FROM component c
		JOIN issue_component ic ON ic.component_id = c.id
		WHERE ic.issue_key = ?
		ORDER BY c.name`, key)
	if err != nil {
		return IssueSummary{}, fmt.Errorf("querying components for %s: %w", key, err)
	}
	defer rows.Close()

	for rows.Next() {
		var comp Component
		if err := rows.Scan(&comp.ID, &comp.Name); err != nil {
			return IssueSummary{}, fmt.Errorf("scanning component: %w", err)
		}
		issue.Components = append(issue.Components, comp)
	}
	return issue, rows.Err()
}

// ListIssues returns every cached issue, sorted by key.
func (s *Store) ListIssues(ctx context.Context) ([]IssueSummary, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT key, id, summary FROM issue ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing issues: %w", err)
	}
	defer rows.Close()

	var issues []IssueSummary
	for rows.Next() {
		var issue IssueSummary
		if err := rows.Scan(&issue.Key, &issue.ID, &issue.Summary); err != nil {
			return nil, fmt.Errorf("scanning issue: %w", err)
		}
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

// IssueKeyToIDMap returns the key→id mapping for the given keys, used to
// address the remote per-issue endpoints which want the numeric id.
func (s *Store) IssueKeyToIDMap(ctx context.Context, keys []string) (map[string]string, error) {
	m := make(map[string]string, len(keys))
	for _, key := range keys {
		issue, err := s.FindIssue(ctx, key)
		if err != nil {
			if errors.Is(err, ErrIssueNotFound) {
				continue
			}
			return nil, err
		}
		m[issue.Key] = issue.ID
	}
	return m, nil
}

// PurgeIssue removes an issue and everything referencing it: cached work
// logs, component links, and timers. The components themselves stay,
// they may be shared with other issues.
func (s *Store) PurgeIssue(ctx context.Context, key string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning purge: %w", err)
	}
	defer tx.Rollback()

	stmts := []string{
		`DELETE FROM worklog WHERE issue_key = ?`,
		`DELETE FROM issue_component WHERE issue_key = ?`,
		`DELETE FROM timer WHERE issue_key = ?`,
		`DELETE FROM issue WHERE key = ?`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt, key); err != nil {
			return fmt.Errorf("purging issue %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing purge: %w", err)
	}
	s.logger.Info("issue purged from cache", "issue", key)
	return nil
}
