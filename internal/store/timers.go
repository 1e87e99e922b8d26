package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ncruces/go-sqlite3"
)

var (
	// ErrActiveTimerExists is returned by StartTimer when a timer is
	// already running. It is the one constraint violation treated as an
	// expected condition; callers should surface it, not crash.
	ErrActiveTimerExists = errors.New("store: an active timer already exists")

	// ErrNoActiveTimer is returned by the stop/discard operations when
	// nothing is running.
	ErrNoActiveTimer = errors.New("store: no active timer")
)

// StartTimer creates an active timer for the given issue. Enforcement of
// the at-most-one-active rule is left entirely to the partial unique
// index, so two racing starts cannot both succeed.
func (s *Store) StartTimer(ctx context.Context, issueKey string, startedAt time.Time, comment string) (Timer, error) {
	timer := Timer{
		IssueKey: issueKey,
		Created:  time.Now(),
		Started:  startedAt,
		Comment:  comment,
	}

	err := s.conn.QueryRowContext(ctx, `
		INSERT INTO timer (issue_key, created, started, "end", synced, comment)
		VALUES (?, ?, ?, NULL, 0, ?)
		RETURNING id`,
		timer.IssueKey, timeToString(timer.Created), timeToString(timer.Started), timer.Comment,
	).Scan(&timer.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return Timer{}, ErrActiveTimerExists
		}
		return Timer{}, fmt.Errorf("starting timer for %s: %w", issueKey, err)
	}

	s.logger.Info("timer started", "issue", issueKey, "timer", timer.ID)
	return timer, nil
}

// FindActiveTimer returns the running timer, or ErrNoActiveTimer.
func (s *Store) FindActiveTimer(ctx context.Context) (Timer, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT id, issue_key, created, started, "end", synced, comment
		FROM timer WHERE "end" IS NULL`)
	timer, err := scanTimer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Timer{}, ErrNoActiveTimer
		}
		return Timer{}, fmt.Errorf("querying active timer: %w", err)
	}
	return timer, nil
}

// StopActiveTimer sets the stop time on the running timer and returns
// the stopped row. ErrNoActiveTimer if nothing is running.
func (s *Store) StopActiveTimer(ctx context.Context, stoppedAt time.Time) (Timer, error) {
	row := s.conn.QueryRowContext(ctx, `
		UPDATE timer SET "end" = ?
		WHERE "end" IS NULL
		RETURNING id, issue_key, created, started, "end", synced, comment`,
		timeToString(stoppedAt))
	timer, err := scanTimer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Timer{}, ErrNoActiveTimer
		}
		return Timer{}, fmt.Errorf("stopping timer: %w", err)
	}

	s.logger.Info("timer stopped", "issue", timer.IssueKey, "timer", timer.ID)
	return timer, nil
}

// DiscardActiveTimer deletes the running timer without creating a work
// log. ErrNoActiveTimer if nothing is running.
func (s *Store) DiscardActiveTimer(ctx context.Context) (Timer, error) {
	row := s.conn.QueryRowContext(ctx, `
		DELETE FROM timer
		WHERE "end" IS NULL
		RETURNING id, issue_key, created, started, "end", synced, comment`)
	timer, err := scanTimer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Timer{}, ErrNoActiveTimer
		}
		return Timer{}, fmt.Errorf("discarding timer: %w", err)
	}

	s.logger.Info("timer discarded", "issue", timer.IssueKey, "timer", timer.ID)
	return timer, nil
}

// UpdateTimer rewrites the mutable fields of a timer row.
func (s *Store) UpdateTimer(ctx context.Context, timer Timer) error {
	res, err := s.conn.ExecContext(ctx, `
		UPDATE timer SET issue_key = ?, started = ?, "end" = ?, synced = ?, comment = ?
		WHERE id = ?`,
		timer.IssueKey, timeToString(timer.Started), timeToNullString(timer.Stopped),
		timer.Synced, timer.Comment, timer.ID)
	if err != nil {
		return fmt.Errorf("updating timer %d: %w", timer.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("updating timer %d: no such row", timer.ID)
	}
	return nil
}

// FindTimersSince returns timers created on or after the given time,
// oldest first.
func (s *Store) FindTimersSince(ctx context.Context, since time.Time) ([]Timer, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, issue_key, created, started, "end", synced, comment
		FROM timer WHERE created >= ?
		ORDER BY started ASC`,
		timeToString(since))
	if err != nil {
		return nil, fmt.Errorf("querying timers: %w", err)
	}
	defer rows.Close()

	var timers []Timer
	for rows.Next() {
		timer, err := scanTimer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning timer: %w", err)
		}
		timers = append(timers, timer)
	}
	return timers, rows.Err()
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTimer(row scanner) (Timer, error) {
	var (
		timer            Timer
		created, started string
		end              sql.NullString
	)
	if err := row.Scan(&timer.ID, &timer.IssueKey, &created, &started, &end,
		&timer.Synced, &timer.Comment); err != nil {
		return Timer{}, err
	}

	var err error
	if timer.Created, err = stringToTime(created); err != nil {
		return Timer{}, err
	}
	if timer.Started, err = stringToTime(started); err != nil {
		return Timer{}, err
	}
	if timer.Stopped, err = nullStringToTime(end); err != nil {
		return Timer{}, err
	}
	return timer, nil
}

// isUniqueViolation reports whether err is a SQLite unique-constraint
// failure.
func isUniqueViolation(err error) bool {
	var serr *sqlite3.Error
	if errors.As(err, &serr) {
		return serr.ExtendedCode() == sqlite3.CONSTRAINT_UNIQUE
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
