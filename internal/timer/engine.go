package timer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/steveyegge/worklog/internal/jira"
	"github.com/steveyegge/worklog/internal/reconcile"
	"github.com/steveyegge/worklog/internal/store"
)

// syncWindow bounds how far back SyncToJira looks for unsynced timers.
const syncWindow = 30 * 24 * time.Hour

// Remote is the slice of the tracker client the engine needs to submit
// finished sessions. *jira.Client satisfies it.
type Remote interface {
	InsertWorklog(ctx context.Context, issueID string, started time.Time, timeSpentSeconds int64, comment string) (jira.Worklog, error)
}

// Engine drives the timer state machine on top of the store.
type Engine struct {
	store  *store.Store
	remote Remote
	logger *slog.Logger
}

// New builds an Engine. A nil logger falls back to the process default.
func New(st *store.Store, remote Remote, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: st, remote: remote, logger: logger}
}

// Start begins timing against an issue. The issue must already be in the
// cache (run sync first for a brand-new issue); whether another timer is
// already running is decided by the store's uniqueness constraint, not
// by a lookup here.
func (e *Engine) Start(ctx context.Context, issueKey, comment string) (store.Timer, error) {
	issueKey = jira.NormalizeIssueKey(issueKey)
	if _, err := e.store.FindIssue(ctx, issueKey); err != nil {
		return store.Timer{}, err
	}
	return e.store.StartTimer(ctx, issueKey, time.Now(), comment)
}

// Stop ends the running session at the given time, or now when stoppedAt
// is nil.
func (e *Engine) Stop(ctx context.Context, stoppedAt *time.Time) (store.Timer, error) {
	at := time.Now()
	if stoppedAt != nil {
		at = *stoppedAt
	}
	return e.store.StopActiveTimer(ctx, at)
}

// Discard throws away the running session. No work log is ever created
// from a discarded timer.
func (e *Engine) Discard(ctx context.Context) (store.Timer, error) {
	return e.store.DiscardActiveTimer(ctx)
}

// Active returns the running timer, if any.
func (e *Engine) Active(ctx context.Context) (store.Timer, error) {
	return e.store.FindActiveTimer(ctx)
}

// SyncToJira submits every stopped, unsynced timer from the last 30 days
// as a remote work log, mirrors the created entry into the cache, and
// marks the timer synced. Sessions with non-positive duration are
// skipped. The first failure aborts the run; already-submitted timers
// stay marked and are not re-sent by the next run.
func (e *Engine) SyncToJira(ctx context.Context) ([]store.Timer, error) {
	timers, err := e.store.FindTimersSince(ctx, time.Now().Add(-syncWindow))
	if err != nil {
		return nil, err
	}

	var synced []store.Timer
	for _, t := range timers {
		if t.Active() || t.Synced {
			continue
		}

		seconds := int64(t.Duration(time.Now()) / time.Second)
		if seconds <= 0 {
			e.logger.Warn("skipping timer with non-positive duration",
				"timer", t.ID, "issue", t.IssueKey)
			continue
		}

		issueID := t.IssueKey
		if issue, err := e.store.FindIssue(ctx, t.IssueKey); err == nil && issue.ID != "" {
			issueID = issue.ID
		}

		created, err := e.remote.InsertWorklog(ctx, issueID, t.Started, seconds, t.Comment)
		if err != nil {
			return synced, fmt.Errorf("submitting timer %d for %s: %w", t.ID, t.IssueKey, err)
		}
		created.IssueKey = t.IssueKey

		if err := reconcile.MirrorWorklog(ctx, e.store, created); err != nil {
			return synced, err
		}

		t.Synced = true
		if err := e.store.UpdateTimer(ctx, t); err != nil {
			return synced, err
		}

		e.logger.Info("timer submitted", "timer", t.ID, "issue", t.IssueKey,
			"seconds", seconds, "worklog", created.ID)
		synced = append(synced, t)
	}
	return synced, nil
}
