// Package reconcile brings the local cache into agreement with the
// remote tracker for a requested scope. The remote side is always
// authoritative: cached work-log rows are replaced wholesale, never
// patched field by field.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/steveyegge/worklog/internal/jira"
	"github.com/steveyegge/worklog/internal/store"
)

// DefaultLookback bounds a sync with no explicit start boundary.
const DefaultLookback = 30 * 24 * time.Hour

// ErrNothingToDo means the scope resolved to zero issues; the CLI maps
// this to its "nothing to do" exit code.
var ErrNothingToDo = errors.New("reconcile: no issues to sync")

// Remote is the slice of the tracker client the reconciler needs.
// *jira.Client satisfies it.
type Remote interface {
	SearchIssues(ctx context.Context, projects, issues []string, allUsers bool) ([]jira.IssueSummary, error)
	ChunkedWorklogs(ctx context.Context, issueKeys []string, startedAfter time.Time) ([]jira.Worklog, *jira.FetchReport, error)
	GetCurrentUser(ctx context.Context) (jira.User, error)
}

// Options selects what to reconcile. With neither Issues nor Projects
// the scope falls back to every issue key currently cached.
type Options struct {
	Issues   []string
	Projects []string
	AllUsers bool
	// StartedAfter bounds the fetch; zero means now − DefaultLookback.
	StartedAfter time.Time
}

// Summary reports what a reconcile run did, including the per-issue
// fetch outcome so partial failures are visible to the caller instead of
// silently shrinking the result.
type Summary struct {
	ResolvedKeys []string
	Fetched      int
	Kept         int
	Inserted     int
	Report       *jira.FetchReport
	User         store.User
}

// Reconciler orchestrates the remote client and the local cache.
type Reconciler struct {
	remote Remote
	store  *store.Store
	logger *slog.Logger
}

// New builds a Reconciler. A nil logger falls back to the process
// default.
func New(remote Remote, st *store.Store, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{remote: remote, store: st, logger: logger}
}

// Reconcile fetches remote work logs for the resolved scope and replaces
// the cached rows. Re-running with unchanged remote data leaves the
// cache byte-for-byte identical.
func (r *Reconciler) Reconcile(ctx context.Context, opts Options) (*Summary, error) {
	user, err := r.remote.GetCurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving current user: %w", err)
	}
	localUser := store.User{
		AccountID:   user.AccountID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		TimeZone:    user.TimeZone,
	}
	if err := r.store.UpsertUser(ctx, localUser); err != nil {
		return nil, err
	}

	startedAfter := opts.StartedAfter
	if startedAfter.IsZero() {
		startedAfter = time.Now().Add(-DefaultLookback)
	}

	issues, keys, err := r.resolveScope(ctx, opts)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, ErrNothingToDo
	}
	r.logger.Info("sync scope resolved", "issues", len(keys), "started_after", startedAfter)

	fetched, report, err := r.remote.ChunkedWorklogs(ctx, keys, startedAfter)
	if err != nil {
		return nil, fmt.Errorf("fetching worklogs: %w", err)
	}
	for _, failure := range report.Failed {
		r.logger.Warn("issue skipped", "issue", failure.IssueKey, "error", failure.Err)
	}

	kept := fetched
	if !opts.AllUsers {
		kept = kept[:0]
		for _, w := range fetched {
			if w.Author.AccountID == user.AccountID {
				kept = append(kept, w)
			}
		}
	}

	// Issues and components go in first so the worklog foreign keys
	// always have a target.
	if err := r.store.AddIssueSummaries(ctx, localIssues(issues, keys)); err != nil {
		return nil, err
	}

	inserted := 0
	for _, w := range kept {
		if err := MirrorWorklog(ctx, r.store, w); err != nil {
			return nil, fmt.Errorf("reconciling worklog %s: %w", w.ID, err)
		}
		inserted++
	}

	r.logger.Info("sync complete",
		"fetched", len(fetched), "kept", len(kept), "inserted", inserted,
		"failed_issues", len(report.Failed))

	return &Summary{
		ResolvedKeys: keys,
		Fetched:      len(fetched),
		Kept:         len(kept),
		Inserted:     inserted,
		Report:       report,
		User:         localUser,
	}, nil
}

// resolveScope turns the options into a refreshed issue list and the
// sorted, de-duplicated key set to fetch. With no explicit scope the
// locally known keys are used, and still pushed through the search so
// their summaries are refreshed.
func (r *Reconciler) resolveScope(ctx context.Context, opts Options) ([]jira.IssueSummary, []string, error) {
	explicit := make([]string, 0, len(opts.Issues))
	for _, k := range opts.Issues {
		explicit = append(explicit, jira.NormalizeIssueKey(k))
	}

	searchIssues := explicit
	projects := opts.Projects
	if len(explicit) == 0 && len(projects) == 0 {
		local, err := r.store.FindUniqueIssueKeys(ctx)
		if err != nil {
			return nil, nil, err
		}
		if len(local) == 0 {
			return nil, nil, ErrNothingToDo
		}
		searchIssues = local
	}

	found, err := r.remote.SearchIssues(ctx, projects, searchIssues, opts.AllUsers)
	if err != nil {
		return nil, nil, fmt.Errorf("searching issues: %w", err)
	}

	keys := append([]string{}, explicit...)
	for _, issue := range found {
		keys = append(keys, issue.Key)
	}
	return found, sortedUnique(keys), nil
}

// localIssues converts search results for storage and adds a bare row
// for any resolved key the search did not return, so the foreign-key
// precondition holds even for keys only known locally.
func localIssues(found []jira.IssueSummary, keys []string) []store.IssueSummary {
	out := make([]store.IssueSummary, 0, len(keys))
	covered := make(map[string]bool, len(found))
	for _, issue := range found {
		covered[issue.Key] = true
		out = append(out, localIssue(issue))
	}
	for _, key := range keys {
		if !covered[key] {
			out = append(out, store.IssueSummary{Key: key})
		}
	}
	return out
}

func localIssue(issue jira.IssueSummary) store.IssueSummary {
	local := store.IssueSummary{
		Key:     issue.Key,
		ID:      issue.ID,
		Summary: issue.Summary(),
	}
	for _, comp := range issue.Components() {
		local.Components = append(local.Components, store.Component{ID: comp.ID, Name: comp.Name})
	}
	return local
}

// MirrorWorklog replaces the cached copy of one remote work log: delete
// any stale row with the same id (a no-op when absent), then insert the
// fresh one. This is what makes re-running sync safe.
func MirrorWorklog(ctx context.Context, st *store.Store, w jira.Worklog) error {
	if err := st.RemoveWorklogEntry(ctx, w.ID); err != nil {
		return err
	}
	return st.AddWorklogEntry(ctx, LocalWorklog(w))
}

// LocalWorklog converts a remote work log to its cached form.
func LocalWorklog(w jira.Worklog) store.LocalWorklog {
	return store.LocalWorklog{
		ID:               w.ID,
		IssueKey:         w.IssueKey,
		IssueID:          w.IssueID,
		Author:           w.Author.DisplayName,
		Created:          w.Created.Time,
		Updated:          w.Updated.Time,
		Started:          w.Started.Time,
		TimeSpent:        w.TimeSpent,
		TimeSpentSeconds: w.TimeSpentSeconds,
		Comment:          w.Comment,
	}
}

func sortedUnique(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
