package store

import "time"

// IssueSummary is the cached projection of a remote issue.
type IssueSummary struct {
	Key        string
	ID         string
	Summary    string
	Components []Component
}

// Component is a project component attached to an issue.
type Component struct {
	ID   string
	Name string
}

// LocalWorklog is a cached copy of one remote work-log record. Rows are
// never mutated in place; sync deletes and re-inserts them.
type LocalWorklog struct {
	ID               string
	IssueKey         string
	IssueID          string
	Author           string
	Created          time.Time
	Updated          time.Time
	Started          time.Time
	TimeSpent        string
	TimeSpentSeconds int64
	Comment          string
}

// Timer is a local, not-yet-submitted timing session. A nil Stopped
// means the timer is still running.
type Timer struct {
	ID       int64
	IssueKey string
	Created  time.Time
	Started  time.Time
	Stopped  *time.Time
	Synced   bool
	Comment  string
}

// Active reports whether the timer is still running.
func (t *Timer) Active() bool { return t.Stopped == nil }

// Duration returns the elapsed time of a stopped timer, or the time
// since start for an active one.
func (t *Timer) Duration(now time.Time) time.Duration {
	if t.Stopped != nil {
		return t.Stopped.Sub(t.Started)
	}
	return now.Sub(t.Started)
}

// User is the authenticated remote account, cached locally so work-log
// filters can run without a network round trip.
type User struct {
	AccountID   string
	Email       string
	DisplayName string
	TimeZone    string
}
