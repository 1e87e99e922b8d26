package jira

import (
	"fmt"
	"strings"
	"time"
)

// timeLayout is the tracker's timestamp format, e.g.
// "2024-05-17T08:00:00.000+0200". The offset has no colon.
const timeLayout = "2006-01-02T15:04:05.000-0700"

// Time wraps time.Time with the tracker's JSON timestamp format.
type Time struct {
	time.Time
}

func (t *Time) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(timeLayout, s)
	if err != nil {
		return fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Format(timeLayout) + `"`), nil
}

// NormalizeIssueKey upper-cases a human-entered issue key so "time-147"
// and "TIME-147" refer to the same issue everywhere.
func NormalizeIssueKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

// Author identifies the account that created a work log.
type Author struct {
	AccountID   string `json:"accountId"`
	Email       string `json:"emailAddress,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// Worklog is one remote work-log record as returned by the tracker.
type Worklog struct {
	ID               string `json:"id"`
	IssueID          string `json:"issueId"`
	Author           Author `json:"author"`
	Created          Time   `json:"created"`
	Updated          Time   `json:"updated"`
	Started          Time   `json:"started"`
	TimeSpent        string `json:"timeSpent"`
	TimeSpentSeconds int64  `json:"timeSpentSeconds"`
	Comment          string `json:"comment,omitempty"`

	// IssueKey is not part of the wire format for the per-issue worklog
	// endpoint; the client fills it in from the request context.
	IssueKey string `json:"-"`
}

// worklogsPage is one page of the offset-paged work-log endpoint.
type worklogsPage struct {
	StartAt    int       `json:"startAt"`
	MaxResults int       `json:"maxResults"`
	Total      int       `json:"total"`
	Worklogs   []Worklog `json:"worklogs"`
}

// Component is a project component attached to an issue.
type Component struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// IssueSummary is the projection of a remote issue the cache keeps:
// identifiers, title, and components.
type IssueSummary struct {
	ID         string      `json:"id"`
	Key        string      `json:"key"`
	Fields     issueFields `json:"fields"`
}

type issueFields struct {
	Summary    string      `json:"summary"`
	Components []Component `json:"components"`
}

// Summary returns the issue title.
func (i IssueSummary) Summary() string { return i.Fields.Summary }

// Components returns the issue's components.
func (i IssueSummary) Components() []Component { return i.Fields.Components }

// searchPage is one page of the cursor-paged issue search. The cursor is
// omitted on the last page.
type searchPage struct {
	Issues        []IssueSummary `json:"issues"`
	NextPageToken string         `json:"nextPageToken,omitempty"`
}

// User is the authenticated remote account.
type User struct {
	AccountID   string `json:"accountId"`
	Email       string `json:"emailAddress"`
	DisplayName string `json:"displayName"`
	TimeZone    string `json:"timeZone"`
}

// TimeTrackingConfiguration is the server's working-time calibration,
// used to convert week/day duration components into seconds.
type TimeTrackingConfiguration struct {
	WorkingHoursPerDay  float64 `json:"workingHoursPerDay"`
	WorkingDaysPerWeek  float64 `json:"workingDaysPerWeek"`
	TimeFormat          string  `json:"timeFormat,omitempty"`
	DefaultUnit         string  `json:"defaultUnit,omitempty"`
}

type configurationResponse struct {
	TimeTrackingConfiguration TimeTrackingConfiguration `json:"timeTrackingConfiguration"`
}
