package report

import (
	"testing"
	"time"

	"github.com/steveyegge/worklog/internal/store"
)

func entry(key string, started time.Time, seconds int64) store.LocalWorklog {
	return store.LocalWorklog{
		ID:               key + started.Format("20060102T15"),
		IssueKey:         key,
		Started:          started,
		TimeSpentSeconds: seconds,
	}
}

// TestBuildWeeks tests per-week, per-issue aggregation
func TestBuildWeeks(t *testing.T) {
	mon := time.Date(2026, 8, 17, 9, 0, 0, 0, time.Local)  // week 34
	nextMon := mon.AddDate(0, 0, 7)                        // week 35

	weeks := BuildWeeks([]store.LocalWorklog{
		entry("TIME-1", mon, 3600),
		entry("TIME-1", mon.Add(2*time.Hour), 1800),
		entry("TIME-2", mon.AddDate(0, 0, 1), 7200),
		entry("TIME-1", nextMon, 5400),
	})

	if len(weeks) != 2 {
		t.Fatalf("got %d weeks, want 2", len(weeks))
	}

	first := weeks[0]
	if first.Label() != "2026-W34" {
		t.Errorf("first week = %s, want 2026-W34", first.Label())
	}
	if first.PerIssue["TIME-1"] != 5400 {
		t.Errorf("TIME-1 = %d, want 5400", first.PerIssue["TIME-1"])
	}
	if first.PerIssue["TIME-2"] != 7200 {
		t.Errorf("TIME-2 = %d, want 7200", first.PerIssue["TIME-2"])
	}
	if first.TotalSeconds != 12600 {
		t.Errorf("week total = %d, want 12600", first.TotalSeconds)
	}

	if got := first.IssueKeys(); len(got) != 2 || got[0] != "TIME-1" || got[1] != "TIME-2" {
		t.Errorf("IssueKeys = %v, want sorted [TIME-1 TIME-2]", got)
	}

	second := weeks[1]
	if second.Label() != "2026-W35" || second.TotalSeconds != 5400 {
		t.Errorf("second week = %s total %d, want 2026-W35 total 5400", second.Label(), second.TotalSeconds)
	}
}

// TestBuildWeeks_Empty tests the no-data case
func TestBuildWeeks_Empty(t *testing.T) {
	if weeks := BuildWeeks(nil); len(weeks) != 0 {
		t.Errorf("got %d weeks for no entries, want 0", len(weeks))
	}
}

// TestStartOfWeek tests the Monday anchor
func TestStartOfWeek(t *testing.T) {
	wed := time.Date(2026, 8, 26, 15, 30, 0, 0, time.Local)
	want := time.Date(2026, 8, 24, 0, 0, 0, 0, time.Local)
	if got := startOfWeek(wed); !got.Equal(want) {
		t.Errorf("startOfWeek(wed) = %v, want %v", got, want)
	}

	mon := time.Date(2026, 8, 24, 0, 0, 0, 0, time.Local)
	if got := startOfWeek(mon); !got.Equal(mon) {
		t.Errorf("startOfWeek(mon) = %v, want %v", got, mon)
	}

	sun := time.Date(2026, 8, 23, 12, 0, 0, 0, time.Local)
	wantSun := time.Date(2026, 8, 17, 0, 0, 0, 0, time.Local)
	if got := startOfWeek(sun); !got.Equal(wantSun) {
		t.Errorf("startOfWeek(sun) = %v, want %v", got, wantSun)
	}
}
