package store

import (
	"context"
	"path/filepath"
	"testing"
)

// newTestStore opens a fresh database under t.TempDir with the schema
// applied.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.InitSchema(); err != nil {
		t.Fatalf("InitSchema() failed: %v", err)
	}
	return s
}

// TestInitSchema_TablesExist tests schema creation
func TestInitSchema_TablesExist(t *testing.T) {
	s := newTestStore(t)

	tables := []string{"issue", "worklog", "component", "issue_component", "timer", "user"}
	for _, table := range tables {
		var count int
		query := `SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`
		if err := s.conn.QueryRow(query, table).Scan(&count); err != nil {
			t.Fatalf("Failed to query table %s: %v", table, err)
		}
		if count != 1 {
			t.Errorf("Table %s does not exist", table)
		}
	}

	var count int
	query := `SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name='idx_single_active_timer'`
	if err := s.conn.QueryRow(query).Scan(&count); err != nil {
		t.Fatalf("Failed to query index: %v", err)
	}
	if count != 1 {
		t.Error("Partial unique index idx_single_active_timer does not exist")
	}
}

// TestInitSchema_Idempotent tests that schema initialization can run twice
func TestInitSchema_Idempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.InitSchema(); err != nil {
		t.Errorf("Second InitSchema() failed: %v", err)
	}
}

// TestClose tests that closing twice is safe
func TestClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Second Close() failed: %v", err)
	}
}

// TestAddIssueSummaries_InsertAndUpdate tests the issue upsert path
func TestAddIssueSummaries_InsertAndUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	issues := []IssueSummary{
		{Key: "TIME-1", ID: "10001", Summary: "First", Components: []Component{{ID: "7", Name: "backend"}}},
		{Key: "TIME-2", ID: "10002", Summary: "Second"},
	}
	if err := s.AddIssueSummaries(ctx, issues); err != nil {
		t.Fatalf("AddIssueSummaries() failed: %v", err)
	}

	got, err := s.FindIssue(ctx, "TIME-1")
	if err != nil {
		t.Fatalf("FindIssue() failed: %v", err)
	}
	if got.Summary != "First" {
		t.Errorf("Summary = %q, want 'First'", got.Summary)
	}
	if len(got.Components) != 1 || got.Components[0].Name != "backend" {
		t.Errorf("Components = %v, want [backend]", got.Components)
	}

	// Upsert with changed summary and a second component
	issues[0].Summary = "Renamed"
	issues[0].Components = append(issues[0].Components, Component{ID: "8", Name: "frontend"})
	if err := s.AddIssueSummaries(ctx, issues); err != nil {
		t.Fatalf("Second AddIssueSummaries() failed: %v", err)
	}

	got, err = s.FindIssue(ctx, "TIME-1")
	if err != nil {
		t.Fatalf("FindIssue() failed: %v", err)
	}
	if got.Summary != "Renamed" {
		t.Errorf("Summary = %q, want 'Renamed'", got.Summary)
	}
	if len(got.Components) != 2 {
		t.Errorf("Components = %d, want 2", len(got.Components))
	}

	all, err := s.ListIssues(ctx)
	if err != nil {
		t.Fatalf("ListIssues() failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("ListIssues() = %d issues, want 2", len(all))
	}
}

// TestFindIssue_NotFound tests the missing-issue error
func TestFindIssue_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.FindIssue(context.Background(), "TIME-999")
	if err == nil {
		t.Fatal("expected error for missing issue, got nil")
	}
}

// TestUpsertUser tests storing and refreshing the authenticated account
func TestUpsertUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.FindUser(ctx); err == nil {
		t.Error("expected ErrNoUser on empty database, got nil")
	}

	user := User{AccountID: "acc-1", Email: "me@example.com", DisplayName: "Me", TimeZone: "Europe/Oslo"}
	if err := s.UpsertUser(ctx, user); err != nil {
		t.Fatalf("UpsertUser() failed: %v", err)
	}

	user.DisplayName = "Me Again"
	if err := s.UpsertUser(ctx, user); err != nil {
		t.Fatalf("Second UpsertUser() failed: %v", err)
	}

	got, err := s.FindUser(ctx)
	if err != nil {
		t.Fatalf("FindUser() failed: %v", err)
	}
	if got.DisplayName != "Me Again" {
		t.Errorf("DisplayName = %q, want 'Me Again'", got.DisplayName)
	}
}

// TestGetStats tests the cache summary counts
func TestGetStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.AddIssueSummaries(ctx, []IssueSummary{{Key: "TIME-1", ID: "10001"}}); err != nil {
		t.Fatalf("AddIssueSummaries() failed: %v", err)
	}
	if err := s.AddWorklogEntry(ctx, testWorklog("wl-1", "TIME-1", 0)); err != nil {
		t.Fatalf("AddWorklogEntry() failed: %v", err)
	}

	stats, err := s.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats() failed: %v", err)
	}
	if stats.Issues != 1 || stats.Worklogs != 1 || stats.Timers != 0 {
		t.Errorf("Stats = %+v, want 1 issue, 1 worklog, 0 timers", stats)
	}
	if !stats.LastStarted.Valid {
		t.Error("LastStarted should be set")
	}
}

// TestPurgeIssue tests that purge removes the issue and everything
// referencing it
func TestPurgeIssue(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	issues := []IssueSummary{
		{Key: "TIME-1", ID: "10001", Components: []Component{{ID: "7", Name: "backend"}}},
	}
	if err := s.AddIssueSummaries(ctx, issues); err != nil {
		t.Fatalf("AddIssueSummaries() failed: %v", err)
	}
	if err := s.AddWorklogEntry(ctx, testWorklog("wl-1", "TIME-1", 0)); err != nil {
		t.Fatalf("AddWorklogEntry() failed: %v", err)
	}

	if err := s.PurgeIssue(ctx, "TIME-1"); err != nil {
		t.Fatalf("PurgeIssue() failed: %v", err)
	}

	if _, err := s.FindIssue(ctx, "TIME-1"); err == nil {
		t.Error("issue still present after purge")
	}
	keys, err := s.FindUniqueIssueKeys(ctx)
	if err != nil {
		t.Fatalf("FindUniqueIssueKeys() failed: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("worklogs still present after purge: %v", keys)
	}
}
