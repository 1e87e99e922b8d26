package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// TestStartTimer tests creating an active timer
func TestStartTimer(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	started := time.Now().Add(-time.Hour)
	timer, err := s.StartTimer(ctx, "TIME-1", started, "reviewing")
	if err != nil {
		t.Fatalf("StartTimer() failed: %v", err)
	}
	if timer.ID == 0 {
		t.Error("timer ID not assigned")
	}

	active, err := s.FindActiveTimer(ctx)
	if err != nil {
		t.Fatalf("FindActiveTimer() failed: %v", err)
	}
	if active.ID != timer.ID || active.IssueKey != "TIME-1" || active.Comment != "reviewing" {
		t.Errorf("active = %+v", active)
	}
	if !active.Active() {
		t.Error("timer should be active")
	}
}

// TestStartTimer_SecondActiveRejected tests the single-active-timer
// invariant for sequential starts
func TestStartTimer_SecondActiveRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.StartTimer(ctx, "TIME-1", time.Now(), ""); err != nil {
		t.Fatalf("StartTimer() failed: %v", err)
	}

	_, err := s.StartTimer(ctx, "TIME-2", time.Now(), "")
	if !errors.Is(err, ErrActiveTimerExists) {
		t.Fatalf("second StartTimer() = %v, want ErrActiveTimerExists", err)
	}
}

// TestStartTimer_Concurrent tests that racing starts never create two
// active rows; the constraint is evaluated by the database, not by a
// check-then-act sequence
func TestStartTimer_Concurrent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const attempts = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.StartTimer(ctx, "TIME-1", time.Now(), "")
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			if !errors.Is(err, ErrActiveTimerExists) {
				t.Errorf("StartTimer() = %v, want ErrActiveTimerExists", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Errorf("%d starts succeeded, want exactly 1", succeeded)
	}

	var active int
	if err := s.conn.QueryRow(`SELECT COUNT(*) FROM timer WHERE "end" IS NULL`).Scan(&active); err != nil {
		t.Fatalf("counting active timers: %v", err)
	}
	if active != 1 {
		t.Errorf("%d active rows, want exactly 1", active)
	}
}

// TestStartTimer_AfterStop tests that a stopped timer frees the slot
func TestStartTimer_AfterStop(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.StartTimer(ctx, "TIME-1", time.Now().Add(-time.Hour), ""); err != nil {
		t.Fatalf("StartTimer() failed: %v", err)
	}
	if _, err := s.StopActiveTimer(ctx, time.Now()); err != nil {
		t.Fatalf("StopActiveTimer() failed: %v", err)
	}
	if _, err := s.StartTimer(ctx, "TIME-2", time.Now(), ""); err != nil {
		t.Fatalf("StartTimer() after stop failed: %v", err)
	}
}

// TestStopActiveTimer tests stopping and the resulting duration
func TestStopActiveTimer(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	started := time.Now().Add(-3 * time.Hour).Truncate(time.Millisecond)
	if _, err := s.StartTimer(ctx, "TIME-1", started, ""); err != nil {
		t.Fatalf("StartTimer() failed: %v", err)
	}

	stoppedAt := started.Add(3 * time.Hour)
	timer, err := s.StopActiveTimer(ctx, stoppedAt)
	if err != nil {
		t.Fatalf("StopActiveTimer() failed: %v", err)
	}
	if timer.Stopped == nil {
		t.Fatal("Stopped not set")
	}
	if d := timer.Duration(time.Now()); d != 3*time.Hour {
		t.Errorf("Duration = %v, want 3h", d)
	}

	if _, err := s.FindActiveTimer(ctx); !errors.Is(err, ErrNoActiveTimer) {
		t.Errorf("FindActiveTimer() = %v, want ErrNoActiveTimer", err)
	}
}

// TestStopActiveTimer_NoneRunning tests the error when nothing is active
func TestStopActiveTimer_NoneRunning(t *testing.T) {
	s := newTestStore(t)

	_, err := s.StopActiveTimer(context.Background(), time.Now())
	if !errors.Is(err, ErrNoActiveTimer) {
		t.Fatalf("StopActiveTimer() = %v, want ErrNoActiveTimer", err)
	}
}

// TestDiscardActiveTimer tests deleting the running timer
func TestDiscardActiveTimer(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.DiscardActiveTimer(ctx); !errors.Is(err, ErrNoActiveTimer) {
		t.Fatal("expected ErrNoActiveTimer on empty database")
	}

	if _, err := s.StartTimer(ctx, "TIME-1", time.Now(), ""); err != nil {
		t.Fatalf("StartTimer() failed: %v", err)
	}

	discarded, err := s.DiscardActiveTimer(ctx)
	if err != nil {
		t.Fatalf("DiscardActiveTimer() failed: %v", err)
	}
	if discarded.IssueKey != "TIME-1" {
		t.Errorf("IssueKey = %q, want TIME-1", discarded.IssueKey)
	}

	timers, err := s.FindTimersSince(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("FindTimersSince() failed: %v", err)
	}
	if len(timers) != 0 {
		t.Errorf("%d timers remain after discard, want 0", len(timers))
	}
}

// TestUpdateTimer tests marking a timer synced
func TestUpdateTimer(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.StartTimer(ctx, "TIME-1", time.Now().Add(-time.Hour), ""); err != nil {
		t.Fatalf("StartTimer() failed: %v", err)
	}
	timer, err := s.StopActiveTimer(ctx, time.Now())
	if err != nil {
		t.Fatalf("StopActiveTimer() failed: %v", err)
	}

	timer.Synced = true
	if err := s.UpdateTimer(ctx, timer); err != nil {
		t.Fatalf("UpdateTimer() failed: %v", err)
	}

	timers, err := s.FindTimersSince(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("FindTimersSince() failed: %v", err)
	}
	if len(timers) != 1 || !timers[0].Synced {
		t.Errorf("timers = %+v, want one synced timer", timers)
	}

	timer.ID = 9999
	if err := s.UpdateTimer(ctx, timer); err == nil {
		t.Error("expected error updating unknown timer id")
	}
}

// TestFindTimersSince tests the creation-time cutoff
func TestFindTimersSince(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.StartTimer(ctx, "TIME-1", time.Now().Add(-time.Hour), ""); err != nil {
		t.Fatalf("StartTimer() failed: %v", err)
	}
	if _, err := s.StopActiveTimer(ctx, time.Now()); err != nil {
		t.Fatalf("StopActiveTimer() failed: %v", err)
	}

	recent, err := s.FindTimersSince(ctx, time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("FindTimersSince() failed: %v", err)
	}
	if len(recent) != 1 {
		t.Errorf("got %d timers, want 1", len(recent))
	}

	future, err := s.FindTimersSince(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("FindTimersSince() failed: %v", err)
	}
	if len(future) != 0 {
		t.Errorf("got %d timers for future cutoff, want 0", len(future))
	}
}
