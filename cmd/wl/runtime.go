package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/steveyegge/worklog/internal/config"
	"github.com/steveyegge/worklog/internal/jira"
	"github.com/steveyegge/worklog/internal/logging"
	"github.com/steveyegge/worklog/internal/store"
	"github.com/steveyegge/worklog/internal/timer"
)

// runtime bundles the objects every command needs: resolved config, the
// open cache database, the remote client, and the logger. It is built
// once per invocation and passed around explicitly.
type runtime struct {
	cfg    *config.Config
	store  *store.Store
	client *jira.Client
	logger *slog.Logger
}

// newRuntime loads config, sets up logging, and opens the local cache.
// The remote client is constructed too; commands that never touch the
// network simply don't call it.
func newRuntime() (*runtime, error) {
	path := flagConfigPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if flagVerbose {
		cfg.Log.Level = "debug"
	}
	logger := logging.Setup(cfg.Log)

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(dbPath, logger)
	if err != nil {
		return nil, err
	}
	if err := st.InitSchema(); err != nil {
		st.Close()
		return nil, err
	}

	client, err := jira.NewClient(jira.Config{
		URL:   cfg.Jira.URL,
		User:  cfg.Jira.User,
		Token: cfg.Jira.Token,
	}, logger)
	if err != nil {
		st.Close()
		return nil, err
	}

	return &runtime{cfg: cfg, store: st, client: client, logger: logger}, nil
}

func (rt *runtime) close() {
	if err := rt.store.Close(); err != nil {
		rt.logger.Warn("closing cache", "error", err)
	}
}

// schedule returns the working-time calibration, preferring the server's
// own time-tracking configuration and falling back to the config file
// when the endpoint is unreachable.
func (rt *runtime) schedule(ctx context.Context) timer.Schedule {
	fallback := timer.Schedule{
		HoursPerDay: rt.cfg.Tracking.HoursPerDay,
		DaysPerWeek: rt.cfg.Tracking.DaysPerWeek,
	}

	tc, err := rt.client.GetTimeTrackingConfiguration(ctx)
	if err != nil {
		rt.logger.Debug("time-tracking configuration unavailable, using config values", "error", err)
		return fallback
	}
	if tc.WorkingHoursPerDay <= 0 || tc.WorkingDaysPerWeek <= 0 {
		return fallback
	}
	return timer.Schedule{HoursPerDay: tc.WorkingHoursPerDay, DaysPerWeek: tc.WorkingDaysPerWeek}
}

// issueID resolves the numeric id the per-issue remote endpoints want,
// falling back to the key itself, which the API also accepts.
func (rt *runtime) issueID(ctx context.Context, issueKey string) string {
	if issue, err := rt.store.FindIssue(ctx, issueKey); err == nil && issue.ID != "" {
		return issue.ID
	}
	return issueKey
}

// mustRuntime is the command-entry helper: build the runtime or exit.
func mustRuntime() *runtime {
	rt, err := newRuntime()
	if err != nil {
		fail(fmt.Errorf("startup: %w", err))
	}
	return rt
}
