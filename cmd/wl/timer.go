package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/steveyegge/worklog/internal/store"
	"github.com/steveyegge/worklog/internal/timer"
)

var (
	flagTimerIssue   string
	flagTimerComment string
	flagTimerStopAt  string
	flagTimerYes     bool
)

var timerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Track an in-progress work session",
	Long: `Manage the timer: a single in-progress work session persisted in the
local cache. At most one timer can run at a time, across restarts.

A stopped timer becomes a Jira work log when you run 'wl timer sync'.`,
}

var timerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start timing against an issue",
	Run: func(cmd *cobra.Command, args []string) {
		rt := mustRuntime()
		defer rt.close()
		ctx := context.Background()

		engine := timer.New(rt.store, rt.client, rt.logger)
		t, err := engine.Start(ctx, flagTimerIssue, flagTimerComment)
		if errors.Is(err, store.ErrIssueNotFound) {
			fail(fmt.Errorf("%s is not in the local cache; run 'wl sync --issues %s' first",
				flagTimerIssue, flagTimerIssue))
		}
		if errors.Is(err, store.ErrActiveTimerExists) {
			active, ferr := engine.Active(ctx)
			if ferr == nil {
				fail(fmt.Errorf("a timer is already running for %s (started %s); stop or discard it first",
					active.IssueKey, active.Started.Format("15:04")))
			}
			fail(err)
		}
		if err != nil {
			fail(err)
		}

		fmt.Printf("Timer started for %s at %s\n", t.IssueKey, t.Started.Format("15:04"))
	},
}

var timerStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running timer",
	Run: func(cmd *cobra.Command, args []string) {
		rt := mustRuntime()
		defer rt.close()
		ctx := context.Background()

		var stopAt *time.Time
		if flagTimerStopAt != "" {
			at, err := timer.ParseDateTime(flagTimerStopAt, time.Now())
			if err != nil {
				fail(err)
			}
			stopAt = &at
		}

		engine := timer.New(rt.store, rt.client, rt.logger)
		t, err := engine.Stop(ctx, stopAt)
		if errors.Is(err, store.ErrNoActiveTimer) {
			fail(errors.New("no timer is running"))
		}
		if err != nil {
			fail(err)
		}

		fmt.Printf("Timer stopped for %s: %s\n",
			t.IssueKey, timer.FormatTimeSpent(int64(t.Duration(time.Now())/time.Second)))
		fmt.Println("Run 'wl timer sync' to submit it to Jira.")
	},
}

var timerDiscardCmd = &cobra.Command{
	Use:   "discard",
	Short: "Throw away the running timer",
	Run: func(cmd *cobra.Command, args []string) {
		rt := mustRuntime()
		defer rt.close()
		ctx := context.Background()

		engine := timer.New(rt.store, rt.client, rt.logger)
		active, err := engine.Active(ctx)
		if errors.Is(err, store.ErrNoActiveTimer) {
			fail(errors.New("no timer is running"))
		}
		if err != nil {
			fail(err)
		}

		if !flagTimerYes {
			elapsed := timer.FormatTimeSpent(int64(active.Duration(time.Now()) / time.Second))
			var confirmed bool
			prompt := huh.NewConfirm().
				Title(fmt.Sprintf("Discard the timer for %s (%s elapsed)?", active.IssueKey, elapsed)).
				Value(&confirmed)
			if err := prompt.Run(); err != nil {
				fail(err)
			}
			if !confirmed {
				fmt.Println("Kept the timer running.")
				return
			}
		}

		if _, err := engine.Discard(ctx); err != nil {
			fail(err)
		}
		fmt.Printf("Discarded timer for %s. No work log was created.\n", active.IssueKey)
	},
}

var timerSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Submit stopped timers as Jira work logs",
	Run: func(cmd *cobra.Command, args []string) {
		rt := mustRuntime()
		defer rt.close()
		ctx := context.Background()

		engine := timer.New(rt.store, rt.client, rt.logger)
		synced, err := engine.SyncToJira(ctx)
		if err != nil {
			fail(err)
		}
		if len(synced) == 0 {
			fmt.Println("No stopped, unsynced timers to submit.")
			return
		}
		for _, t := range synced {
			fmt.Printf("Submitted %s: %s\n",
				t.IssueKey, timer.FormatTimeSpent(int64(t.Duration(time.Now())/time.Second)))
		}
	},
}

func init() {
	timerStartCmd.Flags().StringVarP(&flagTimerIssue, "issue", "i", "", "issue key to time against")
	timerStartCmd.MarkFlagRequired("issue")
	timerStartCmd.Flags().StringVarP(&flagTimerComment, "comment", "c", "", "work log comment")

	timerStopCmd.Flags().StringVar(&flagTimerStopAt, "at", "", "stop time (e.g. 16:30), default now")

	timerDiscardCmd.Flags().BoolVarP(&flagTimerYes, "yes", "y", false, "skip confirmation")

	timerCmd.AddCommand(timerStartCmd)
	timerCmd.AddCommand(timerStopCmd)
	timerCmd.AddCommand(timerDiscardCmd)
	timerCmd.AddCommand(timerSyncCmd)
	rootCmd.AddCommand(timerCmd)
}
