package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/steveyegge/worklog/internal/reconcile"
	"github.com/steveyegge/worklog/internal/timer"
)

var (
	flagSyncStarted  string
	flagSyncIssues   []string
	flagSyncProjects []string
	flagSyncAllUsers bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the local cache with Jira",
	Long: `Fetch work logs from Jira and replace the cached copies.

The scope is the given --issues and --projects; with neither, every
issue key already present in the cache is refreshed. Without --started
the fetch covers the last 30 days.

Exits with code 4 when the scope resolves to no issues.`,
	Run: func(cmd *cobra.Command, args []string) {
		rt := mustRuntime()
		defer rt.close()
		ctx := context.Background()

		opts := reconcile.Options{
			Issues:   flagSyncIssues,
			Projects: flagSyncProjects,
			AllUsers: flagSyncAllUsers,
		}
		if flagSyncStarted != "" {
			started, err := timer.ParseDateTime(flagSyncStarted, time.Now())
			if err != nil {
				fail(err)
			}
			opts.StartedAfter = started
		}

		r := reconcile.New(rt.client, rt.store, rt.logger)
		summary, err := r.Reconcile(ctx, opts)
		if errors.Is(err, reconcile.ErrNothingToDo) {
			fmt.Fprintln(os.Stderr, "Nothing to sync: no issues given and the cache is empty.")
			fmt.Fprintln(os.Stderr, "Hint: wl sync --issues KEY... or --projects KEY...")
			os.Exit(exitNothingToDo)
		}
		if err != nil {
			fail(err)
		}

		fmt.Printf("Synced %d issues: %d entries fetched, %d stored (as %s)\n",
			len(summary.ResolvedKeys), summary.Fetched, summary.Inserted,
			summary.User.DisplayName)
		for _, failure := range summary.Report.Failed {
			fmt.Fprintf(os.Stderr, "Warning: %s skipped: %v\n", failure.IssueKey, failure.Err)
		}
	},
}

func init() {
	syncCmd.Flags().StringVar(&flagSyncStarted, "started", "", "only fetch entries started after this time")
	syncCmd.Flags().StringSliceVarP(&flagSyncIssues, "issues", "i", nil, "issue keys to sync")
	syncCmd.Flags().StringSliceVarP(&flagSyncProjects, "projects", "p", nil, "project keys to sync")
	syncCmd.Flags().BoolVar(&flagSyncAllUsers, "all-users", false, "keep entries from every author, not just yours")
	rootCmd.AddCommand(syncCmd)
}
