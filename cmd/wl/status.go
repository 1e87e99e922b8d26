package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/steveyegge/worklog/internal/jira"
	"github.com/steveyegge/worklog/internal/store"
	"github.com/steveyegge/worklog/internal/timer"
)

var (
	flagPurgeIssue string
	flagPurgeYes   bool
)

var (
	statusLabelStyle = lipgloss.NewStyle().Bold(true)
	statusWarnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache contents and the running timer",
	Run: func(cmd *cobra.Command, args []string) {
		rt := mustRuntime()
		defer rt.close()
		ctx := context.Background()

		stats, err := rt.store.GetStats(ctx)
		if err != nil {
			fail(err)
		}

		fmt.Printf("%s %s\n", statusLabelStyle.Render("Cache:"), rt.store.Path())
		fmt.Printf("  issues: %d, work logs: %d, timers: %d\n",
			stats.Issues, stats.Worklogs, stats.Timers)
		if stats.LastStarted.Valid {
			fmt.Printf("  latest entry started: %s\n", stats.LastStarted.String)
		} else {
			fmt.Println("  no work logs cached yet; run 'wl sync'")
		}

		user, err := rt.store.FindUser(ctx)
		switch {
		case errors.Is(err, store.ErrNoUser):
			fmt.Println(statusWarnStyle.Render("No cached user; run 'wl sync' to authenticate."))
		case err != nil:
			fail(err)
		default:
			fmt.Printf("%s %s <%s>\n", statusLabelStyle.Render("User:"), user.DisplayName, user.Email)
		}

		active, err := rt.store.FindActiveTimer(ctx)
		switch {
		case errors.Is(err, store.ErrNoActiveTimer):
			fmt.Println("No timer running.")
		case err != nil:
			fail(err)
		default:
			fmt.Printf("%s %s, running for %s (started %s)\n",
				statusLabelStyle.Render("Timer:"), active.IssueKey,
				timer.FormatTimeSpent(int64(active.Duration(time.Now())/time.Second)),
				active.Started.Format("15:04"))
		}
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Drop an issue and all its cached data",
	Long: `Remove an issue from the cache together with its work logs, component
links, and timers. Only the local cache is touched; nothing is deleted
from Jira.`,
	Run: func(cmd *cobra.Command, args []string) {
		rt := mustRuntime()
		defer rt.close()
		ctx := context.Background()

		issueKey := jira.NormalizeIssueKey(flagPurgeIssue)
		if _, err := rt.store.FindIssue(ctx, issueKey); err != nil {
			fail(err)
		}

		if !flagPurgeYes {
			var confirmed bool
			prompt := huh.NewConfirm().
				Title(fmt.Sprintf("Purge %s and all its cached work logs and timers?", issueKey)).
				Value(&confirmed)
			if err := prompt.Run(); err != nil {
				fail(err)
			}
			if !confirmed {
				fmt.Println("Nothing purged.")
				return
			}
		}

		if err := rt.store.PurgeIssue(ctx, issueKey); err != nil {
			fail(err)
		}
		fmt.Printf("Purged %s from the cache.\n", issueKey)
	},
}

func init() {
	purgeCmd.Flags().StringVarP(&flagPurgeIssue, "issue", "i", "", "issue key to purge")
	purgeCmd.MarkFlagRequired("issue")
	purgeCmd.Flags().BoolVarP(&flagPurgeYes, "yes", "y", false, "skip confirmation")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(purgeCmd)
}
