package main

import (
	"context"
	"fmt"
	"time"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/steveyegge/worklog/internal/jira"
	"github.com/steveyegge/worklog/internal/reconcile"
	"github.com/steveyegge/worklog/internal/timer"
)

var (
	flagAddIssue     string
	flagAddDurations []string
	flagAddStarted   string
	flagAddComment   string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record work directly, without a timer",
	Long: `Add one or more work logs to an issue.

Single entry, optionally with an explicit start:
  wl add --issue TIME-147 --durations 1h30m --started 09:00

A week's worth of entries at once, one per weekday prefix, each landing
on the most recent matching weekday at 08:00:
  wl add --issue TIME-147 --durations Mon:7,5h Tue:2h30m Fri:1h

Durations combine weeks, days, hours, and minutes ("1w2.5d5.5h30m");
day and week lengths follow the server's time-tracking settings.`,
	Run: func(cmd *cobra.Command, args []string) {
		rt := mustRuntime()
		defer rt.close()
		ctx := context.Background()

		issueKey := jira.NormalizeIssueKey(flagAddIssue)
		if _, err := rt.store.FindIssue(ctx, issueKey); err != nil {
			fail(fmt.Errorf("%s is not in the local cache; run 'wl sync --issues %s' first",
				issueKey, issueKey))
		}

		schedule := rt.schedule(ctx)
		now := time.Now()

		entries, err := parseEntries(flagAddDurations, flagAddStarted, schedule, now)
		if err != nil {
			fail(err)
		}

		issueID := rt.issueID(ctx, issueKey)
		for _, entry := range entries {
			created, err := rt.client.InsertWorklog(ctx, issueID, entry.Started, entry.Seconds, flagAddComment)
			if err != nil {
				fail(err)
			}
			created.IssueKey = issueKey
			if err := reconcile.MirrorWorklog(ctx, rt.store, created); err != nil {
				fail(err)
			}
			fmt.Printf("Added %s to %s starting %s\n",
				timer.FormatTimeSpent(entry.Seconds), issueKey,
				entry.Started.Format("2006-01-02 15:04"))
		}
	},
}

// parseEntries dispatches on the first durations item: a leading digit
// means one single entry, a leading letter means the weekday batch form.
func parseEntries(durations []string, startedSpec string, schedule timer.Schedule, now time.Time) ([]timer.ManualEntry, error) {
	if len(durations) == 0 {
		return nil, fmt.Errorf("at least one --durations value is required")
	}

	if durations[0] == "" {
		return nil, fmt.Errorf("empty duration")
	}

	first := []rune(durations[0])
	if unicode.IsDigit(first[0]) {
		if len(durations) > 1 {
			return nil, fmt.Errorf("multiple durations need weekday prefixes, e.g. Mon:1,5h Tue:2h")
		}
		seconds, err := timer.ParseTimeSpent(durations[0], schedule)
		if err != nil {
			return nil, err
		}

		var started *time.Time
		if startedSpec != "" {
			t, err := timer.ParseDateTime(startedSpec, now)
			if err != nil {
				return nil, err
			}
			started = &t
		}
		at, err := timer.CalculateStartedTime(started, seconds, now)
		if err != nil {
			return nil, err
		}
		return []timer.ManualEntry{{Started: at, Seconds: seconds}}, nil
	}

	if startedSpec != "" {
		return nil, fmt.Errorf("--started cannot be combined with weekday entries")
	}
	return timer.ParseWeekdayDurations(durations, schedule, now)
}

func init() {
	addCmd.Flags().StringVarP(&flagAddIssue, "issue", "i", "", "issue key")
	addCmd.MarkFlagRequired("issue")
	addCmd.Flags().StringSliceVarP(&flagAddDurations, "durations", "d", nil, "duration(s), e.g. 1h30m or Mon:7,5h")
	addCmd.MarkFlagRequired("durations")
	addCmd.Flags().StringVar(&flagAddStarted, "started", "", "start time for a single entry")
	addCmd.Flags().StringVarP(&flagAddComment, "comment", "c", "", "work log comment")
	rootCmd.AddCommand(addCmd)
}
