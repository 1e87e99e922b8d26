package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steveyegge/worklog/internal/report"
)

var (
	flagReportWeeks  int
	flagReportIssues []string
	flagReportUsers  []string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize cached work logs per week and issue",
	Long: `Print per-week, per-issue totals from the local cache. The report
never contacts Jira; run 'wl sync' first for fresh numbers.`,
	Run: func(cmd *cobra.Command, args []string) {
		rt := mustRuntime()
		defer rt.close()

		out, err := report.Render(context.Background(), rt.store, report.Options{
			Weeks:  flagReportWeeks,
			Issues: flagReportIssues,
			Users:  flagReportUsers,
		})
		if err != nil {
			fail(err)
		}
		fmt.Println(out)
	},
}

func init() {
	reportCmd.Flags().IntVarP(&flagReportWeeks, "weeks", "w", 1, "weeks to cover, counting the current one")
	reportCmd.Flags().StringSliceVarP(&flagReportIssues, "issues", "i", nil, "limit to these issue keys")
	reportCmd.Flags().StringSliceVarP(&flagReportUsers, "users", "u", nil, "limit to these author names")
	rootCmd.AddCommand(reportCmd)
}
