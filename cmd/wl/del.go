package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steveyegge/worklog/internal/jira"
)

var (
	flagDelIssue     string
	flagDelWorklogID string
)

var delCmd = &cobra.Command{
	Use:   "del",
	Short: "Delete a work log from Jira and the cache",
	Long: `Delete one work log, remote side first. The cached copy is removed
only after Jira confirms the deletion, so a failed request leaves the
cache consistent with the server.`,
	Run: func(cmd *cobra.Command, args []string) {
		rt := mustRuntime()
		defer rt.close()
		ctx := context.Background()

		issueKey := jira.NormalizeIssueKey(flagDelIssue)
		issueID := rt.issueID(ctx, issueKey)

		err := rt.client.DeleteWorklog(ctx, issueID, flagDelWorklogID)
		if errors.Is(err, jira.ErrNotFound) {
			rt.logger.Debug("work log already gone remotely", "issue", issueKey, "worklog", flagDelWorklogID)
		} else if err != nil {
			fail(err)
		}

		if err := rt.store.RemoveWorklogEntry(ctx, flagDelWorklogID); err != nil {
			fail(err)
		}
		fmt.Printf("Deleted work log %s from %s\n", flagDelWorklogID, issueKey)
	},
}

func init() {
	delCmd.Flags().StringVarP(&flagDelIssue, "issue", "i", "", "issue key the work log belongs to")
	delCmd.MarkFlagRequired("issue")
	delCmd.Flags().StringVarP(&flagDelWorklogID, "worklog-id", "w", "", "work log id to delete")
	delCmd.MarkFlagRequired("worklog-id")
	rootCmd.AddCommand(delCmd)
}
