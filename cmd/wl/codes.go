package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var flagCodesProjects []string

var codesKeyStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))

var codesCmd = &cobra.Command{
	Use:   "codes",
	Short: "List bookable issues from your tracked projects",
	Long: `Search Jira for the issues of the configured tracking projects and
print their keys and summaries. Override the project list with
--projects.`,
	Run: func(cmd *cobra.Command, args []string) {
		rt := mustRuntime()
		defer rt.close()
		ctx := context.Background()

		projects := flagCodesProjects
		if len(projects) == 0 {
			projects = rt.cfg.Tracking.Projects
		}
		if len(projects) == 0 {
			fail(fmt.Errorf("no projects configured; set [tracking].projects or pass --projects"))
		}

		issues, err := rt.client.SearchIssues(ctx, projects, nil, true)
		if err != nil {
			fail(err)
		}
		if len(issues) == 0 {
			fmt.Printf("No issues found in %s\n", strings.Join(projects, ", "))
			return
		}

		for _, issue := range issues {
			fmt.Printf("%s  %s\n", codesKeyStyle.Render(fmt.Sprintf("%-12s", issue.Key)), issue.Summary())
		}
	},
}

func init() {
	codesCmd.Flags().StringSliceVarP(&flagCodesProjects, "projects", "p", nil, "project keys to list (default: configured tracking projects)")
	rootCmd.AddCommand(codesCmd)
}
