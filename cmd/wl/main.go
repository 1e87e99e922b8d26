// Command wl records time spent on Jira issues in a local cache,
// reconciles that cache against the remote work-log API, and tracks an
// in-progress session with a persistent timer.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes. Scripts watch for exitNothingToDo to tell "no work" apart
// from a real failure.
const (
	exitError       = 1
	exitNothingToDo = 4
)

var (
	flagConfigPath string
	flagVerbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "wl",
	Short: "Local Jira work-log cache and timer",
	Long: `wl keeps a local cache of your Jira work logs and lets you record
time against issues without leaving the terminal.

Typical day:
  wl timer start --issue TIME-147
  wl timer stop
  wl timer sync
  wl report --weeks 2

The cache is the single source for reports; 'wl sync' refreshes it from
Jira, which is always authoritative.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitError)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file (default: user config dir)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
}

// fail prints an error and exits. Used where a command has already
// produced partial output and a returned error would render poorly.
func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(exitError)
}
