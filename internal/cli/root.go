// Package cli provides the command-line interface for codoc.
package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// Execute creates and runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx, which stops long-running
// commands such as watch when cancelled.
func ExecuteContext(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "codoc",
		Short: "Collect tagged documentation blocks from source comments",
		Long: `codoc scans source files for tagged comment blocks such as
@summary(REQ-1) ... @endSummary, groups them by requirement ID and block
type, and renders a report with tracker links and code excerpts.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newScanCommand(),
		newReportCommand(),
		newCacheCommand(),
		newWatchCommand(),
		newValidateCommand(),
	)

	return rootCmd
}
