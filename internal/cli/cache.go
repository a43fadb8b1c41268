package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/codoc/internal/cache"
	"github.com/example/codoc/internal/logging"
)

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the scan cache",
	}
	cmd.AddCommand(newCacheStatusCommand(), newCacheClearCommand())
	return cmd
}

func newCacheStatusCommand() *cobra.Command {
	config := newScanConfig()

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether a cached scan exists and when it was written",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := setup(config)
			if err != nil {
				return err
			}
			defer func() { _ = logging.Sync(logger) }()

			st, err := cache.NewStore(config.CachePath(), logger).Status()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cache: %s\n", st.Path)
			if !st.Exists {
				fmt.Fprintln(out, "Status: missing")
				return nil
			}
			fmt.Fprintln(out, "Status: present")
			if !st.Timestamp.IsZero() {
				fmt.Fprintf(out, "Timestamp: %s\n", st.Timestamp.Format(time.RFC3339))
			}
			return nil
		},
	}

	bindProjectFlags(cmd, config)
	return cmd
}

func newCacheClearCommand() *cobra.Command {
	config := newScanConfig()

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the cached scan result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := setup(config)
			if err != nil {
				return err
			}
			defer func() { _ = logging.Sync(logger) }()

			if err := cache.NewStore(config.CachePath(), logger).Clear(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared: %s\n", config.CachePath())
			return nil
		},
	}

	bindProjectFlags(cmd, config)
	return cmd
}
