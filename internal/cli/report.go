package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/codoc/internal/cache"
	"github.com/example/codoc/internal/logging"
)

func newReportCommand() *cobra.Command {
	config := newScanConfig()

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the report from the cached scan result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := setup(config)
			if err != nil {
				return err
			}
			defer func() { _ = logging.Sync(logger) }()

			entry, err := cache.NewStore(config.CachePath(), logger).Load()
			if err != nil {
				if errors.Is(err, cache.ErrNoCache) {
					return fmt.Errorf("%w at %s; run `codoc scan` first", err, config.CachePath())
				}
				return err
			}
			return writeOutput(config.view(entry.Result), config, cmd.OutOrStdout())
		},
	}

	bindProjectFlags(cmd, config)
	bindOutputFlags(cmd, config)

	return cmd
}
