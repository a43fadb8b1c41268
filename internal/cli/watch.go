package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/codoc/internal/ignore"
	"github.com/example/codoc/internal/logging"
	"github.com/example/codoc/internal/watch"
)

func newWatchCommand() *cobra.Command {
	config := newScanConfig()
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch [root]",
		Short: "Scan, then rescan and rewrite the report whenever source files change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 && !cmd.Flags().Changed("root") {
				config.Root = args[0]
			}
			logger, err := setup(config)
			if err != nil {
				return err
			}
			defer func() { _ = logging.Sync(logger) }()

			return Watch(cmd.Context(), config, debounce, cmd.OutOrStdout(), logger)
		},
	}

	bindProjectFlags(cmd, config)
	bindOutputFlags(cmd, config)
	bindScanFlags(cmd, config)
	cmd.Flags().BoolVar(&config.NoCache, "no-cache", false, "Do not write the scan cache")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period before rescanning")

	return cmd
}

// Watch scans once, then rescans on every debounced batch of changes until
// ctx is done.
func Watch(ctx context.Context, config *ScanConfig, debounce time.Duration, stdout io.Writer, logger *zap.Logger) error {
	rescan := func(ctx context.Context, changed []string) error {
		result, stats, err := Scan(ctx, config, logger)
		if err != nil {
			return err
		}
		logger.Info("report updated", zap.Int("changed", len(changed)), zap.Int("items", stats.Items))
		return writeOutput(config.view(result), config, stdout)
	}

	if err := rescan(ctx, nil); err != nil {
		return err
	}

	root, err := filepath.Abs(config.Root)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}
	exclude, err := ignore.Load(root, config.Exclude, config.IgnoreFiles)
	if err != nil {
		return fmt.Errorf("load exclude patterns: %w", err)
	}
	w, err := watch.New(root, exclude, debounce, logger)
	if err != nil {
		return err
	}

	logger.Info("watching for changes", zap.String("root", root))
	return w.Run(ctx, rescan)
}
