package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/codoc/internal/cache"
	"github.com/example/codoc/internal/gitdiff"
	"github.com/example/codoc/internal/ignore"
	"github.com/example/codoc/internal/logging"
	"github.com/example/codoc/internal/model"
	"github.com/example/codoc/internal/scanner"
)

func newScanCommand() *cobra.Command {
	config := newScanConfig()

	cmd := &cobra.Command{
		Use:   "scan [root]",
		Short: "Scan source files and render the documentation report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Only use the positional root if the flag was not provided
			if len(args) > 0 && !cmd.Flags().Changed("root") {
				config.Root = args[0]
			}
			logger, err := setup(config)
			if err != nil {
				return err
			}
			defer func() { _ = logging.Sync(logger) }()

			result, _, err := Scan(cmd.Context(), config, logger)
			if err != nil {
				return err
			}
			return writeOutput(config.view(result), config, cmd.OutOrStdout())
		},
	}

	bindProjectFlags(cmd, config)
	bindOutputFlags(cmd, config)
	bindScanFlags(cmd, config)
	cmd.Flags().StringVar(&config.Since, "since", "", "Only scan files changed since this git revision")
	cmd.Flags().BoolVar(&config.NoCache, "no-cache", false, "Do not write the scan cache")

	return cmd
}

// Scan runs one scan of config.Root and caches the result unless disabled.
// With config.Since set, only files changed since that revision are read.
func Scan(ctx context.Context, config *ScanConfig, logger *zap.Logger) (*model.Result, scanner.Stats, error) {
	root, err := filepath.Abs(config.Root)
	if err != nil {
		return nil, scanner.Stats{}, fmt.Errorf("resolve root: %w", err)
	}
	exclude, err := ignore.Load(root, config.Exclude, config.IgnoreFiles)
	if err != nil {
		return nil, scanner.Stats{}, fmt.Errorf("load exclude patterns: %w", err)
	}

	sc, err := scanner.New(scanner.Options{
		Root:    root,
		Workers: config.Workers,
		Exclude: exclude,
		Logger:  logger,
	})
	if err != nil {
		return nil, scanner.Stats{}, err
	}

	files, err := selectFiles(ctx, sc, config)
	if err != nil {
		return nil, scanner.Stats{}, err
	}

	result, stats, err := sc.Scan(ctx, files)
	if err != nil {
		return nil, stats, err
	}

	if !config.NoCache {
		store := cache.NewStore(config.CachePath(), logger)
		if err := store.Save(result, time.Now()); err != nil {
			return nil, stats, err
		}
	}
	return result, stats, nil
}

func selectFiles(ctx context.Context, sc *scanner.Scanner, config *ScanConfig) ([]string, error) {
	if config.Since == "" {
		return sc.Walk(ctx)
	}
	files, err := gitdiff.ChangedFiles(sc.Root(), config.Since)
	if err != nil {
		return nil, fmt.Errorf("changed files since %s: %w", config.Since, err)
	}
	return files, nil
}
