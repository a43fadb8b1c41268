// Package scanner runs the block parser over a set of source files in
// parallel and folds the per-file results into one aggregated result.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/codoc/internal/blocks"
	"github.com/example/codoc/internal/ignore"
	"github.com/example/codoc/internal/lang"
	"github.com/example/codoc/internal/model"
)

// DefaultWorkers bounds parallel file parsing when Options.Workers is unset.
const DefaultWorkers = 8

// Options configures a Scanner.
type Options struct {
	// Root is the project root item paths are made relative to.
	Root string
	// Workers bounds how many files are parsed at once.
	Workers int
	// Exclude drops matching candidates. Nil excludes nothing.
	Exclude *ignore.Matcher
	Logger  *zap.Logger
}

// Stats summarizes one scan.
type Stats struct {
	Candidates   int `json:"candidates"`
	Processed    int `json:"processed"`
	Skipped      int `json:"skipped"`
	Items        int `json:"items"`
	Requirements int `json:"requirements"`
}

// Scanner aggregates documentation blocks across files.
type Scanner struct {
	root     string
	workers  int
	exclude  *ignore.Matcher
	logger   *zap.Logger
	parser   *blocks.Parser
	readFile func(string) ([]byte, error)
}

// New creates a scanner. The root is made absolute.
func New(opts Options) (*Scanner, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scanner{
		root:     root,
		workers:  workers,
		exclude:  opts.Exclude,
		logger:   logger,
		parser:   blocks.NewParser(root),
		readFile: os.ReadFile,
	}, nil
}

// Root returns the absolute project root.
func (s *Scanner) Root() string {
	return s.root
}

// Candidates keeps the paths that are absolute, name existing regular files
// with a code extension and are not excluded. The result is sorted and free
// of duplicates.
func (s *Scanner) Candidates(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if !filepath.IsAbs(p) || !lang.IsCode(p) || s.exclude.Excluded(p) {
			continue
		}
		fi, err := os.Stat(p)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		out = append(out, filepath.Clean(p))
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Walk lists every code file below the root, pruning excluded directories.
func (s *Scanner) Walk(ctx context.Context) ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.root {
				return err
			}
			s.logger.Debug("walk error", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != s.root && s.exclude.ExcludedDir(path) {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && lang.IsCode(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", s.root, err)
	}
	return files, nil
}

// Scan parses paths and returns the aggregated result with requirement IDs
// sorted. Files are parsed in parallel but folded in path order, so the
// output does not depend on scheduling. Unreadable files are skipped;
// only cancellation of ctx fails the scan, checked between files.
func (s *Scanner) Scan(ctx context.Context, paths []string) (*model.Result, Stats, error) {
	candidates := s.Candidates(paths)
	stats := Stats{Candidates: len(candidates)}
	partials := make([]*model.Result, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, path := range candidates {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.parseFile(path)
			if err != nil {
				s.logger.Debug("skipping file", zap.String("file", path), zap.Error(err))
				return nil
			}
			partials[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, stats, fmt.Errorf("scan files: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, stats, fmt.Errorf("scan files: %w", err)
	}

	result := model.New()
	for _, partial := range partials {
		if partial == nil {
			stats.Skipped++
			continue
		}
		stats.Processed++
		result.Merge(partial)
	}
	result.Sort()

	stats.Items = result.ItemCount()
	stats.Requirements = result.Len()
	s.logger.Info("scan complete",
		zap.Int("candidates", stats.Candidates),
		zap.Int("processed", stats.Processed),
		zap.Int("skipped", stats.Skipped),
		zap.Int("items", stats.Items),
		zap.Int("requirements", stats.Requirements))

	return result, stats, nil
}

// ScanAll walks the root and scans every file found.
func (s *Scanner) ScanAll(ctx context.Context) (*model.Result, Stats, error) {
	files, err := s.Walk(ctx)
	if err != nil {
		return nil, Stats{}, err
	}
	return s.Scan(ctx, files)
}

func (s *Scanner) parseFile(path string) (*model.Result, error) {
	data, err := s.readFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	text, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode file: %w", err)
	}
	return s.parser.Parse(path, text), nil
}
