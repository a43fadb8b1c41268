// Package watch reports batches of changed source files under a project
// root, debouncing bursts of file-system events.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/example/codoc/internal/ignore"
	"github.com/example/codoc/internal/lang"
)

// DefaultDebounce is the quiet period before a batch is reported.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches every non-excluded directory below a root.
type Watcher struct {
	root     string
	exclude  *ignore.Matcher
	debounce time.Duration
	logger   *zap.Logger
	fsw      *fsnotify.Watcher
}

// New starts watching root. Directories created later are added as they
// appear. The caller must call Run, which releases the watcher on return.
func New(root string, exclude *ignore.Matcher, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{root: root, exclude: exclude, debounce: debounce, logger: logger, fsw: fsw}
	if err := w.addTree(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run delivers sorted batches of changed code files to onChange until ctx
// is done. Errors from onChange are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, changed []string) error) error {
	defer func() { _ = w.fsw.Close() }()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	pending := map[string]struct{}{}
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.handle(event, pending) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			slices.Sort(changed)
			clear(pending)

			w.logger.Debug("files changed", zap.Strings("files", changed))
			if err := onChange(ctx, changed); err != nil {
				w.logger.Error("change handler failed", zap.Error(err))
			}
		}
	}
}

// handle records event in pending and reports whether it was relevant.
func (w *Watcher) handle(event fsnotify.Event, pending map[string]struct{}) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	if event.Has(fsnotify.Create) {
		if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("watch directory", zap.String("path", event.Name), zap.Error(err))
			}
			return false
		}
	}

	if !lang.IsCode(event.Name) || w.exclude.Excluded(event.Name) {
		return false
	}
	pending[event.Name] = struct{}{}
	return true
}

func (w *Watcher) addTree(dir string) error {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.exclude.ExcludedDir(path) {
			return fs.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch tree %s: %w", dir, err)
	}
	return nil
}

// WatchList returns the directories currently watched.
func (w *Watcher) WatchList() []string {
	list := w.fsw.WatchList()
	slices.Sort(list)
	return list
}
