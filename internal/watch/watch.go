// Package watch re-runs a callback when definition files change on disk.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/thoreinstein/defcheck/internal/errors"
	"github.com/thoreinstein/defcheck/internal/logging"
)

// DefaultDebounce is how long the watcher waits after the last change in a
// burst before calling back.
const DefaultDebounce = 200 * time.Millisecond

// Watcher monitors a fixed set of files.
//
// Editors often replace a file instead of writing it in place, so the parent
// directories are watched and events are filtered by path.
type Watcher struct {
	// Debounce overrides DefaultDebounce when positive.
	Debounce time.Duration

	// Logger receives fsnotify errors and change notices. Nil uses the
	// logger carried by the context passed to Run.
	Logger *slog.Logger

	// ready is closed once every directory is being watched.
	ready chan struct{}
}

// Run watches paths until ctx is done and calls fn once per burst of changes
// touching any of them, with the changed paths sorted. fn runs on the
// watching goroutine, so bursts that arrive while it runs are coalesced into
// the next call.
//
// Run returns nil when ctx is canceled; errors only come from setting up the
// watches.
func (w *Watcher) Run(ctx context.Context, paths []string, fn func(ctx context.Context, changed []string)) error {
	logger := w.Logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating file watcher")
	}
	defer func() {
		if err := fsw.Close(); err != nil {
			logger.Warn("closing file watcher", "error", err)
		}
	}()

	watched := make(map[string]bool, len(paths))
	var dirs []string
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return errors.Wrapf(err, "resolving %s", p)
		}
		watched[abs] = true
		if dir := filepath.Dir(abs); !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			return errors.Wrapf(err, "watching %s", dir)
		}
		logger.Debug("watching directory", "dir", dir)
	}
	if w.ready != nil {
		close(w.ready)
	}

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending = map[string]bool{}
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			name := filepath.Clean(event.Name)
			if !watched[name] || !relevant(event.Op) {
				continue
			}
			logger.Log(ctx, logging.LevelTrace, "file event", "path", name, "op", event.Op.String())
			pending[name] = true
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			timerC = timer.C

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error", "error", err)

		case <-timerC:
			timerC = nil
			changed := make([]string, 0, len(pending))
			for name := range pending {
				changed = append(changed, name)
			}
			clear(pending)
			slices.Sort(changed)
			logger.Info("definition files changed", "count", len(changed))
			fn(ctx, changed)
		}
	}
}

func relevant(op fsnotify.Op) bool {
	return op.Has(fsnotify.Write) || op.Has(fsnotify.Create) ||
		op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename)
}
