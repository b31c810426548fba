// Package watcher triggers graph rebuilds when building source files change.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for writes to settle
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches a changing set of files and calls onChange once per burst
// of writes to any of them
type Watcher struct {
	files    func() []string
	onChange func(path string)
	debounce time.Duration
	logger   *slog.Logger
	ready    chan struct{}
}

// New creates a watcher. files is consulted at start and again after every
// onChange, so files added by a rebuild are picked up.
func New(files func() []string, onChange func(path string), logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{
		files:    files,
		onChange: onChange,
		debounce: DefaultDebounce,
		logger:   logger.With(slog.String("component", "watcher")),
		ready:    make(chan struct{}),
	}
}

// WithDebounce sets the debounce duration
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	if d > 0 {
		w.debounce = d
	}
	return w
}

// Ready is closed once the initial file set is being watched
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Watch starts watching. It blocks until the context is cancelled or the
// underlying watcher fails to start.
func (w *Watcher) Watch(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	// Directories are watched rather than files so that editors replacing a
	// file by rename are still seen.
	watchedDirs := make(map[string]bool)
	fileSet := make(map[string]bool)
	w.sync(fsw, watchedDirs, fileSet)
	close(w.ready)

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		changed string
	)

	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}

			absPath, err := filepath.Abs(event.Name)
			if err != nil || !fileSet[absPath] {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				if timer == nil {
					timer = time.NewTimer(w.debounce)
				} else {
					timer.Reset(w.debounce)
				}
				timerC = timer.C
				changed = absPath
			}

		case <-timerC:
			timerC = nil
			w.logger.Info("file changed", slog.String("path", changed))
			w.onChange(changed)
			w.sync(fsw, watchedDirs, fileSet)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", slog.Any("error", err))

		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		}
	}
}

// sync replaces the watched file set with the current one, adding directories as needed
func (w *Watcher) sync(fsw *fsnotify.Watcher, watchedDirs, fileSet map[string]bool) {
	clear(fileSet)
	for _, path := range w.files() {
		absPath, err := filepath.Abs(path)
		if err != nil {
			continue
		}

		dir := filepath.Dir(absPath)
		if !watchedDirs[dir] {
			if err := fsw.Add(dir); err != nil {
				w.logger.Warn("failed to watch directory", slog.String("dir", dir), slog.Any("error", err))
				continue
			}
			watchedDirs[dir] = true
		}

		if !fileSet[absPath] {
			w.logger.Debug("watching", slog.String("path", absPath))
		}
		fileSet[absPath] = true
	}
}
