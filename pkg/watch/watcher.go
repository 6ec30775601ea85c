// Package watch monitors a project folder so the dashboard reloads
// when archives, event logs, or summaries change on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchedExtensions are the input files a change matters for.
var watchedExtensions = map[string]struct{}{
	".zip":   {},
	".log":   {},
	".jsonl": {},
	".json":  {},
}

// Watcher monitors a directory tree and triggers reloads.
type Watcher struct {
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	dirs     map[string]struct{}
	debounce time.Duration
	OnChange func(dir string) error
	OnError  func(err error)
}

// NewWatcher creates a new directory watcher. Change bursts within the
// debounce window collapse into a single reload.
func NewWatcher(debounce time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	return &Watcher{
		watcher:  fsWatcher,
		dirs:     make(map[string]struct{}),
		debounce: debounce,
	}, nil
}

// Watch starts watching a directory for input file changes.
func (w *Watcher) Watch(dir string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	if err := w.watcher.Add(absDir); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	w.mu.Lock()
	w.dirs[absDir] = struct{}{}
	w.mu.Unlock()
	return nil
}

// Run starts the watch loop. Blocks until context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	debounceTimers := make(map[string]*time.Timer)
	var timerMu sync.Mutex

	for {
		select {
		case <-ctx.Done():
			w.watcher.Close()
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !relevant(event.Name) {
				continue
			}

			dir := filepath.Dir(event.Name)
			w.mu.Lock()
			_, watched := w.dirs[dir]
			w.mu.Unlock()
			if !watched {
				continue
			}

			// Debounce rapid changes per directory
			timerMu.Lock()
			if timer, exists := debounceTimers[dir]; exists {
				timer.Stop()
			}
			debounceTimers[dir] = time.AfterFunc(w.debounce, func() {
				w.handleChange(dir)
			})
			timerMu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if w.OnError != nil {
				w.OnError(err)
			}
		}
	}
}

// relevant reports whether a change to path should trigger a reload.
// Temp files from in-flight exports never do.
func relevant(path string) bool {
	if strings.HasSuffix(path, ".tmp") {
		return false
	}
	_, ok := watchedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

func (w *Watcher) handleChange(dir string) {
	if w.OnChange == nil {
		return
	}
	if err := w.OnChange(dir); err != nil {
		if w.OnError != nil {
			w.OnError(err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
