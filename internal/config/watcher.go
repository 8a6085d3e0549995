// ABOUTME: Polling watcher for hook settings hot-reload
// ABOUTME: Compares mtimes of settings files, extension dirs and manifests on a ticker

package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultWatchInterval is the polling period used when none is set.
const DefaultWatchInterval = 2 * time.Second

// WatchPaths returns every path whose change can alter the loaded hooks:
// the three settings layers, the extension directories and each extension
// manifest currently present.
func WatchPaths(projectRoot, home string) []string {
	paths := []string{ProjectSettingsFile(projectRoot), LocalSettingsFile(projectRoot)}
	if user := UserSettingsFileIn(home); user != "" {
		paths = append(paths, user)
	}
	for _, dir := range ExtensionDirs(projectRoot, home) {
		paths = append(paths, dir)
		manifests, _ := filepath.Glob(filepath.Join(dir, "*", extensionHookYML))
		paths = append(paths, manifests...)
	}
	return paths
}

// Watcher polls a fixed set of paths and calls onChange when any of them
// is created, modified or removed.
type Watcher struct {
	paths    []string
	onChange func()
	interval time.Duration

	mu     sync.Mutex
	mtimes map[string]time.Time
}

// NewWatcher creates a watcher over paths. A non-positive interval uses
// DefaultWatchInterval.
func NewWatcher(paths []string, interval time.Duration, onChange func()) *Watcher {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	w := &Watcher{
		paths:    append([]string(nil), paths...),
		onChange: onChange,
		interval: interval,
		mtimes:   make(map[string]time.Time),
	}
	w.snapshotLocked()
	return w
}

// Run polls until ctx is done. onChange runs on the polling goroutine, so
// a slow callback delays the next check rather than overlapping it.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if w.Check() {
				w.onChange()
			}
		}
	}
}

// Check reports whether anything changed since the last check and records
// the new state. It does not call onChange.
func (w *Watcher) Check() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.changedLocked() {
		return false
	}
	w.snapshotLocked()
	return true
}

func (w *Watcher) changedLocked() bool {
	for _, path := range w.paths {
		info, err := os.Stat(path)
		prev, existed := w.mtimes[path]
		if err != nil {
			if existed {
				return true
			}
			continue
		}
		if !existed || !info.ModTime().Equal(prev) {
			return true
		}
	}
	return false
}

func (w *Watcher) snapshotLocked() {
	for _, path := range w.paths {
		info, err := os.Stat(path)
		if err != nil {
			delete(w.mtimes, path)
			continue
		}
		w.mtimes[path] = info.ModTime()
	}
}
