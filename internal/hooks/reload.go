// ABOUTME: Hot-reloading registry: swaps an immutable snapshot when hook settings change
// ABOUTME: In-flight firings keep the definitions they already read; failed reloads keep the old snapshot

package hooks

import (
	"sync/atomic"
	"time"

	"github.com/mauromedda/pi-hooks/internal/config"
	pilog "github.com/mauromedda/pi-hooks/internal/log"
)

// LoaderFunc produces a fresh registry snapshot.
type LoaderFunc func() (*StaticRegistry, error)

// SettingsLoader loads and merges the hook settings for projectRoot and home.
func SettingsLoader(projectRoot, home string) LoaderFunc {
	return func() (*StaticRegistry, error) {
		s, err := config.LoadAllWithHome(projectRoot, home, nil)
		if err != nil {
			return nil, err
		}
		return RegistryFromSettings(s), nil
	}
}

// ReloadingRegistry serves the latest successfully loaded snapshot.
type ReloadingRegistry struct {
	load    LoaderFunc
	current atomic.Pointer[StaticRegistry]
}

// NewReloadingRegistry performs the initial load. It fails only if that
// first load fails.
func NewReloadingRegistry(load LoaderFunc) (*ReloadingRegistry, error) {
	reg, err := load()
	if err != nil {
		return nil, err
	}
	r := &ReloadingRegistry{load: load}
	r.current.Store(reg)
	return r, nil
}

// HooksForEvent reads from the current snapshot.
func (r *ReloadingRegistry) HooksForEvent(event Event) ([]Definition, error) {
	return r.current.Load().HooksForEvent(event)
}

// Snapshot returns the registry currently being served.
func (r *ReloadingRegistry) Snapshot() *StaticRegistry {
	return r.current.Load()
}

// Reload loads a new snapshot and swaps it in. On error the previous
// snapshot stays active.
func (r *ReloadingRegistry) Reload() error {
	reg, err := r.load()
	if err != nil {
		pilog.Warn("hook settings reload failed, keeping previous hooks: %v", err)
		return err
	}
	r.current.Store(reg)
	pilog.Info("hook settings reloaded: %d hook(s)", reg.Len())
	return nil
}

// Watcher returns a watcher over paths that reloads on every change and
// then calls onReload, if non-nil, with the reload error. The current state
// of paths is recorded before it returns; run it with its Run method.
func (r *ReloadingRegistry) Watcher(paths []string, interval time.Duration, onReload func(error)) *config.Watcher {
	return config.NewWatcher(paths, interval, func() {
		err := r.Reload()
		if onReload != nil {
			onReload(err)
		}
	})
}
