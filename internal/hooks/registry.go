// ABOUTME: Hook registry: read-only per-event lists of hook definitions
// ABOUTME: StaticRegistry is immutable after construction and safe for concurrent firings

package hooks

import (
	"slices"
	"time"

	"github.com/mauromedda/pi-hooks/internal/config"
)

// Registry answers which hook definitions are configured for an event,
// in registration order.
type Registry interface {
	HooksForEvent(event Event) ([]Definition, error)
}

// RegistryFunc adapts a plain function to the Registry interface.
type RegistryFunc func(event Event) ([]Definition, error)

func (f RegistryFunc) HooksForEvent(event Event) ([]Definition, error) { return f(event) }

// StaticRegistry is a Registry populated once and never written again.
type StaticRegistry struct {
	hooks map[Event][]Definition
}

// NewRegistry copies defs into a new immutable registry. Tool-name matchers
// are compiled here, once per definition.
func NewRegistry(defs map[Event][]Definition) *StaticRegistry {
	hooks := make(map[Event][]Definition, len(defs))
	for event, list := range defs {
		if len(list) == 0 {
			continue
		}
		copied := append([]Definition(nil), list...)
		for i := range copied {
			copied[i].pattern = compileToolPattern(copied[i].Matcher)
		}
		hooks[event] = copied
	}
	return &StaticRegistry{hooks: hooks}
}

// HooksForEvent returns a copy of the definitions registered for event.
func (r *StaticRegistry) HooksForEvent(event Event) ([]Definition, error) {
	list := r.hooks[event]
	if len(list) == 0 {
		return nil, nil
	}
	return append([]Definition(nil), list...), nil
}

// Events returns the events that have at least one definition, in AllEvents
// order followed by any unknown event names sorted by name.
func (r *StaticRegistry) Events() []Event {
	var events, unknown []Event
	for _, e := range AllEvents {
		if _, ok := r.hooks[e]; ok {
			events = append(events, e)
		}
	}
	for e := range r.hooks {
		if !e.Valid() {
			unknown = append(unknown, e)
		}
	}
	slices.Sort(unknown)
	return append(events, unknown...)
}

// Len returns the total number of definitions across all events.
func (r *StaticRegistry) Len() int {
	n := 0
	for _, list := range r.hooks {
		n += len(list)
	}
	return n
}

// RegistryFromSettings builds an immutable registry from loaded settings.
// Nested command lists are flattened so every definition holds one command.
// When hooks are globally disabled the registry is empty.
func RegistryFromSettings(s *config.Settings) *StaticRegistry {
	if s == nil || s.DisableAllHooks {
		return NewRegistry(nil)
	}

	defs := make(map[Event][]Definition, len(s.Hooks))
	for event, entries := range s.Hooks {
		for _, entry := range entries {
			for _, cmd := range entry.Commands() {
				defs[Event(event)] = append(defs[Event(event)], Definition{
					Matcher: entry.Matcher,
					Command: CommandSpec{
						Type:    cmd.Type,
						Command: cmd.Command,
						Timeout: time.Duration(cmd.Timeout * float64(time.Second)),
					},
					Sequential: entry.Sequential,
					Enabled:    entry.IsEnabled(),
					Source:     Source(entry.Source),
					Origin:     entry.Origin,
				})
			}
		}
	}
	return NewRegistry(defs)
}
