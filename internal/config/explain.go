// ABOUTME: Human-readable rendering of the effective hook settings
// ABOUTME: Used by the "explain" CLI subcommand to show merged settings and hook origins

package config

import (
	"fmt"
	"sort"
	"strings"
)

// Explain renders a plain-text summary of the effective settings: general
// values, then every hook grouped by event in registration order.
func Explain(s *Settings) string {
	if s == nil {
		s = &Settings{}
	}

	var b strings.Builder

	b.WriteString("=== General ===\n")
	if s.DisableAllHooks {
		b.WriteString("  DisableAllHooks:  true\n")
	}
	if t := s.Timeout(); t > 0 {
		fmt.Fprintf(&b, "  HookTimeout:      %s\n", t)
	}
	if s.MaxParallelHooks != 0 {
		fmt.Fprintf(&b, "  MaxParallelHooks: %d\n", s.MaxParallelHooks)
	}
	if len(s.Env) > 0 {
		keys := make([]string, 0, len(s.Env))
		for k := range s.Env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintf(&b, "  Env:              %s\n", strings.Join(keys, ", "))
	}
	b.WriteString("\n")

	events := make([]string, 0, len(s.Hooks))
	for event := range s.Hooks {
		events = append(events, event)
	}
	sort.Strings(events)

	for _, event := range events {
		fmt.Fprintf(&b, "=== %s ===\n", event)
		for _, def := range s.Hooks[event] {
			matcher := def.Matcher
			if matcher == "" {
				matcher = "*"
			}
			var flags []string
			if def.Sequential {
				flags = append(flags, "sequential")
			}
			if !def.IsEnabled() {
				flags = append(flags, "disabled")
			}
			for _, cmd := range def.Commands() {
				fmt.Fprintf(&b, "  [%s] %s", matcher, cmd.Command)
				if cmd.Timeout > 0 {
					fmt.Fprintf(&b, " (timeout %gs)", cmd.Timeout)
				}
				if len(flags) > 0 {
					fmt.Fprintf(&b, " {%s}", strings.Join(flags, ","))
				}
				if def.Source != "" {
					fmt.Fprintf(&b, " <%s", def.Source)
					if def.Origin != "" {
						fmt.Fprintf(&b, " %s", def.Origin)
					}
					b.WriteString(">")
				}
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}
