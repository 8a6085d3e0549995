// ABOUTME: Execution planner: selects registry entries matching a firing's context
// ABOUTME: Exact-then-regex tool matching, exact trigger matching, command dedup, sequential fold

package hooks

import (
	"fmt"
	"regexp"
	"strings"

	pilog "github.com/mauromedda/pi-hooks/internal/log"
)

// Plan builds the execution plan for one firing of event.
// It returns (nil, nil) when no definition applies; callers treat that as
// "nothing to do". Registry errors are wrapped with the event name.
func Plan(reg Registry, event Event, mc MatchContext) (*ExecutionPlan, error) {
	defs, err := reg.HooksForEvent(event)
	if err != nil {
		return nil, fmt.Errorf("loading hooks for %s: %w", event, err)
	}
	if len(defs) == 0 {
		return nil, nil
	}

	plan := &ExecutionPlan{Event: event}
	seen := make(map[string]bool, len(defs))

	for _, def := range defs {
		if !matches(def, event, mc) {
			continue
		}
		// Sequential folds over every matched entry, duplicates included.
		plan.Sequential = plan.Sequential || def.Sequential

		key := def.Command.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		plan.Commands = append(plan.Commands, def.Command)
	}

	if len(plan.Commands) == 0 {
		return nil, nil
	}
	return plan, nil
}

// toolPattern is a tool-name matcher compiled once. re is nil when the
// matcher is not a valid regular expression; only exact matches apply then.
type toolPattern struct {
	re *regexp.Regexp
}

func compileToolPattern(matcher string) *toolPattern {
	matcher = strings.TrimSpace(matcher)
	if matcher == "" || matcher == "*" {
		return &toolPattern{}
	}
	re, err := regexp.Compile(matcher)
	if err != nil {
		pilog.Debug("hook matcher %q is not a valid regex: %v", matcher, err)
		return &toolPattern{}
	}
	return &toolPattern{re: re}
}

// matches reports whether def applies to a firing of event with context mc.
// Tool events select on the tool name and trigger events on the trigger;
// for those an empty name only matches wildcard entries. Matchers on other
// events are ignored.
func matches(def Definition, event Event, mc MatchContext) bool {
	if !def.Enabled {
		return false
	}

	matcher := strings.TrimSpace(def.Matcher)
	if matcher == "" || matcher == "*" {
		return true
	}

	switch {
	case event.matchesToolName():
		return matchToolName(def, matcher, mc.ToolName)
	case event.matchesTrigger():
		trigger := strings.TrimSpace(mc.Trigger)
		return trigger != "" && matcher == trigger
	case mc.ToolName != "":
		return matchToolName(def, matcher, mc.ToolName)
	case mc.Trigger != "":
		return matcher == strings.TrimSpace(mc.Trigger)
	default:
		return true
	}
}

// matchToolName tries exact equality, then an unanchored regex search.
// Definitions that did not come through NewRegistry are compiled on demand.
func matchToolName(def Definition, matcher, toolName string) bool {
	toolName = strings.TrimSpace(toolName)
	if toolName == "" {
		return false
	}
	if matcher == toolName {
		return true
	}
	p := def.pattern
	if p == nil {
		p = compileToolPattern(matcher)
	}
	return p.re != nil && p.re.MatchString(toolName)
}
