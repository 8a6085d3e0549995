// ABOUTME: Hook lifecycle types: events, definitions, hook output contract, results
// ABOUTME: Defines the contract between the agent core, the registry, and hook processes

package hooks

import (
	"errors"
	"fmt"
	"time"
)

// Event identifies a lifecycle event in the agent loop.
type Event string

const (
	UserPromptSubmit   Event = "UserPromptSubmit"
	Stop               Event = "Stop"
	PreToolUse         Event = "PreToolUse"
	PostToolUse        Event = "PostToolUse"
	PostToolUseFailure Event = "PostToolUseFailure"
	Notification       Event = "Notification"
	SessionStart       Event = "SessionStart"
	SessionEnd         Event = "SessionEnd"
	SubagentStart      Event = "SubagentStart"
	SubagentStop       Event = "SubagentStop"
	PreCompact         Event = "PreCompact"
	PermissionRequest  Event = "PermissionRequest"
)

// AllEvents lists every event the dispatcher can fire, in documentation order.
var AllEvents = []Event{
	UserPromptSubmit,
	Stop,
	PreToolUse,
	PostToolUse,
	PostToolUseFailure,
	Notification,
	SessionStart,
	SessionEnd,
	SubagentStart,
	SubagentStop,
	PreCompact,
	PermissionRequest,
}

// Valid reports whether e is one of the known lifecycle events.
func (e Event) Valid() bool {
	for _, known := range AllEvents {
		if e == known {
			return true
		}
	}
	return false
}

// matchesToolName reports whether the event's matchers select on the tool name.
func (e Event) matchesToolName() bool {
	switch e {
	case PreToolUse, PostToolUse, PostToolUseFailure, PermissionRequest:
		return true
	}
	return false
}

// matchesTrigger reports whether the event's matchers select on a trigger
// string (session source, end reason or compaction trigger).
func (e Event) matchesTrigger() bool {
	switch e {
	case SessionStart, SessionEnd, PreCompact:
		return true
	}
	return false
}

// Source records where a hook definition was configured.
type Source string

const (
	SourceProject   Source = "project"
	SourceUser      Source = "user"
	SourceExtension Source = "extension"
)

// CommandTypeCommand is the only command type the runner knows how to execute.
const CommandTypeCommand = "command"

// Sentinel errors recorded on failed execution results.
var (
	ErrTimeout  = errors.New("hook timed out")
	ErrCanceled = errors.New("hook canceled")
	ErrSpawn    = errors.New("hook failed to start")
	ErrPanic    = errors.New("hook engine panic")
)

// CommandSpec describes one external command to run.
// Timeout, when positive, overrides the firing timeout for this command.
type CommandSpec struct {
	Type    string        `json:"type"`
	Command string        `json:"command"`
	Timeout time.Duration `json:"timeout,omitempty"`
}

// Key returns the structural identity used for deduplication.
func (c CommandSpec) Key() string {
	typ := c.Type
	if typ == "" {
		typ = CommandTypeCommand
	}
	return typ + "\x00" + c.Command
}

func (c CommandSpec) String() string {
	return c.Command
}

// Definition is one configured hook entry for an event.
type Definition struct {
	Matcher    string
	Command    CommandSpec
	Sequential bool
	Enabled    bool
	Source     Source
	Origin     string // file the definition was loaded from, if any

	pattern *toolPattern // set by NewRegistry
}

// MatchContext carries the firing parameters matchers are evaluated against.
// With the zero value only wildcard entries match tool and trigger events;
// every enabled definition matches any other event.
type MatchContext struct {
	ToolName string
	Trigger  string
}

// ExecutionPlan is the deduplicated command list for one firing.
type ExecutionPlan struct {
	Event      Event
	Commands   []CommandSpec
	Sequential bool
}

// Permission decisions carried by hook output.
const (
	PermissionAllow = "allow"
	PermissionDeny  = "deny"

	DecisionApprove = "approve"
	DecisionBlock   = "block"
)

// HookOutput is the JSON document a hook command may write to stdout.
// Every field is optional; unknown fields are ignored.
type HookOutput struct {
	Continue           *bool               `json:"continue,omitempty"`
	Decision           string              `json:"decision,omitempty"`
	Reason             string              `json:"reason,omitempty"`
	StopReason         string              `json:"stopReason,omitempty"`
	SystemMessage      string              `json:"systemMessage,omitempty"`
	SuppressOutput     bool                `json:"suppressOutput,omitempty"`
	HookSpecificOutput *HookSpecificOutput `json:"hookSpecificOutput,omitempty"`
}

// HookSpecificOutput contains event-specific output fields.
type HookSpecificOutput struct {
	HookEventName            string                     `json:"hookEventName,omitempty"`
	AdditionalContext        string                     `json:"additionalContext,omitempty"`
	PermissionDecision       string                     `json:"permissionDecision,omitempty"`
	PermissionDecisionReason string                     `json:"permissionDecisionReason,omitempty"`
	UpdatedInput             map[string]any             `json:"updatedInput,omitempty"`
	Decision                 *PermissionRequestDecision `json:"decision,omitempty"`
	UpdatedPermissions       []any                      `json:"updatedPermissions,omitempty"`
}

// PermissionRequestDecision is the PermissionRequest-specific verdict.
type PermissionRequestDecision struct {
	Behavior     string         `json:"behavior"`
	Message      string         `json:"message,omitempty"`
	UpdatedInput map[string]any `json:"updatedInput,omitempty"`
}

// permissionRequest returns the permission verdict this output asks for
// ("allow", "deny" or "") together with the reason it gave. Any deny
// signal wins over an allow carried by the same output.
func (o *HookOutput) permissionRequest() (string, string) {
	hs := o.HookSpecificOutput

	if o.Decision == DecisionBlock {
		return PermissionDeny, o.Reason
	}
	if hs != nil {
		if hs.PermissionDecision == PermissionDeny {
			return PermissionDeny, hs.PermissionDecisionReason
		}
		if hs.Decision != nil && hs.Decision.Behavior == PermissionDeny {
			return PermissionDeny, hs.Decision.Message
		}
	}

	if hs != nil {
		if hs.PermissionDecision == PermissionAllow {
			return PermissionAllow, hs.PermissionDecisionReason
		}
		if hs.Decision != nil && hs.Decision.Behavior == PermissionAllow {
			return PermissionAllow, hs.Decision.Message
		}
	}
	if o.Decision == DecisionApprove {
		return PermissionAllow, o.Reason
	}
	return "", ""
}

// updatedInput returns the input rewrite requested by this output, if any.
func (o *HookOutput) updatedInput() map[string]any {
	hs := o.HookSpecificOutput
	if hs == nil {
		return nil
	}
	if hs.UpdatedInput != nil {
		return hs.UpdatedInput
	}
	if hs.Decision != nil {
		return hs.Decision.UpdatedInput
	}
	return nil
}

// Blocks reports whether this output stops further sequential hooks:
// continue:false, a legacy block decision, or a deny permission decision.
func (o *HookOutput) Blocks() bool {
	if o == nil {
		return false
	}
	if o.Continue != nil && !*o.Continue {
		return true
	}
	decision, _ := o.permissionRequest()
	return decision == PermissionDeny
}

// ExecutionResult is the outcome of running one hook command.
// Success means a result was obtainable: the process started and finished
// before its deadline. A non-zero exit code is still a success.
type ExecutionResult struct {
	Command  CommandSpec
	Success  bool
	Output   *HookOutput
	RawText  string
	Stderr   string
	ExitCode int
	Duration time.Duration
	Err      error
}

// HookError describes one failure inside a firing. Command is the zero
// value for failures that happened outside any single hook.
type HookError struct {
	Command CommandSpec
	Err     error
}

func (e HookError) Error() string {
	if e.Command.Command == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("hook %q: %v", e.Command.Command, e.Err)
}

func (e HookError) Unwrap() error { return e.Err }

// FinalOutput is the single decision synthesized from every hook output of a firing.
type FinalOutput struct {
	Continue                 bool           `json:"continue"`
	StopReason               string         `json:"stopReason,omitempty"`
	SystemMessage            string         `json:"systemMessage,omitempty"`
	PermissionDecision       string         `json:"permissionDecision,omitempty"`
	PermissionDecisionReason string         `json:"permissionDecisionReason,omitempty"`
	AdditionalContext        string         `json:"additionalContext,omitempty"`
	UpdatedInput             map[string]any `json:"updatedInput,omitempty"`
	UpdatedPermissions       []any          `json:"updatedPermissions,omitempty"`
	SuppressOutput           bool           `json:"suppressOutput,omitempty"`
}

// Blocked reports whether the agent core should stop or deny.
func (f *FinalOutput) Blocked() bool {
	if f == nil {
		return false
	}
	return !f.Continue || f.PermissionDecision == PermissionDeny
}

// AggregatedResult is what one firing returns to the agent core.
type AggregatedResult struct {
	Success       bool
	Results       []ExecutionResult
	AllOutputs    []HookOutput
	Errors        []HookError
	TotalDuration time.Duration
	FinalOutput   *FinalOutput
}

// emptyResult is the result of a firing with nothing to run.
func emptyResult() AggregatedResult {
	return AggregatedResult{Success: true}
}

// failedResult wraps an engine-level failure into a well-formed result.
func failedResult(err error) AggregatedResult {
	return AggregatedResult{
		Success: false,
		Errors:  []HookError{{Err: err}},
	}
}
