// ABOUTME: Event dispatcher: one Fire method per lifecycle event driving plan, run, aggregate
// ABOUTME: Converts planner/runner errors and panics into a failed AggregatedResult

package hooks

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	pilog "github.com/mauromedda/pi-hooks/internal/log"
)

// DispatcherConfig holds the per-session values copied into every hook input.
type DispatcherConfig struct {
	SessionID      string
	TranscriptPath string
	Cwd            string
	PermissionMode string
	Timeout        time.Duration // per-hook timeout; DefaultTimeout when zero
}

// Dispatcher fires lifecycle events. It keeps no state between firings, so
// concurrent firings need no locking.
type Dispatcher struct {
	registry Registry
	runner   *Runner
	cfg      DispatcherConfig
}

// NewDispatcher creates a dispatcher reading definitions from reg.
func NewDispatcher(reg Registry, runner *Runner, cfg DispatcherConfig) *Dispatcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Dispatcher{registry: reg, runner: runner, cfg: cfg}
}

func (d *Dispatcher) base(event Event) BaseInput {
	return BaseInput{
		SessionID:      d.cfg.SessionID,
		TranscriptPath: d.cfg.TranscriptPath,
		Cwd:            d.cfg.Cwd,
		PermissionMode: d.cfg.PermissionMode,
		HookEventName:  event,
	}
}

func (d *Dispatcher) FireUserPromptSubmit(ctx context.Context, prompt string) AggregatedResult {
	return d.Fire(ctx, UserPromptSubmit, MatchContext{}, UserPromptSubmitInput{
		BaseInput: d.base(UserPromptSubmit),
		Prompt:    prompt,
	})
}

func (d *Dispatcher) FireStop(ctx context.Context, stopHookActive bool, lastAssistantMessage string) AggregatedResult {
	return d.Fire(ctx, Stop, MatchContext{}, StopInput{
		BaseInput:            d.base(Stop),
		StopHookActive:       stopHookActive,
		LastAssistantMessage: lastAssistantMessage,
	})
}

func (d *Dispatcher) FirePreToolUse(ctx context.Context, toolName string, toolInput map[string]any, toolUseID string) AggregatedResult {
	return d.Fire(ctx, PreToolUse, MatchContext{ToolName: toolName}, PreToolUseInput{
		BaseInput: d.base(PreToolUse),
		ToolName:  toolName,
		ToolInput: toolInput,
		ToolUseID: toolUseID,
	})
}

func (d *Dispatcher) FirePostToolUse(ctx context.Context, toolName string, toolInput map[string]any, toolResponse any, toolUseID string) AggregatedResult {
	return d.Fire(ctx, PostToolUse, MatchContext{ToolName: toolName}, PostToolUseInput{
		BaseInput:    d.base(PostToolUse),
		ToolName:     toolName,
		ToolInput:    toolInput,
		ToolResponse: toolResponse,
		ToolUseID:    toolUseID,
	})
}

func (d *Dispatcher) FirePostToolUseFailure(ctx context.Context, failure ToolFailure) AggregatedResult {
	return d.Fire(ctx, PostToolUseFailure, MatchContext{ToolName: failure.ToolName}, PostToolUseFailureInput{
		BaseInput:   d.base(PostToolUseFailure),
		ToolFailure: failure,
	})
}

func (d *Dispatcher) FireNotification(ctx context.Context, notificationType, message, title string) AggregatedResult {
	return d.Fire(ctx, Notification, MatchContext{}, NotificationInput{
		BaseInput:        d.base(Notification),
		NotificationType: notificationType,
		Message:          message,
		Title:            title,
	})
}

// FireSessionStart fires SessionStart; source (startup, resume, clear, compact)
// is the matcher trigger.
func (d *Dispatcher) FireSessionStart(ctx context.Context, source, model string) AggregatedResult {
	return d.Fire(ctx, SessionStart, MatchContext{Trigger: source}, SessionStartInput{
		BaseInput: d.base(SessionStart),
		Source:    source,
		Model:     model,
	})
}

// FireSessionEnd fires SessionEnd; reason is the matcher trigger.
func (d *Dispatcher) FireSessionEnd(ctx context.Context, reason string) AggregatedResult {
	return d.Fire(ctx, SessionEnd, MatchContext{Trigger: reason}, SessionEndInput{
		BaseInput: d.base(SessionEnd),
		Reason:    reason,
	})
}

func (d *Dispatcher) FireSubagentStart(ctx context.Context, agentID, agentType string) AggregatedResult {
	return d.Fire(ctx, SubagentStart, MatchContext{}, SubagentStartInput{
		BaseInput: d.base(SubagentStart),
		AgentID:   agentID,
		AgentType: agentType,
	})
}

func (d *Dispatcher) FireSubagentStop(ctx context.Context, stop SubagentOutcome) AggregatedResult {
	return d.Fire(ctx, SubagentStop, MatchContext{}, SubagentStopInput{
		BaseInput:       d.base(SubagentStop),
		SubagentOutcome: stop,
	})
}

// FirePreCompact fires PreCompact; trigger (manual or auto) is the matcher trigger.
func (d *Dispatcher) FirePreCompact(ctx context.Context, trigger, customInstructions string) AggregatedResult {
	return d.Fire(ctx, PreCompact, MatchContext{Trigger: trigger}, PreCompactInput{
		BaseInput:          d.base(PreCompact),
		Trigger:            trigger,
		CustomInstructions: customInstructions,
	})
}

func (d *Dispatcher) FirePermissionRequest(ctx context.Context, toolName string, toolInput map[string]any, suggestions []any) AggregatedResult {
	return d.Fire(ctx, PermissionRequest, MatchContext{ToolName: toolName}, PermissionRequestInput{
		BaseInput:             d.base(PermissionRequest),
		ToolName:              toolName,
		ToolInput:             toolInput,
		PermissionSuggestions: suggestions,
	})
}

// Fire plans, runs and aggregates the hooks for one event. input is
// serialized once and every matched hook receives the same bytes. Fire
// never panics: internal failures become a result with Success=false.
func (d *Dispatcher) Fire(ctx context.Context, event Event, mc MatchContext, input any) (result AggregatedResult) {
	firingID := uuid.NewString()
	defer func() {
		if r := recover(); r != nil {
			pilog.Error("hook firing %s (%s) panicked: %v", firingID, event, r)
			result = failedResult(fmt.Errorf("%w: %v", ErrPanic, r))
		}
	}()

	plan, err := Plan(d.registry, event, mc)
	if err != nil {
		pilog.Warn("hook firing %s (%s): %v", firingID, event, err)
		return failedResult(err)
	}
	if plan == nil {
		return emptyResult()
	}

	payload, err := json.Marshal(input)
	if err != nil {
		return failedResult(fmt.Errorf("marshal %s hook input: %w", event, err))
	}

	mode := "parallel"
	if plan.Sequential {
		mode = "sequential"
	}
	pilog.Debug("hook firing %s (%s): %d hook(s), %s", firingID, event, len(plan.Commands), mode)

	var results []ExecutionResult
	if plan.Sequential {
		results = d.runner.RunSequential(ctx, plan.Commands, payload, d.cfg.Timeout)
	} else {
		results = d.runner.RunParallel(ctx, plan.Commands, payload, d.cfg.Timeout)
	}

	result = Aggregate(results)
	pilog.Debug("hook firing %s (%s): success=%t outputs=%d errors=%d duration=%v",
		firingID, event, result.Success, len(result.AllOutputs), len(result.Errors), result.TotalDuration)
	return result
}
