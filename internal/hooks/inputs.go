// ABOUTME: Per-event hook input payloads written to hook stdin as JSON
// ABOUTME: Every payload embeds BaseInput with session, transcript, cwd, and event name

package hooks

// BaseInput holds the fields every hook input carries.
type BaseInput struct {
	SessionID      string `json:"session_id,omitempty"`
	TranscriptPath string `json:"transcript_path,omitempty"`
	Cwd            string `json:"cwd,omitempty"`
	PermissionMode string `json:"permission_mode,omitempty"`
	HookEventName  Event  `json:"hook_event_name"`
}

type UserPromptSubmitInput struct {
	BaseInput
	Prompt string `json:"prompt"`
}

type StopInput struct {
	BaseInput
	StopHookActive       bool   `json:"stop_hook_active"`
	LastAssistantMessage string `json:"last_assistant_message"`
}

type PreToolUseInput struct {
	BaseInput
	ToolName  string         `json:"tool_name"`
	ToolInput map[string]any `json:"tool_input"`
	ToolUseID string         `json:"tool_use_id"`
}

type PostToolUseInput struct {
	BaseInput
	ToolName     string         `json:"tool_name"`
	ToolInput    map[string]any `json:"tool_input,omitempty"`
	ToolResponse any            `json:"tool_response"`
	ToolUseID    string         `json:"tool_use_id"`
}

// ToolFailure describes a tool call that ended in error.
type ToolFailure struct {
	ToolUseID   string         `json:"tool_use_id"`
	ToolName    string         `json:"tool_name"`
	ToolInput   map[string]any `json:"tool_input,omitempty"`
	Error       string         `json:"error"`
	ErrorType   string         `json:"error_type,omitempty"`
	IsInterrupt bool           `json:"is_interrupt,omitempty"`
}

type PostToolUseFailureInput struct {
	BaseInput
	ToolFailure
}

type NotificationInput struct {
	BaseInput
	NotificationType string `json:"notification_type"`
	Message          string `json:"message"`
	Title            string `json:"title,omitempty"`
}

type SessionStartInput struct {
	BaseInput
	Source string `json:"source"`
	Model  string `json:"model,omitempty"`
}

type SessionEndInput struct {
	BaseInput
	Reason string `json:"reason"`
}

type SubagentStartInput struct {
	BaseInput
	AgentID   string `json:"agent_id"`
	AgentType string `json:"agent_type"`
}

// SubagentOutcome describes a subagent that finished its turn.
type SubagentOutcome struct {
	StopHookActive       bool   `json:"stop_hook_active"`
	LastAssistantMessage string `json:"last_assistant_message"`
	AgentID              string `json:"agent_id"`
	AgentType            string `json:"agent_type"`
	AgentTranscriptPath  string `json:"agent_transcript_path,omitempty"`
}

type SubagentStopInput struct {
	BaseInput
	SubagentOutcome
}

type PreCompactInput struct {
	BaseInput
	Trigger            string `json:"trigger"`
	CustomInstructions string `json:"custom_instructions,omitempty"`
}

type PermissionRequestInput struct {
	BaseInput
	ToolName              string         `json:"tool_name"`
	ToolInput             map[string]any `json:"tool_input"`
	PermissionSuggestions []any          `json:"permission_suggestions,omitempty"`
}
