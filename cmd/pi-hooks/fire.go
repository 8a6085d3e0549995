// ABOUTME: "fire" subcommand: decodes an event payload and routes it to the typed dispatcher method
// ABOUTME: Payload comes from --input or piped stdin; unknown event names get fuzzy suggestions

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mauromedda/pi-hooks/internal/hooks"
)

type fireOptions struct {
	inputPath string
	jsonOut   bool
	timeout   time.Duration
}

func newFireCmd(g *globalOptions) *cobra.Command {
	var opts fireOptions

	cmd := &cobra.Command{
		Use:   "fire <event>",
		Short: "Fire one lifecycle event against the configured hooks",
		Long: `Fire one lifecycle event. The payload is a JSON object with the fields of
the event's hook input (for example tool_name and tool_input for PreToolUse).
session_id, transcript_path, cwd and permission_mode are taken from the
payload when present.

Exit status is 2 when the aggregated decision blocks (continue:false or deny),
1 when a hook failed to start or timed out, and 0 otherwise.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: eventNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			event, err := parseEvent(args[0])
			if err != nil {
				return err
			}
			payload, err := readPayload(cmd.InOrStdin(), opts.inputPath)
			if err != nil {
				return err
			}

			settings, root, err := g.loadSettings()
			if err != nil {
				return err
			}

			var base hooks.BaseInput
			if err := json.Unmarshal(payload, &base); err != nil {
				return fmt.Errorf("decoding %s payload: %w", event, err)
			}
			if base.SessionID == "" {
				base.SessionID = uuid.NewString()
			}
			if base.Cwd == "" {
				base.Cwd = root
			}
			timeout := opts.timeout
			if timeout <= 0 {
				timeout = settings.Timeout()
			}

			runner := hooks.NewRunner(hooks.RunnerOptions{
				Dir:         root,
				Env:         settings.HookEnv(root),
				MaxParallel: settings.MaxParallelHooks,
			})
			d := hooks.NewDispatcher(hooks.RegistryFromSettings(settings), runner, hooks.DispatcherConfig{
				SessionID:      base.SessionID,
				TranscriptPath: base.TranscriptPath,
				Cwd:            base.Cwd,
				PermissionMode: base.PermissionMode,
				Timeout:        timeout,
			})

			res, err := fireEvent(cmd.Context(), d, event, payload)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOut {
				if err := writeJSONReport(out, event, res); err != nil {
					return err
				}
			} else {
				renderResult(out, event, res)
			}

			switch {
			case res.FinalOutput.Blocked():
				return exitCodeError{code: exitBlocked}
			case !res.Success:
				return exitCodeError{code: exitFailure}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.inputPath, "input", "i", "", "Read the event payload from this file (\"-\" for stdin)")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print the aggregated result as JSON")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Per-hook timeout (default: hookTimeout setting or 60s)")

	return cmd
}

func eventNames() []string {
	names := make([]string, len(hooks.AllEvents))
	for i, e := range hooks.AllEvents {
		names[i] = string(e)
	}
	return names
}

// parseEvent resolves name to a lifecycle event, case-insensitively.
func parseEvent(name string) (hooks.Event, error) {
	for _, e := range hooks.AllEvents {
		if strings.EqualFold(name, string(e)) {
			return e, nil
		}
	}
	msg := fmt.Sprintf("unknown event %q", name)
	if s := suggestEvents(name); len(s) > 0 {
		msg += "; did you mean " + strings.Join(s, " or ") + "?"
	}
	return "", errors.New(msg)
}

// suggestEvents returns up to three event names that fuzzy-match name, best first.
func suggestEvents(name string) []string {
	matches := fuzzy.Find(name, eventNames())
	var out []string
	for i, m := range matches {
		if i == 3 {
			break
		}
		out = append(out, m.Str)
	}
	return out
}

// readPayload returns the event payload. With no --input the payload is
// read from stdin unless stdin is a terminal; an empty payload is {}.
func readPayload(stdin io.Reader, path string) ([]byte, error) {
	var data []byte
	var err error

	switch {
	case path != "" && path != "-":
		data, err = os.ReadFile(path)
	case path == "-" || !isTerminal(stdin):
		data, err = io.ReadAll(stdin)
	}
	if err != nil {
		return nil, fmt.Errorf("reading event payload: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []byte(`{}`), nil
	}
	if data[0] != '{' {
		return nil, errors.New("event payload must be a JSON object")
	}
	return data, nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func decodeInput[T any](event hooks.Event, payload []byte) (T, error) {
	var in T
	if err := json.Unmarshal(payload, &in); err != nil {
		return in, fmt.Errorf("decoding %s payload: %w", event, err)
	}
	return in, nil
}

// fireEvent decodes payload into the event's input type and calls the
// matching dispatcher method.
func fireEvent(ctx context.Context, d *hooks.Dispatcher, event hooks.Event, payload []byte) (hooks.AggregatedResult, error) {
	var none hooks.AggregatedResult

	switch event {
	case hooks.UserPromptSubmit:
		in, err := decodeInput[hooks.UserPromptSubmitInput](event, payload)
		if err != nil {
			return none, err
		}
		return d.FireUserPromptSubmit(ctx, in.Prompt), nil

	case hooks.Stop:
		in, err := decodeInput[hooks.StopInput](event, payload)
		if err != nil {
			return none, err
		}
		return d.FireStop(ctx, in.StopHookActive, in.LastAssistantMessage), nil

	case hooks.PreToolUse:
		in, err := decodeInput[hooks.PreToolUseInput](event, payload)
		if err != nil {
			return none, err
		}
		return d.FirePreToolUse(ctx, in.ToolName, in.ToolInput, in.ToolUseID), nil

	case hooks.PostToolUse:
		in, err := decodeInput[hooks.PostToolUseInput](event, payload)
		if err != nil {
			return none, err
		}
		return d.FirePostToolUse(ctx, in.ToolName, in.ToolInput, in.ToolResponse, in.ToolUseID), nil

	case hooks.PostToolUseFailure:
		in, err := decodeInput[hooks.PostToolUseFailureInput](event, payload)
		if err != nil {
			return none, err
		}
		return d.FirePostToolUseFailure(ctx, in.ToolFailure), nil

	case hooks.Notification:
		in, err := decodeInput[hooks.NotificationInput](event, payload)
		if err != nil {
			return none, err
		}
		return d.FireNotification(ctx, in.NotificationType, in.Message, in.Title), nil

	case hooks.SessionStart:
		in, err := decodeInput[hooks.SessionStartInput](event, payload)
		if err != nil {
			return none, err
		}
		return d.FireSessionStart(ctx, in.Source, in.Model), nil

	case hooks.SessionEnd:
		in, err := decodeInput[hooks.SessionEndInput](event, payload)
		if err != nil {
			return none, err
		}
		return d.FireSessionEnd(ctx, in.Reason), nil

	case hooks.SubagentStart:
		in, err := decodeInput[hooks.SubagentStartInput](event, payload)
		if err != nil {
			return none, err
		}
		return d.FireSubagentStart(ctx, in.AgentID, in.AgentType), nil

	case hooks.SubagentStop:
		in, err := decodeInput[hooks.SubagentStopInput](event, payload)
		if err != nil {
			return none, err
		}
		return d.FireSubagentStop(ctx, in.SubagentOutcome), nil

	case hooks.PreCompact:
		in, err := decodeInput[hooks.PreCompactInput](event, payload)
		if err != nil {
			return none, err
		}
		return d.FirePreCompact(ctx, in.Trigger, in.CustomInstructions), nil

	case hooks.PermissionRequest:
		in, err := decodeInput[hooks.PermissionRequestInput](event, payload)
		if err != nil {
			return none, err
		}
		return d.FirePermissionRequest(ctx, in.ToolName, in.ToolInput, in.PermissionSuggestions), nil
	}

	return none, fmt.Errorf("unknown event %q", event)
}
