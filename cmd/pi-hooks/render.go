// ABOUTME: Terminal and JSON rendering of aggregated hook results and hook listings
// ABOUTME: Styles come from lipgloss and degrade to plain text when output is not a TTY

package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	json "github.com/goccy/go-json"

	"github.com/mauromedda/pi-hooks/internal/hooks"
)

var (
	styleHeader = lipgloss.NewStyle().Bold(true)
	styleOK     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleFail   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	styleWarn   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleMuted  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleBox    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

// renderResult writes a human-readable report of one firing.
func renderResult(w io.Writer, event hooks.Event, res hooks.AggregatedResult) {
	fmt.Fprintf(w, "%s %s\n", styleHeader.Render(string(event)),
		styleMuted.Render(fmt.Sprintf("%d hook(s), %s", len(res.Results), res.TotalDuration.Round(time.Millisecond))))

	if len(res.Results) == 0 {
		fmt.Fprintln(w, styleMuted.Render("  no matching hooks"))
		return
	}

	for _, r := range res.Results {
		mark := styleOK.Render("✓")
		detail := fmt.Sprintf("exit %d", r.ExitCode)
		switch {
		case !r.Success:
			mark = styleFail.Render("✗")
			detail = r.Err.Error()
		case r.Output == nil && r.RawText != "":
			mark = styleWarn.Render("!")
			detail += ", output ignored (not a JSON object)"
		}
		fmt.Fprintf(w, "  %s %s %s\n", mark, r.Command.Command,
			styleMuted.Render(fmt.Sprintf("(%s, %s)", detail, r.Duration.Round(time.Millisecond))))
	}

	if final := res.FinalOutput; final != nil {
		fmt.Fprintln(w, styleBox.Render(strings.Join(finalLines(final), "\n")))
	}
}

func finalLines(f *hooks.FinalOutput) []string {
	verdict := styleOK.Render("continue")
	if f.Blocked() {
		verdict = styleFail.Render("blocked")
	}
	lines := []string{"decision: " + verdict}
	if f.PermissionDecision != "" {
		line := "permission: " + f.PermissionDecision
		if f.PermissionDecisionReason != "" {
			line += " (" + f.PermissionDecisionReason + ")"
		}
		lines = append(lines, line)
	}
	if f.StopReason != "" {
		lines = append(lines, "stop reason: "+f.StopReason)
	}
	if f.SystemMessage != "" {
		lines = append(lines, "message: "+f.SystemMessage)
	}
	if f.AdditionalContext != "" {
		lines = append(lines, "context: "+strings.ReplaceAll(f.AdditionalContext, "\n", " | "))
	}
	if f.UpdatedInput != nil {
		lines = append(lines, "input rewritten")
	}
	return lines
}

type resultReport struct {
	Command    string `json:"command"`
	Success    bool   `json:"success"`
	ExitCode   int    `json:"exit_code"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
	Output     any    `json:"output,omitempty"`
	RawText    string `json:"raw_text,omitempty"`
	Stderr     string `json:"stderr,omitempty"`
}

type fireReport struct {
	Event       hooks.Event        `json:"event"`
	Success     bool               `json:"success"`
	Blocked     bool               `json:"blocked"`
	DurationMS  int64              `json:"duration_ms"`
	Results     []resultReport     `json:"results"`
	Errors      []string           `json:"errors,omitempty"`
	FinalOutput *hooks.FinalOutput `json:"final_output"`
}

// writeJSONReport writes res as an indented JSON document.
func writeJSONReport(w io.Writer, event hooks.Event, res hooks.AggregatedResult) error {
	report := fireReport{
		Event:       event,
		Success:     res.Success,
		Blocked:     res.FinalOutput.Blocked(),
		DurationMS:  res.TotalDuration.Milliseconds(),
		Results:     make([]resultReport, 0, len(res.Results)),
		FinalOutput: res.FinalOutput,
	}
	for _, r := range res.Results {
		rr := resultReport{
			Command:    r.Command.Command,
			Success:    r.Success,
			ExitCode:   r.ExitCode,
			DurationMS: r.Duration.Milliseconds(),
			RawText:    r.RawText,
			Stderr:     r.Stderr,
		}
		if r.Output != nil {
			rr.Output = r.Output
		}
		if r.Err != nil {
			rr.Error = r.Err.Error()
		}
		report.Results = append(report.Results, rr)
	}
	for _, e := range res.Errors {
		report.Errors = append(report.Errors, e.Error())
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// renderRegistry writes registered hooks grouped by event. A non-empty
// only restricts the listing to that event.
func renderRegistry(w io.Writer, reg *hooks.StaticRegistry, only hooks.Event) {
	events := reg.Events()
	if only != "" {
		events = slices.DeleteFunc(events, func(e hooks.Event) bool { return e != only })
	}
	if len(events) == 0 {
		fmt.Fprintln(w, styleMuted.Render("no hooks configured"))
		return
	}
	for _, event := range events {
		defs, _ := reg.HooksForEvent(event)
		header := styleHeader.Render(string(event))
		if !event.Valid() {
			header = styleWarn.Render(string(event) + " (unknown event)")
		}
		fmt.Fprintln(w, header)
		for _, def := range defs {
			matcher := strings.TrimSpace(def.Matcher)
			if matcher == "" {
				matcher = "*"
			}
			line := fmt.Sprintf("  %-16s %s", matcher, def.Command.Command)
			var tags []string
			if def.Sequential {
				tags = append(tags, "sequential")
			}
			if def.Command.Timeout > 0 {
				tags = append(tags, "timeout "+def.Command.Timeout.String())
			}
			if def.Source != "" {
				tags = append(tags, string(def.Source))
			}
			if len(tags) > 0 {
				line += " " + styleMuted.Render("["+strings.Join(tags, ", ")+"]")
			}
			if !def.Enabled {
				line = styleMuted.Render(line + " (disabled)")
			}
			fmt.Fprintln(w, line)
		}
	}
}
