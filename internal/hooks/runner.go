// ABOUTME: Hook runner: one shell process per command, JSON input on stdin, output parsed from stdout
// ABOUTME: Sequential mode short-circuits on a blocking output; parallel mode fans out via errgroup

package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mattn/go-runewidth"
	"golang.org/x/sync/errgroup"

	pilog "github.com/mauromedda/pi-hooks/internal/log"
)

const (
	// DefaultTimeout applies when neither the firing nor the command sets one.
	DefaultTimeout = 60 * time.Second

	// waitDelay bounds how long Wait blocks on pipes still held by
	// grandchildren after the hook exits or is killed.
	waitDelay = 2 * time.Second

	previewWidth = 120
)

// RunnerOptions configures how hook processes are spawned.
type RunnerOptions struct {
	Dir         string   // working directory; empty inherits the agent's
	Env         []string // KEY=VALUE pairs appended to the agent environment
	MaxParallel int      // upper bound on concurrent hooks in parallel mode; 0 is unbounded
}

// Runner spawns hook commands. It holds only spawn configuration, so one
// Runner may serve concurrent firings.
type Runner struct {
	dir         string
	env         []string
	maxParallel int
}

// NewRunner creates a runner from opts.
func NewRunner(opts RunnerOptions) *Runner {
	return &Runner{
		dir:         opts.Dir,
		env:         append([]string(nil), opts.Env...),
		maxParallel: opts.MaxParallel,
	}
}

// RunSequential runs commands one at a time in order. It stops issuing
// commands after the first result whose output blocks; later commands are
// absent from the returned slice.
func (r *Runner) RunSequential(ctx context.Context, commands []CommandSpec, input []byte, timeout time.Duration) []ExecutionResult {
	results := make([]ExecutionResult, 0, len(commands))
	for i, spec := range commands {
		res := r.runCommand(ctx, spec, input, timeout)
		results = append(results, res)
		if res.Output.Blocks() {
			if skipped := len(commands) - i - 1; skipped > 0 {
				pilog.Debug("hook %q blocked; skipping %d remaining hook(s)", spec.Command, skipped)
			}
			break
		}
	}
	return results
}

// RunParallel runs every command concurrently and waits for all of them.
// A failure or timeout in one command never cancels the others. Results
// are returned in command order.
func (r *Runner) RunParallel(ctx context.Context, commands []CommandSpec, input []byte, timeout time.Duration) []ExecutionResult {
	results := make([]ExecutionResult, len(commands))

	var g errgroup.Group
	if r.maxParallel > 0 {
		g.SetLimit(r.maxParallel)
	}
	for i, spec := range commands {
		g.Go(func() error {
			results[i] = r.runCommand(ctx, spec, input, timeout)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// runCommand executes one hook with input piped to stdin. It kills the
// process group when the deadline passes.
func (r *Runner) runCommand(ctx context.Context, spec CommandSpec, input []byte, timeout time.Duration) ExecutionResult {
	if spec.Timeout > 0 {
		timeout = spec.Timeout
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	res := ExecutionResult{Command: spec, ExitCode: -1}
	start := time.Now()

	if spec.Type != "" && spec.Type != CommandTypeCommand {
		res.Err = fmt.Errorf("%w: unsupported hook type %q", ErrSpawn, spec.Type)
		return res
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := shellCommand(runCtx, spec.Command)
	cmd.Dir = r.dir
	cmd.Env = append(os.Environ(), r.env...)
	cmd.Stdin = bytes.NewReader(input)
	setProcGroup(cmd)
	cmd.Cancel = func() error {
		return killProcGroup(cmd)
	}
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	res.Duration = time.Since(start)
	res.Stderr = stderr.String()
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if runErr != nil && !errors.Is(runErr, exec.ErrWaitDelay) {
		var exitErr *exec.ExitError
		switch {
		case ctx.Err() != nil:
			res.Err = fmt.Errorf("%w: %v", ErrCanceled, ctx.Err())
			return res
		case runCtx.Err() != nil:
			res.Err = fmt.Errorf("%w after %v", ErrTimeout, timeout)
			pilog.Warn("hook %q timed out after %v; process killed", spec.Command, timeout)
			return res
		case !errors.As(runErr, &exitErr):
			res.Err = fmt.Errorf("%w: %v", ErrSpawn, runErr)
			pilog.Warn("hook %q failed to start: %v", spec.Command, runErr)
			return res
		}
	}

	res.Success = true
	res.Output, res.RawText = parseOutput(stdout.Bytes())
	if res.Output == nil && res.RawText != "" {
		pilog.Warn("hook %q wrote non-JSON output: %s", spec.Command, preview(res.RawText))
	}
	return res
}

// parseOutput decodes stdout as exactly one JSON object. Anything else
// yields a nil output; the trimmed text is always returned for diagnostics.
func parseOutput(stdout []byte) (*HookOutput, string) {
	trimmed := bytes.TrimSpace(stdout)
	if len(trimmed) == 0 {
		return nil, ""
	}
	raw := string(trimmed)
	if trimmed[0] != '{' {
		return nil, raw
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	var out HookOutput
	if err := dec.Decode(&out); err != nil {
		return nil, raw
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, raw
	}
	return &out, raw
}

// preview flattens and truncates raw output for a single log line.
func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return runewidth.Truncate(s, previewWidth, "…")
}
