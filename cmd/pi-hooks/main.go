// ABOUTME: CLI entry point for pi-hooks: fire lifecycle events and inspect hook settings
// ABOUTME: Cobra root with fire, list, validate and explain; exit 2 means a hook blocked

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mauromedda/pi-hooks/internal/config"
	pilog "github.com/mauromedda/pi-hooks/internal/log"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Exit codes returned by fire.
const (
	exitOK      = 0
	exitFailure = 1
	exitBlocked = 2
)

// exitCodeError carries a process exit code without an error message.
type exitCodeError struct {
	code int
}

func (e exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	project  string
	home     string
	verbose  bool
	logLevel string
}

// projectRoot returns the configured project directory or the working directory.
func (g *globalOptions) projectRoot() (string, error) {
	if g.project != "" {
		return g.project, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return cwd, nil
}

// loadSettings reads the merged hook settings for the selected project.
func (g *globalOptions) loadSettings() (*config.Settings, string, error) {
	root, err := g.projectRoot()
	if err != nil {
		return nil, "", err
	}
	s, err := config.LoadAllWithHome(root, g.home, nil)
	if err != nil {
		return nil, "", fmt.Errorf("loading hook settings: %w", err)
	}
	return s, root, nil
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	g := &globalOptions{}
	g.home, _ = os.UserHomeDir()

	root := &cobra.Command{
		Use:   "pi-hooks",
		Short: "Run and inspect pi-go lifecycle hooks",
		Long: `pi-hooks fires agent lifecycle events against the hooks configured in
~/.pi-go/settings.json, .pi-go/settings.json, .pi-go/settings.local.json and
extension hooks.yaml manifests, and reports the aggregated decision.

Example:
  echo '{"tool_name":"Write","tool_input":{"file_path":"main.go"}}' | pi-hooks fire PreToolUse`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if g.logLevel != "" {
				l, err := pilog.ParseLevel(g.logLevel)
				if err != nil {
					return err
				}
				pilog.SetLevel(l)
			}
			if g.verbose {
				pilog.SetLevel(pilog.LevelDebug)
			}
			return nil
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&g.project, "project", "C", "", "Project root (default: working directory)")
	flags.StringVar(&g.home, "home", g.home, "Home directory holding the user .pi-go settings")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	_ = flags.MarkHidden("home")

	root.AddCommand(newFireCmd(g))
	root.AddCommand(newListCmd(g))
	root.AddCommand(newValidateCmd(g))
	root.AddCommand(newExplainCmd(g))

	return root
}

// execute runs the CLI and maps the outcome to a process exit code.
func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd(stdin, stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	var exitErr exitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	return exitFailure
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
