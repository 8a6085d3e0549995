// ABOUTME: "list" and "explain" subcommands: show the hooks the registry would serve
// ABOUTME: list --watch re-renders whenever a settings file or extension manifest changes

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mauromedda/pi-hooks/internal/config"
	"github.com/mauromedda/pi-hooks/internal/hooks"
)

type listOptions struct {
	watch    bool
	interval time.Duration
}

func newListCmd(g *globalOptions) *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:       "list [event]",
		Short:     "List registered hooks by event",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: eventNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			var only hooks.Event
			if len(args) == 1 {
				e, err := parseEvent(args[0])
				if err != nil {
					return err
				}
				only = e
			}
			root, err := g.projectRoot()
			if err != nil {
				return err
			}
			reg, err := hooks.NewReloadingRegistry(hooks.SettingsLoader(root, g.home))
			if err != nil {
				return fmt.Errorf("loading hook settings: %w", err)
			}

			out := cmd.OutOrStdout()
			renderRegistry(out, reg.Snapshot(), only)
			if !opts.watch {
				return nil
			}

			w := reg.Watcher(config.WatchPaths(root, g.home), opts.interval, func(err error) {
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "reload failed: %v\n", err)
					return
				}
				fmt.Fprintf(out, "\n%s\n", styleMuted.Render("-- reloaded "+time.Now().Format(time.TimeOnly)+" --"))
				renderRegistry(out, reg.Snapshot(), only)
			})
			if err := w.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Keep running and re-list when settings change")
	cmd.Flags().DurationVar(&opts.interval, "interval", config.DefaultWatchInterval, "Polling interval for --watch")

	return cmd
}

func newExplainCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "explain",
		Short: "Show the effective merged hook settings and where each hook came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, _, err := g.loadSettings()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), config.Explain(settings))
			return nil
		},
	}
}
