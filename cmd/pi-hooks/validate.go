// ABOUTME: "validate" subcommand: loads every settings layer and reports configuration problems
// ABOUTME: Flags unknown event names with suggestions and matchers that can never match

package main

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mauromedda/pi-hooks/internal/config"
	"github.com/mauromedda/pi-hooks/internal/hooks"
)

// settingsProblem is one issue found in loaded settings.
type settingsProblem struct {
	origin  string
	message string
	fatal   bool
}

func newValidateCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate hook settings and extension manifests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, _, err := g.loadSettings()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			problems := checkSettings(settings)
			failed := false
			for _, p := range problems {
				label := styleWarn.Render("warning")
				if p.fatal {
					label = styleFail.Render("error")
					failed = true
				}
				origin := p.origin
				if origin == "" {
					origin = "settings"
				}
				fmt.Fprintf(out, "%s: %s: %s\n", label, origin, p.message)
			}
			if failed {
				return exitCodeError{code: exitFailure}
			}

			reg := hooks.RegistryFromSettings(settings)
			fmt.Fprintf(out, "%s %d hook(s) across %d event(s)\n",
				styleOK.Render("ok:"), reg.Len(), len(reg.Events()))
			return nil
		},
	}
}

// checkSettings reports unknown events (fatal) and matchers that are
// neither a wildcard, a plain name nor a valid regular expression.
func checkSettings(s *config.Settings) []settingsProblem {
	var problems []settingsProblem
	for _, name := range sortedKeys(s.Hooks) {
		defs := s.Hooks[name]
		event := hooks.Event(name)
		if !event.Valid() {
			msg := fmt.Sprintf("unknown event %q", name)
			if sug := suggestEvents(name); len(sug) > 0 {
				msg += "; did you mean " + strings.Join(sug, " or ") + "?"
			}
			origin := ""
			if len(defs) > 0 {
				origin = defs[0].Origin
			}
			problems = append(problems, settingsProblem{origin: origin, message: msg, fatal: true})
			continue
		}
		for _, def := range defs {
			m := strings.TrimSpace(def.Matcher)
			if m == "" || m == "*" {
				continue
			}
			if _, err := regexp.Compile(m); err != nil {
				problems = append(problems, settingsProblem{
					origin:  def.Origin,
					message: fmt.Sprintf("%s matcher %q is not a valid regular expression; only exact matches will fire", name, m),
				})
			}
		}
	}
	return problems
}

func sortedKeys(m map[string][]config.HookDef) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
