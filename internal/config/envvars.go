// ABOUTME: Environment variable expansion in hook settings string fields
// ABOUTME: Replaces ${VAR} patterns with os.Getenv values; unset vars become empty

package config

import (
	"os"
	"regexp"
)

var envVarPattern = regexp.MustCompile(`\$\{(\w+)\}`)

// ResolveEnvVars expands ${VAR} patterns in hook commands, matchers and env values.
func ResolveEnvVars(s *Settings) {
	for k, v := range s.Env {
		s.Env[k] = expandEnv(v)
	}

	for event, defs := range s.Hooks {
		for i := range defs {
			defs[i].Command = expandEnv(defs[i].Command)
			defs[i].Matcher = expandEnv(defs[i].Matcher)
			for j := range defs[i].Hooks {
				defs[i].Hooks[j].Command = expandEnv(defs[i].Hooks[j].Command)
			}
		}
		s.Hooks[event] = defs
	}
}

// expandEnv replaces ${VAR} with os.Getenv(VAR). Unset vars become "".
// ${PI_PROJECT_DIR} is left for the hook's shell, which receives it in
// its environment.
func expandEnv(s string) string {
	if s == "" {
		return s
	}
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if varName == ProjectDirEnv {
			return match
		}
		return os.Getenv(varName)
	})
}
