// ABOUTME: Hook settings loading with user + project + local deep merge and extension manifests
// ABOUTME: JSON settings are schema-validated, then decoded with goccy/go-json

package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
)

// Hook definition sources, in the order their hooks are registered.
const (
	SourceProject   = "project"
	SourceUser      = "user"
	SourceExtension = "extension"
)

// ProjectDirEnv is exported to every hook process.
const ProjectDirEnv = "PI_PROJECT_DIR"

// Settings holds the merged hook configuration.
type Settings struct {
	Hooks            map[string][]HookDef `json:"hooks,omitempty"`
	DisableAllHooks  bool                 `json:"disableAllHooks,omitempty"`
	HookTimeout      *Duration            `json:"hookTimeout,omitempty"`
	MaxParallelHooks int                  `json:"maxParallelHooks,omitempty"`
	Env              map[string]string    `json:"env,omitempty"`
}

// HookDef is one hook entry for an event. It accepts both the flat form
// ({"matcher", "command"}) and the nested form ({"matcher", "hooks": [...]}).
type HookDef struct {
	Matcher    string        `json:"matcher,omitempty" yaml:"matcher,omitempty"`
	Type       string        `json:"type,omitempty" yaml:"type,omitempty"`
	Command    string        `json:"command,omitempty" yaml:"command,omitempty"`
	Timeout    float64       `json:"timeout,omitempty" yaml:"timeout,omitempty"` // seconds
	Sequential bool          `json:"sequential,omitempty" yaml:"sequential,omitempty"`
	Enabled    *bool         `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Hooks      []HookCommand `json:"hooks,omitempty" yaml:"hooks,omitempty"`

	// Set by the loader, never read from files.
	Source string `json:"-" yaml:"-"`
	Origin string `json:"-" yaml:"-"`
}

// HookCommand is one command of a nested hook entry.
type HookCommand struct {
	Type    string  `json:"type,omitempty" yaml:"type,omitempty"`
	Command string  `json:"command" yaml:"command"`
	Timeout float64 `json:"timeout,omitempty" yaml:"timeout,omitempty"` // seconds
}

// IsEnabled reports whether the entry is enabled; entries default to enabled.
func (d HookDef) IsEnabled() bool {
	return d.Enabled == nil || *d.Enabled
}

// Commands returns the entry's commands: the flat command first, then any
// nested ones. A missing type defaults to "command".
func (d HookDef) Commands() []HookCommand {
	var cmds []HookCommand
	if d.Command != "" {
		cmds = append(cmds, HookCommand{Type: d.Type, Command: d.Command, Timeout: d.Timeout})
	}
	cmds = append(cmds, d.Hooks...)
	for i := range cmds {
		if cmds[i].Type == "" {
			cmds[i].Type = "command"
		}
	}
	return cmds
}

// Duration is a time.Duration that unmarshals from "30s" or from a number of seconds.
type Duration struct {
	time.Duration
}

// UnmarshalJSON implements json.Unmarshaler for Duration.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		secs, numErr := strconv.ParseFloat(string(b), 64)
		if numErr != nil {
			return fmt.Errorf("duration must be a string or number of seconds: %s", b)
		}
		d.Duration = time.Duration(secs * float64(time.Second))
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// MarshalJSON implements json.Marshaler for Duration.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration.String())
}

// Timeout returns the configured per-hook timeout, or zero when unset.
func (s *Settings) Timeout() time.Duration {
	if s == nil || s.HookTimeout == nil {
		return 0
	}
	return s.HookTimeout.Duration
}

// HookEnv returns the KEY=VALUE pairs added to every hook process environment.
func (s *Settings) HookEnv(projectRoot string) []string {
	env := []string{ProjectDirEnv + "=" + projectRoot}
	if s == nil {
		return env
	}
	keys := make([]string, 0, len(s.Env))
	for k := range s.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+s.Env[k])
	}
	return env
}

// Load reads and merges all hook settings for projectRoot using the
// current user's home directory.
func Load(projectRoot string) (*Settings, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return LoadAllWithHome(projectRoot, home, nil)
}

// LoadAllWithHome reads user, project and local settings plus extension
// manifests. Scalars merge user < project < local. Hooks register in the
// order project, local, user, extension. A nil extensionDirs uses the
// default user and project extension directories.
func LoadAllWithHome(projectRoot, home string, extensionDirs []string) (*Settings, error) {
	layers := []struct {
		path   string
		source string
	}{
		{UserSettingsFileIn(home), SourceUser},
		{ProjectSettingsFile(projectRoot), SourceProject},
		{LocalSettingsFile(projectRoot), SourceProject},
	}

	loaded := make([]*Settings, len(layers))
	for i, layer := range layers {
		if layer.path == "" {
			loaded[i] = &Settings{}
			continue
		}
		s, err := loadFile(layer.path, layer.source)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s settings: %w", layer.source, err)
		}
		loaded[i] = s
	}
	user, project, local := loaded[0], loaded[1], loaded[2]

	merged := merge(merge(user, project), local)

	merged.Hooks = nil
	for _, s := range []*Settings{project, local, user} {
		merged.Hooks = appendHooks(merged.Hooks, s.Hooks)
	}

	if extensionDirs == nil {
		extensionDirs = ExtensionDirs(projectRoot, home)
	}
	extHooks, err := LoadExtensions(extensionDirs)
	if err != nil {
		return nil, err
	}
	merged.Hooks = appendHooks(merged.Hooks, extHooks)

	ResolveEnvVars(merged)
	return merged, nil
}

// loadFile reads, validates and decodes one settings file, tagging every
// hook with source and origin. Returns zero Settings if the file does not exist.
func loadFile(path, source string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Settings{}, err
	}
	if err := validateSettings(data); err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	tagHooks(s.Hooks, source, path)
	return &s, nil
}

func tagHooks(hooks map[string][]HookDef, source, origin string) {
	for event, defs := range hooks {
		for i := range defs {
			defs[i].Source = source
			defs[i].Origin = origin
		}
		hooks[event] = defs
	}
}

// appendHooks appends src's entries after dst's, per event.
func appendHooks(dst, src map[string][]HookDef) map[string][]HookDef {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string][]HookDef, len(src))
	}
	for event, defs := range src {
		dst[event] = append(dst[event], defs...)
	}
	return dst
}

// merge deep-merges over onto base. Non-zero values in over win;
// disableAllHooks is sticky across layers.
func merge(base, over *Settings) *Settings {
	if base == nil {
		base = &Settings{}
	}
	if over == nil {
		return base
	}

	result := *base

	if over.DisableAllHooks {
		result.DisableAllHooks = true
	}
	if over.HookTimeout != nil {
		result.HookTimeout = over.HookTimeout
	}
	if over.MaxParallelHooks != 0 {
		result.MaxParallelHooks = over.MaxParallelHooks
	}

	if len(over.Env) > 0 {
		env := make(map[string]string, len(result.Env)+len(over.Env))
		for k, v := range result.Env {
			env[k] = v
		}
		for k, v := range over.Env {
			env[k] = v
		}
		result.Env = env
	}

	return &result
}
