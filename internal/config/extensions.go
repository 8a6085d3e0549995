// ABOUTME: Extension hook manifests: <extensions>/<name>/hooks.yaml decoded with yaml.v3
// ABOUTME: Expands ${PI_EXTENSION_DIR} in commands so extensions can ship their own scripts

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ExtensionDirEnv expands to the directory holding an extension's manifest.
const ExtensionDirEnv = "PI_EXTENSION_DIR"

// ExtensionManifest is the hooks.yaml file of one extension.
type ExtensionManifest struct {
	Name  string               `yaml:"name"`
	Hooks map[string][]HookDef `yaml:"hooks"`
}

// LoadExtensions reads every <dir>/<extension>/hooks.yaml under dirs.
// Directories are scanned in order and extensions by name; missing
// directories and extensions without a manifest are skipped.
func LoadExtensions(dirs []string) (map[string][]HookDef, error) {
	var hooks map[string][]HookDef
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("reading extensions dir %s: %w", dir, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			path := filepath.Join(dir, entry.Name(), extensionHookYML)
			m, err := LoadExtensionManifest(path)
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, err
			}
			hooks = appendHooks(hooks, m.Hooks)
		}
	}
	return hooks, nil
}

// LoadExtensionManifest parses one hooks.yaml and tags its hooks with the
// extension source.
func LoadExtensionManifest(path string) (*ExtensionManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m ExtensionManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if m.Name == "" {
		m.Name = filepath.Base(filepath.Dir(path))
	}

	extDir := filepath.Dir(path)
	placeholder := "${" + ExtensionDirEnv + "}"
	for event, defs := range m.Hooks {
		for i := range defs {
			def := &defs[i]
			if len(def.Commands()) == 0 {
				return nil, fmt.Errorf("%s: %s hook %d of extension %q has no command", path, event, i, m.Name)
			}
			def.Command = strings.ReplaceAll(def.Command, placeholder, extDir)
			for j := range def.Hooks {
				def.Hooks[j].Command = strings.ReplaceAll(def.Hooks[j].Command, placeholder, extDir)
			}
		}
		m.Hooks[event] = defs
	}
	tagHooks(m.Hooks, SourceExtension, path)

	return &m, nil
}
