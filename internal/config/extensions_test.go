// ABOUTME: Tests for extension hook manifests
// ABOUTME: Writes hooks.yaml files under temp extension dirs and checks decoding and tagging

package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadExtensionManifest(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "formatter")
	path := filepath.Join(dir, "hooks.yaml")
	writeFile(t, path, `
hooks:
  PostToolUse:
    - matcher: Write|Edit
      command: ${PI_EXTENSION_DIR}/fmt.sh
      timeout: 10
  SessionStart:
    - matcher: startup
      sequential: true
      hooks:
        - command: ${PI_EXTENSION_DIR}/warmup.sh
        - command: echo ready
`)

	m, err := LoadExtensionManifest(path)
	require.NoError(t, err)

	assert.Equal(t, "formatter", m.Name)
	post := m.Hooks["PostToolUse"]
	require.Len(t, post, 1)
	assert.Equal(t, "Write|Edit", post[0].Matcher)
	assert.Equal(t, filepath.Join(dir, "fmt.sh"), post[0].Command)
	assert.Equal(t, 10.0, post[0].Timeout)
	assert.Equal(t, SourceExtension, post[0].Source)
	assert.Equal(t, path, post[0].Origin)

	start := m.Hooks["SessionStart"]
	require.Len(t, start, 1)
	assert.True(t, start[0].Sequential)
	assert.Equal(t, filepath.Join(dir, "warmup.sh"), start[0].Hooks[0].Command)
	assert.Equal(t, "echo ready", start[0].Hooks[1].Command)
}

func TestLoadExtensionManifest_ExplicitName(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dir-name", "hooks.yaml")
	writeFile(t, path, "name: audit-log\nhooks:\n  Stop:\n    - command: echo stop\n")

	m, err := LoadExtensionManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "audit-log", m.Name)
}

func TestLoadExtensionManifest_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{"missing command", "hooks:\n  Stop:\n    - matcher: '*'\n", "has no command"},
		{"bad yaml", "hooks: [unclosed\n", "parsing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "ext", "hooks.yaml")
			writeFile(t, path, tt.content)

			_, err := LoadExtensionManifest(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestLoadExtensions_ScansDirsInOrder(t *testing.T) {
	t.Parallel()

	first, second := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(first, "b-ext", "hooks.yaml"), "hooks:\n  Stop:\n    - command: first-b\n")
	writeFile(t, filepath.Join(first, "a-ext", "hooks.yaml"), "hooks:\n  Stop:\n    - command: first-a\n")
	writeFile(t, filepath.Join(first, "no-manifest", "README.md"), "nothing here")
	writeFile(t, filepath.Join(first, "stray.yaml"), "not an extension")
	writeFile(t, filepath.Join(second, "c-ext", "hooks.yaml"), "hooks:\n  Stop:\n    - command: second-c\n")

	hooks, err := LoadExtensions([]string{first, filepath.Join(first, "missing"), second})
	require.NoError(t, err)

	var got []string
	for _, def := range hooks["Stop"] {
		got = append(got, def.Command)
	}
	assert.Equal(t, []string{"first-a", "first-b", "second-c"}, got)
}

func TestLoadExtensions_PropagatesManifestErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "broken", "hooks.yaml"), "hooks:\n  Stop:\n    - matcher: x\n")

	_, err := LoadExtensions([]string{dir})
	assert.Error(t, err)
}
