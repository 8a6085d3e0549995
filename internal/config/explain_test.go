// ABOUTME: Tests for human-readable hook settings rendering
// ABOUTME: Covers empty, nil, and populated settings

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExplain_EmptySettings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "=== General ===\n\n", Explain(&Settings{}))
	assert.Equal(t, Explain(&Settings{}), Explain(nil))
}

func TestExplain_Settings(t *testing.T) {
	t.Parallel()

	off := false
	s := &Settings{
		DisableAllHooks:  true,
		HookTimeout:      &Duration{45 * time.Second},
		MaxParallelHooks: 3,
		Env:              map[string]string{"TOKEN": "secret", "API": "x"},
		Hooks: map[string][]HookDef{
			"Stop": {{Command: "echo stop", Source: SourceUser}},
			"PreToolUse": {
				{Matcher: "Write", Command: "./lint.sh", Timeout: 5, Sequential: true, Source: SourceProject, Origin: "/repo/.pi-go/settings.json"},
				{Hooks: []HookCommand{{Command: "./a.sh"}, {Command: "./b.sh"}}, Enabled: &off},
			},
		},
	}

	want := "=== General ===\n" +
		"  DisableAllHooks:  true\n" +
		"  HookTimeout:      45s\n" +
		"  MaxParallelHooks: 3\n" +
		"  Env:              API, TOKEN\n" +
		"\n" +
		"=== PreToolUse ===\n" +
		"  [Write] ./lint.sh (timeout 5s) {sequential} <project /repo/.pi-go/settings.json>\n" +
		"  [*] ./a.sh {disabled}\n" +
		"  [*] ./b.sh {disabled}\n" +
		"\n" +
		"=== Stop ===\n" +
		"  [*] echo stop <user>\n" +
		"\n"

	assert.Equal(t, want, Explain(s))
}

func TestExplain_HidesEnvValues(t *testing.T) {
	t.Parallel()

	out := Explain(&Settings{Env: map[string]string{"TOKEN": "hunter2"}})
	assert.NotContains(t, out, "hunter2")
}
