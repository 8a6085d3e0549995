// ABOUTME: Tests for the static registry and its construction from loaded settings
// ABOUTME: Covers flattening of nested commands, disabled entries, and copy isolation

package hooks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mauromedda/pi-hooks/internal/config"
)

func TestStaticRegistry_CopiesOnConstructionAndRead(t *testing.T) {
	t.Parallel()

	defs := []Definition{def("*", "echo a")}
	reg := NewRegistry(map[Event][]Definition{Stop: defs})

	defs[0].Command.Command = "mutated"
	got, err := reg.HooksForEvent(Stop)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "echo a", got[0].Command.Command)

	got[0].Command.Command = "mutated again"
	again, err := reg.HooksForEvent(Stop)
	require.NoError(t, err)
	assert.Equal(t, "echo a", again[0].Command.Command)
}

func TestStaticRegistry_EventsAndLen(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(map[Event][]Definition{
		PermissionRequest: {def("*", "a")},
		Stop:              {def("*", "b"), def("*", "c")},
		"Custom":          {def("*", "d")},
		SessionEnd:        nil,
	})

	assert.Equal(t, []Event{Stop, PermissionRequest, "Custom"}, reg.Events())
	assert.Equal(t, 4, reg.Len())

	none, err := reg.HooksForEvent(SessionEnd)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestRegistryFromSettings(t *testing.T) {
	t.Parallel()

	disabled := false
	s := &config.Settings{
		Hooks: map[string][]config.HookDef{
			"PreToolUse": {
				{
					Matcher: "Write|Edit",
					Command: "./lint.sh",
					Timeout: 1.5,
					Source:  config.SourceProject,
					Origin:  "/repo/.pi-go/settings.json",
				},
				{
					Matcher:    "Bash",
					Sequential: true,
					Hooks: []config.HookCommand{
						{Command: "./guard.sh"},
						{Type: "command", Command: "./audit.sh", Timeout: 2},
					},
					Source: config.SourceUser,
				},
				{Matcher: "*", Command: "./off.sh", Enabled: &disabled},
			},
		},
	}

	reg := RegistryFromSettings(s)
	defs, err := reg.HooksForEvent(PreToolUse)
	require.NoError(t, err)
	require.Len(t, defs, 4)

	require.NotNil(t, defs[0].pattern)
	assert.NotNil(t, defs[0].pattern.re)
	first := defs[0]
	first.pattern = nil
	assert.Equal(t, Definition{
		Matcher: "Write|Edit",
		Command: CommandSpec{Type: CommandTypeCommand, Command: "./lint.sh", Timeout: 1500 * time.Millisecond},
		Enabled: true,
		Source:  SourceProject,
		Origin:  "/repo/.pi-go/settings.json",
	}, first)

	assert.Equal(t, "./guard.sh", defs[1].Command.Command)
	assert.Equal(t, "./audit.sh", defs[2].Command.Command)
	assert.Equal(t, 2*time.Second, defs[2].Command.Timeout)
	assert.True(t, defs[1].Sequential)
	assert.True(t, defs[2].Sequential)
	assert.Equal(t, SourceUser, defs[2].Source)

	assert.False(t, defs[3].Enabled)
}

func TestRegistryFromSettings_DisableAllHooks(t *testing.T) {
	t.Parallel()

	reg := RegistryFromSettings(&config.Settings{
		DisableAllHooks: true,
		Hooks:           map[string][]config.HookDef{"Stop": {{Command: "echo"}}},
	})
	assert.Zero(t, reg.Len())

	assert.Zero(t, RegistryFromSettings(nil).Len())
}

func TestNewRegistry_CompilesMatchersOnce(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(map[Event][]Definition{
		PreToolUse: {def("Write|Edit", "a"), def("[oops", "b"), def("*", "c")},
	})
	defs, err := reg.HooksForEvent(PreToolUse)
	require.NoError(t, err)
	require.Len(t, defs, 3)

	require.NotNil(t, defs[0].pattern)
	assert.True(t, defs[0].pattern.re.MatchString("Edit"))
	require.NotNil(t, defs[1].pattern)
	assert.Nil(t, defs[1].pattern.re, "invalid matcher keeps exact matching only")
	require.NotNil(t, defs[2].pattern)
	assert.Nil(t, defs[2].pattern.re)

	again, err := reg.HooksForEvent(PreToolUse)
	require.NoError(t, err)
	assert.Same(t, defs[0].pattern, again[0].pattern)
}
