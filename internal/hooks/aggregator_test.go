// ABOUTME: Tests for result aggregation and the FinalOutput precedence rules
// ABOUTME: Builds ExecutionResults by hand; no processes are spawned

package hooks

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func ok(out *HookOutput) ExecutionResult {
	return ExecutionResult{Success: true, Output: out, Duration: 10 * time.Millisecond}
}

func failed(command string, err error) ExecutionResult {
	return ExecutionResult{Command: shell(command), Err: err, Duration: 5 * time.Millisecond}
}

func TestAggregate_Empty(t *testing.T) {
	t.Parallel()

	agg := Aggregate(nil)
	assert.True(t, agg.Success)
	assert.Nil(t, agg.FinalOutput)
	assert.Empty(t, agg.Errors)
	assert.Zero(t, agg.TotalDuration)
}

func TestAggregate_NoOutputsMeansNoFinalOutput(t *testing.T) {
	t.Parallel()

	agg := Aggregate([]ExecutionResult{ok(nil), ok(nil)})
	assert.True(t, agg.Success)
	assert.Nil(t, agg.FinalOutput)
	assert.Empty(t, agg.AllOutputs)
	assert.Len(t, agg.Results, 2)
}

func TestAggregate_EmptyObjectCounts(t *testing.T) {
	t.Parallel()

	agg := Aggregate([]ExecutionResult{ok(&HookOutput{})})
	require.NotNil(t, agg.FinalOutput)
	assert.True(t, agg.FinalOutput.Continue)
	assert.Empty(t, agg.FinalOutput.PermissionDecision)
	assert.False(t, agg.FinalOutput.Blocked())
}

func TestAggregate_FailuresRecordedInOrder(t *testing.T) {
	t.Parallel()

	agg := Aggregate([]ExecutionResult{
		failed("slow", ErrTimeout),
		ok(&HookOutput{SystemMessage: "fine"}),
		failed("missing", ErrSpawn),
	})

	assert.False(t, agg.Success)
	require.Len(t, agg.Errors, 2)
	assert.ErrorIs(t, agg.Errors[0], ErrTimeout)
	assert.Equal(t, "slow", agg.Errors[0].Command.Command)
	assert.ErrorIs(t, agg.Errors[1], ErrSpawn)
	assert.Contains(t, agg.Errors[1].Error(), `hook "missing"`)
	assert.Equal(t, 20*time.Millisecond, agg.TotalDuration)
	require.NotNil(t, agg.FinalOutput)
	assert.Equal(t, "fine", agg.FinalOutput.SystemMessage)
}

func TestAggregate_ContinueFalseIsSticky(t *testing.T) {
	t.Parallel()

	agg := Aggregate([]ExecutionResult{
		ok(&HookOutput{Continue: boolPtr(true)}),
		ok(&HookOutput{Continue: boolPtr(false), StopReason: "first stop"}),
		ok(&HookOutput{Continue: boolPtr(true), StopReason: "second stop"}),
	})

	require.NotNil(t, agg.FinalOutput)
	assert.False(t, agg.FinalOutput.Continue)
	assert.Equal(t, "first stop", agg.FinalOutput.StopReason)
	assert.True(t, agg.FinalOutput.Blocked())
}

func TestAggregate_PermissionPrecedence(t *testing.T) {
	t.Parallel()

	pre := func(decision, reason string) *HookOutput {
		return &HookOutput{HookSpecificOutput: &HookSpecificOutput{
			HookEventName:            string(PreToolUse),
			PermissionDecision:       decision,
			PermissionDecisionReason: reason,
		}}
	}

	tests := []struct {
		name       string
		outputs    []*HookOutput
		wantDec    string
		wantReason string
	}{
		{
			name:    "none",
			outputs: []*HookOutput{{SystemMessage: "hi"}},
		},
		{
			name:       "allow only",
			outputs:    []*HookOutput{pre("allow", "safe"), pre("allow", "also safe")},
			wantDec:    PermissionAllow,
			wantReason: "safe",
		},
		{
			name:       "deny beats earlier allow",
			outputs:    []*HookOutput{pre("allow", "safe"), pre("deny", "protected path")},
			wantDec:    PermissionDeny,
			wantReason: "protected path",
		},
		{
			name:       "deny beats later allow",
			outputs:    []*HookOutput{pre("deny", "protected path"), pre("allow", "safe")},
			wantDec:    PermissionDeny,
			wantReason: "protected path",
		},
		{
			name:       "legacy block is deny",
			outputs:    []*HookOutput{pre("allow", ""), {Decision: DecisionBlock, Reason: "legacy"}},
			wantDec:    PermissionDeny,
			wantReason: "legacy",
		},
		{
			name:       "legacy approve is allow",
			outputs:    []*HookOutput{{Decision: DecisionApprove, Reason: "ok"}},
			wantDec:    PermissionAllow,
			wantReason: "ok",
		},
		{
			name:       "first non-empty deny reason",
			outputs:    []*HookOutput{pre("deny", ""), pre("deny", "second")},
			wantDec:    PermissionDeny,
			wantReason: "second",
		},
		{
			name: "permission request behavior",
			outputs: []*HookOutput{{HookSpecificOutput: &HookSpecificOutput{
				HookEventName: string(PermissionRequest),
				Decision:      &PermissionRequestDecision{Behavior: "deny", Message: "not now"},
			}}},
			wantDec:    PermissionDeny,
			wantReason: "not now",
		},
		{
			name: "legacy block beats allow in the same output",
			outputs: []*HookOutput{{
				Decision:           DecisionBlock,
				Reason:             "legacy",
				HookSpecificOutput: &HookSpecificOutput{PermissionDecision: PermissionAllow, PermissionDecisionReason: "safe"},
			}},
			wantDec:    PermissionDeny,
			wantReason: "legacy",
		},
		{
			name: "behavior deny beats permission allow in the same output",
			outputs: []*HookOutput{{HookSpecificOutput: &HookSpecificOutput{
				PermissionDecision: PermissionAllow,
				Decision:           &PermissionRequestDecision{Behavior: "deny", Message: "not now"},
			}}},
			wantDec:    PermissionDeny,
			wantReason: "not now",
		},
		{
			name: "permission deny beats legacy approve in the same output",
			outputs: []*HookOutput{{
				Decision:           DecisionApprove,
				HookSpecificOutput: &HookSpecificOutput{PermissionDecision: PermissionDeny, PermissionDecisionReason: "frozen"},
			}},
			wantDec:    PermissionDeny,
			wantReason: "frozen",
		},
		{
			name:    "unknown decision ignored",
			outputs: []*HookOutput{pre("ask", "maybe")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			results := make([]ExecutionResult, len(tt.outputs))
			for i, out := range tt.outputs {
				results[i] = ok(out)
			}

			agg := Aggregate(results)
			require.NotNil(t, agg.FinalOutput)
			assert.Equal(t, tt.wantDec, agg.FinalOutput.PermissionDecision)
			assert.Equal(t, tt.wantReason, agg.FinalOutput.PermissionDecisionReason)
			assert.Equal(t, tt.wantDec == PermissionDeny, agg.FinalOutput.Blocked())
		})
	}
}

func TestAggregate_AdditionalContextJoined(t *testing.T) {
	t.Parallel()

	agg := Aggregate([]ExecutionResult{
		ok(&HookOutput{HookSpecificOutput: &HookSpecificOutput{AdditionalContext: "branch: main"}}),
		ok(&HookOutput{}),
		ok(&HookOutput{HookSpecificOutput: &HookSpecificOutput{AdditionalContext: ""}}),
		ok(&HookOutput{HookSpecificOutput: &HookSpecificOutput{AdditionalContext: "tests: passing"}}),
	})

	require.NotNil(t, agg.FinalOutput)
	assert.Equal(t, "branch: main\ntests: passing", agg.FinalOutput.AdditionalContext)
}

func TestAggregate_UpdatedInputLastWins(t *testing.T) {
	t.Parallel()

	agg := Aggregate([]ExecutionResult{
		ok(&HookOutput{HookSpecificOutput: &HookSpecificOutput{UpdatedInput: map[string]any{"path": "a"}}}),
		ok(&HookOutput{HookSpecificOutput: &HookSpecificOutput{
			Decision: &PermissionRequestDecision{Behavior: "allow", UpdatedInput: map[string]any{"path": "b"}},
		}}),
		ok(&HookOutput{HookSpecificOutput: &HookSpecificOutput{AdditionalContext: "no rewrite"}}),
	})

	require.NotNil(t, agg.FinalOutput)
	assert.Equal(t, map[string]any{"path": "b"}, agg.FinalOutput.UpdatedInput)
}

func TestAggregate_UpdatedPermissionsLastWins(t *testing.T) {
	t.Parallel()

	agg := Aggregate([]ExecutionResult{
		ok(&HookOutput{HookSpecificOutput: &HookSpecificOutput{UpdatedPermissions: []any{"first"}}}),
		ok(&HookOutput{HookSpecificOutput: &HookSpecificOutput{UpdatedPermissions: []any{"second"}}}),
		ok(&HookOutput{}),
	})

	require.NotNil(t, agg.FinalOutput)
	assert.Equal(t, []any{"second"}, agg.FinalOutput.UpdatedPermissions)
}

func TestAggregate_FirstSystemMessageAndSuppressOutput(t *testing.T) {
	t.Parallel()

	agg := Aggregate([]ExecutionResult{
		ok(&HookOutput{}),
		ok(&HookOutput{SystemMessage: "first", SuppressOutput: true}),
		ok(&HookOutput{SystemMessage: "second"}),
	})

	require.NotNil(t, agg.FinalOutput)
	assert.Equal(t, "first", agg.FinalOutput.SystemMessage)
	assert.True(t, agg.FinalOutput.SuppressOutput)
	assert.Len(t, agg.AllOutputs, 3)
}

func TestAggregate_IsDeterministic(t *testing.T) {
	t.Parallel()

	results := []ExecutionResult{
		ok(&HookOutput{Decision: DecisionApprove, HookSpecificOutput: &HookSpecificOutput{AdditionalContext: "a"}}),
		failed("x", errors.New("boom")),
		ok(&HookOutput{Continue: boolPtr(false), HookSpecificOutput: &HookSpecificOutput{AdditionalContext: "b"}}),
	}

	assert.Equal(t, Aggregate(results), Aggregate(results))
}

func TestFinalOutput_NilIsNotBlocked(t *testing.T) {
	t.Parallel()

	var f *FinalOutput
	assert.False(t, f.Blocked())
}

func TestHookOutput_Blocks(t *testing.T) {
	t.Parallel()

	var nilOut *HookOutput
	assert.False(t, nilOut.Blocks())
	assert.False(t, (&HookOutput{}).Blocks())
	assert.False(t, (&HookOutput{Continue: boolPtr(true), Decision: DecisionApprove}).Blocks())
	assert.True(t, (&HookOutput{Continue: boolPtr(false)}).Blocks())
	assert.True(t, (&HookOutput{Decision: DecisionBlock}).Blocks())
	assert.True(t, (&HookOutput{HookSpecificOutput: &HookSpecificOutput{PermissionDecision: PermissionDeny}}).Blocks())
	assert.True(t, (&HookOutput{
		Decision:           DecisionBlock,
		HookSpecificOutput: &HookSpecificOutput{PermissionDecision: PermissionAllow},
	}).Blocks())
}

func TestHookError_Error(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "boom", HookError{Err: errors.New("boom")}.Error())
	assert.Equal(t, `hook "lint": boom`, HookError{Command: shell("lint"), Err: errors.New("boom")}.Error())
}
