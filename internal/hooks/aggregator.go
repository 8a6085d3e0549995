// ABOUTME: Result aggregator: merges per-hook results into one AggregatedResult
// ABOUTME: Block is sticky, deny wins over allow, context concatenates, input rewrite is last-wins

package hooks

import "strings"

// Aggregate folds execution results, in order, into one result.
//
// Precedence:
//   - Continue is false if any output set continue:false.
//   - Permission is deny if any output asked for deny, else allow if any
//     asked for allow, else empty.
//   - AdditionalContext joins every non-empty value with newlines.
//   - UpdatedInput and UpdatedPermissions take the last non-nil value.
//   - SystemMessage and StopReason take the first non-empty value.
func Aggregate(results []ExecutionResult) AggregatedResult {
	agg := AggregatedResult{
		Success: true,
		Results: results,
	}

	for _, res := range results {
		agg.TotalDuration += res.Duration
		if !res.Success {
			agg.Success = false
			agg.Errors = append(agg.Errors, HookError{Command: res.Command, Err: res.Err})
		}
		if res.Output != nil {
			agg.AllOutputs = append(agg.AllOutputs, *res.Output)
		}
	}

	if len(agg.AllOutputs) > 0 {
		agg.FinalOutput = mergeOutputs(agg.AllOutputs)
	}
	return agg
}

func mergeOutputs(outputs []HookOutput) *FinalOutput {
	final := &FinalOutput{Continue: true}

	var contexts []string
	var denyReason, allowReason string
	var denied, allowed bool

	for i := range outputs {
		out := &outputs[i]

		if out.Continue != nil && !*out.Continue {
			final.Continue = false
		}
		if final.StopReason == "" {
			final.StopReason = out.StopReason
		}
		if final.SystemMessage == "" {
			final.SystemMessage = out.SystemMessage
		}
		if out.SuppressOutput {
			final.SuppressOutput = true
		}

		switch decision, reason := out.permissionRequest(); decision {
		case PermissionDeny:
			if !denied || denyReason == "" {
				denyReason = reason
			}
			denied = true
		case PermissionAllow:
			if !allowed || allowReason == "" {
				allowReason = reason
			}
			allowed = true
		}

		if updated := out.updatedInput(); updated != nil {
			final.UpdatedInput = updated
		}

		if hs := out.HookSpecificOutput; hs != nil {
			if hs.AdditionalContext != "" {
				contexts = append(contexts, hs.AdditionalContext)
			}
			if hs.UpdatedPermissions != nil {
				final.UpdatedPermissions = hs.UpdatedPermissions
			}
		}
	}

	switch {
	case denied:
		final.PermissionDecision = PermissionDeny
		final.PermissionDecisionReason = denyReason
	case allowed:
		final.PermissionDecision = PermissionAllow
		final.PermissionDecisionReason = allowReason
	}
	final.AdditionalContext = strings.Join(contexts, "\n")

	return final
}
