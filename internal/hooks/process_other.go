// ABOUTME: Non-unix process management for hook commands
// ABOUTME: Runs hooks via cmd /C and kills only the direct child on timeout

//go:build !unix

package hooks

import (
	"context"
	"os/exec"
)

func shellCommand(ctx context.Context, command string) *exec.Cmd {
	return exec.CommandContext(ctx, "cmd", "/C", command)
}

func setProcGroup(*exec.Cmd) {}

func killProcGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
