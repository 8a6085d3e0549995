// ABOUTME: Unix-specific process management for hook commands
// ABOUTME: Runs hooks via sh -c in their own process group; SIGKILLs the group on timeout

//go:build unix

package hooks

import (
	"context"
	"os/exec"
	"syscall"
)

// shellCommand builds the command that runs a hook command line.
func shellCommand(ctx context.Context, command string) *exec.Cmd {
	return exec.CommandContext(ctx, "sh", "-c", command)
}

// setProcGroup configures the command to run in its own process group.
func setProcGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcGroup kills the entire process group of the command, so shell
// pipelines and backgrounded children die with the hook.
func killProcGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
		return cmd.Process.Kill()
	}
	return nil
}
