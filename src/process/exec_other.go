//go:build !linux && !windows

package process

import (
	"os/exec"
	"syscall"
)

// ExecCommand creates an external command in its own process group.
// N.B. This does not start the command; Run is the higher-level interface for that.
func (e *Executor) ExecCommand(command string, args ...string) *exec.Cmd {
	cmd := exec.Command(command, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
	return cmd
}
