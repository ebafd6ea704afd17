package process

import (
	"os/exec"
	"syscall"
)

// ExecCommand creates an external command in its own process group.
// We set Pdeathsig to try to make sure commands don't outlive us if we die.
// N.B. This does not start the command; Run is the higher-level interface for that.
func (e *Executor) ExecCommand(command string, args ...string) *exec.Cmd {
	cmd := exec.Command(command, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Pdeathsig: syscall.SIGHUP,
		Setpgid:   true,
	}
	return cmd
}
