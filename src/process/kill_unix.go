//go:build !windows

package process

import (
	"os/exec"

	"golang.org/x/sys/unix"
)

// terminate sends SIGTERM to the command's process group, which ExecCommand always sets up.
func terminate(cmd *exec.Cmd) error {
	return unix.Kill(-cmd.Process.Pid, unix.SIGTERM)
}

// forceKill sends SIGKILL to the command's process group.
func forceKill(cmd *exec.Cmd) error {
	return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
}
