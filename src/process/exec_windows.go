package process

import (
	"os/exec"
	"syscall"

	psprocess "github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/windows"
)

// ExecCommand creates an external command in a new process group.
// N.B. This does not start the command; Run is the higher-level interface for that.
func (e *Executor) ExecCommand(command string, args ...string) *exec.Cmd {
	cmd := exec.Command(command, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: windows.CREATE_NEW_PROCESS_GROUP,
	}
	return cmd
}

// terminate kills the whole process tree, since the oracle usually runs under cmd.exe.
func terminate(cmd *exec.Cmd) error {
	return killTree(int32(cmd.Process.Pid))
}

// forceKill kills the immediate process.
func forceKill(cmd *exec.Cmd) error {
	return cmd.Process.Kill()
}

func killTree(pid int32) error {
	p, err := psprocess.NewProcess(pid)
	if err != nil {
		return err
	}
	children, _ := p.Children()
	for _, child := range children {
		if err := killTree(child.Pid); err != nil {
			log.Debug("Failed to kill child process %d: %s", child.Pid, err)
		}
	}
	return p.Kill()
}
