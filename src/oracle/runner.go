package oracle

import (
	"context"
	"strings"

	"github.com/please-build/elm-complete/src/core"
	"github.com/please-build/elm-complete/src/process"
)

// An Invocation describes a single run of the oracle.
type Invocation struct {
	Executable string
	Args       []string
	Dir        string
	Env        []string
}

// Argv returns the executable followed by its arguments.
func (inv Invocation) Argv() []string {
	return append([]string{inv.Executable}, inv.Args...)
}

// A Runner knows how to start the oracle on a particular kind of platform.
type Runner interface {
	// Run runs the invocation to completion and returns what it printed.
	Run(ctx context.Context, inv Invocation) (*process.Output, error)
	// Command returns the full command line that Run would execute.
	Command(inv Invocation) []string
}

// NewRunner returns the Runner for the given OS, as in runtime.GOOS, and shell mode.
// Windows can't execute the oracle's node shim directly so it goes through the command interpreter.
func NewRunner(executor *process.Executor, goos, shellMode string, getenv func(string) string) Runner {
	if shellMode == core.ShellAlways || (shellMode != core.ShellNever && goos == "windows") {
		return &shellRunner{
			executor:  executor,
			Shell:     ComSpec(getenv),
			ShellArgs: []string{"/c"},
		}
	}
	return &directRunner{executor: executor}
}

// directRunner spawns the oracle executable itself.
type directRunner struct {
	executor *process.Executor
}

func (r *directRunner) Command(inv Invocation) []string {
	return inv.Argv()
}

func (r *directRunner) Run(ctx context.Context, inv Invocation) (*process.Output, error) {
	return r.executor.Run(ctx, inv.Dir, inv.Env, r.Command(inv))
}

// shellRunner spawns a command interpreter which then runs the oracle.
type shellRunner struct {
	executor  *process.Executor
	Shell     string
	ShellArgs []string
}

func (r *shellRunner) Command(inv Invocation) []string {
	argv := make([]string, 0, 1+len(r.ShellArgs)+1+len(inv.Args))
	argv = append(argv, r.Shell)
	argv = append(argv, r.ShellArgs...)
	return append(argv, inv.Argv()...)
}

func (r *shellRunner) Run(ctx context.Context, inv Invocation) (*process.Output, error) {
	return r.executor.Run(ctx, inv.Dir, inv.Env, r.Command(inv))
}

// ComSpec returns the command interpreter to use on Windows: %ComSpec% if it's set,
// otherwise cmd.exe under %SystemRoot%, otherwise plain cmd.exe from the path.
func ComSpec(getenv func(string) string) string {
	if comspec := getenv("ComSpec"); comspec != "" {
		return comspec
	} else if root := getenv("SystemRoot"); root != "" {
		return strings.TrimRight(root, `\`) + `\System32\cmd.exe`
	}
	return "cmd.exe"
}
