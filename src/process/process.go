// Package process implements generic subprocess management functions.
package process

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"gopkg.in/op/go-logging.v1"

	"github.com/please-build/elm-complete/src/cli"
)

var log = logging.MustGetLogger("process")

// How long we give a process to exit after asking it nicely, then after insisting.
const (
	terminateGrace = 30 * time.Millisecond
	killGrace      = time.Second
)

// An Executor handles starting, running and killing a set of subprocesses.
// It registers an exit handler to terminate any that are still running when we are killed.
type Executor struct {
	processes map[*exec.Cmd]*waiter
	mutex     sync.Mutex
}

// New returns a new Executor.
func New() *Executor {
	e := &Executor{
		processes: map[*exec.Cmd]*waiter{},
	}
	cli.AtExit(e.killAll) // Kill any subprocess if we are ourselves killed
	return e
}

// A StartError is returned when a process could not be started at all.
type StartError struct {
	Argv []string
	Err  error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("failed to start %s: %s", strings.Join(e.Argv, " "), e.Err)
}

func (e *StartError) Unwrap() error {
	return e.Err
}

// Output is what a process wrote while it ran.
type Output struct {
	Stdout *LineBuffer
	Stderr []byte
}

// waiter owns the single call to cmd.Wait; anything else wanting to know when the process
// has exited waits on done.
type waiter struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

func (w *waiter) wait() {
	w.err = w.cmd.Wait()
	close(w.done)
}

// exited waits up to the given time for the process to exit and reports whether it did.
func (w *waiter) exited(timeout time.Duration) bool {
	select {
	case <-w.done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Run runs the given command to completion in dir with exactly the given environment.
// If the context expires first the process (and its children) are killed and the context's
// error is returned, alongside whatever output had been produced by then.
// A *StartError is returned if the process couldn't be started; otherwise the Output is
// always non-nil.
func (e *Executor) Run(ctx context.Context, dir string, env []string, argv []string) (*Output, error) {
	// We deliberately don't use CommandContext because it only sends SIGKILL, which
	// the process can't handle, and only to the immediate child.
	cmd := e.ExecCommand(argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.WaitDelay = killGrace
	stdout := &LineBuffer{}
	var stderr safeBuffer
	cmd.Stdout = stdout
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return nil, &StartError{Argv: argv, Err: err}
	}
	w := e.registerProcess(cmd)
	defer e.removeProcess(cmd)
	go w.wait()

	var err error
	select {
	case <-w.done:
		err = w.err
	case <-ctx.Done():
		log.Debug("Killing %s: %s", argv[0], ctx.Err())
		e.killProcess(w)
		err = ctx.Err()
	}
	return &Output{Stdout: stdout, Stderr: stderr.Bytes()}, err
}

func (e *Executor) registerProcess(cmd *exec.Cmd) *waiter {
	w := &waiter{cmd: cmd, done: make(chan struct{})}
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.processes[cmd] = w
	return w
}

func (e *Executor) removeProcess(cmd *exec.Cmd) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	delete(e.processes, cmd)
}

// killProcess kills a process, asking it to terminate first and then forcing it shortly
// after if it hasn't exited.
func (e *Executor) killProcess(w *waiter) {
	if err := terminate(w.cmd); err != nil {
		log.Debug("Failed to terminate process %d: %s", w.cmd.Process.Pid, err)
	}
	if w.exited(terminateGrace) {
		return
	}
	if err := forceKill(w.cmd); err != nil {
		log.Debug("Failed to kill process %d: %s", w.cmd.Process.Pid, err)
	}
	if !w.exited(killGrace) {
		log.Error("Failed to kill oracle process %d", w.cmd.Process.Pid)
	}
}

// killAll kills all subprocesses of this executor.
func (e *Executor) killAll() {
	e.mutex.Lock()
	waiters := make([]*waiter, 0, len(e.processes))
	for _, w := range e.processes {
		waiters = append(waiters, w)
	}
	e.mutex.Unlock()

	var wg sync.WaitGroup
	wg.Add(len(waiters))
	for _, w := range waiters {
		go func(w *waiter) {
			defer wg.Done()
			e.killProcess(w)
		}(w)
	}
	wg.Wait()
}

// safeBuffer is an io.Writer that ensures that only one thread writes to it at a time.
type safeBuffer struct {
	sync.Mutex
	buf bytes.Buffer
}

func (sb *safeBuffer) Write(b []byte) (int, error) {
	sb.Lock()
	defer sb.Unlock()
	return sb.buf.Write(b)
}

func (sb *safeBuffer) Bytes() []byte {
	sb.Lock()
	defer sb.Unlock()
	return append([]byte(nil), sb.buf.Bytes()...)
}
