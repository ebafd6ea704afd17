//go:build !windows

package process

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	out, err := New().Run(context.Background(), "", nil, []string{"echo", "hello"})
	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, out.Stdout.Lines())
	assert.Equal(t, 0, len(out.Stderr))
}

func TestRunMultipleLines(t *testing.T) {
	out, err := New().Run(context.Background(), "", nil, []string{"sh", "-c", "echo first; echo second 1>&2; echo third"})
	require.NoError(t, err)
	assert.Equal(t, "first", out.Stdout.First())
	assert.Equal(t, []string{"first", "third"}, out.Stdout.Lines())
	assert.Equal(t, "second\n", string(out.Stderr))
}

func TestRunDirAndEnv(t *testing.T) {
	dir := t.TempDir()
	out, err := New().Run(context.Background(), dir, []string{"GREETING=hi"}, []string{"sh", "-c", `echo "$GREETING"; pwd -P`})
	require.NoError(t, err)
	expected, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"hi", expected}, out.Stdout.Lines())
}

func TestRunFailure(t *testing.T) {
	out, err := New().Run(context.Background(), "", nil, []string{"sh", "-c", "echo partial; exit 3"})
	require.Error(t, err)
	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.ExitCode())
	assert.Equal(t, "partial", out.Stdout.First())
}

func TestRunStartError(t *testing.T) {
	out, err := New().Run(context.Background(), "", nil, []string{filepath.Join(t.TempDir(), "does-not-exist")})
	assert.Nil(t, out)
	var startErr *StartError
	require.True(t, errors.As(err, &startErr))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRunDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	e := New()
	_, err := e.Run(ctx, "", nil, []string{"sleep", "10"})
	assert.Equal(t, context.DeadlineExceeded, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, 0, live(e))
}

func TestRunCancelKillsChildren(t *testing.T) {
	pidfile := filepath.Join(t.TempDir(), "child.pid")
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		// Wait for the grandchild to exist before cancelling.
		for i := 0; i < 100; i++ {
			if _, err := os.Stat(pidfile); err == nil {
				break
			}
			time.Sleep(10 * time.Millisecond)
		}
		cancel()
	}()
	_, err := New().Run(ctx, "", nil, []string{"sh", "-c", `sleep 10 & echo $! > "$0"; wait`, pidfile})
	assert.Equal(t, context.Canceled, err)
}

func TestKillAll(t *testing.T) {
	e := New()
	done := make(chan error, 1)
	go func() {
		_, err := e.Run(context.Background(), "", nil, []string{"sleep", "10"})
		done <- err
	}()
	for i := 0; i < 100 && live(e) == 0; i++ {
		time.Sleep(10 * time.Millisecond)
	}
	require.Equal(t, 1, live(e))
	e.killAll()
	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("process was not killed")
	}
	assert.Equal(t, 0, live(e))
}

// live returns the number of processes the executor is tracking.
func live(e *Executor) int {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return len(e.processes)
}
