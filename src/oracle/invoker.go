package oracle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alessio/shellescape"
	"github.com/dustin/go-humanize"
	"github.com/google/shlex"
	"github.com/joho/godotenv"
	"gopkg.in/op/go-logging.v1"

	"github.com/please-build/elm-complete/src/cli"
	"github.com/please-build/elm-complete/src/core"
	"github.com/please-build/elm-complete/src/fs"
	"github.com/please-build/elm-complete/src/metrics"
	"github.com/please-build/elm-complete/src/process"
)

var log = logging.MustGetLogger("oracle")

// An Invoker runs the oracle for a file and prefix and returns the first line it prints.
type Invoker struct {
	runner     Runner
	wrapper    []string
	env        []string
	timeout    time.Duration
	mutex      sync.RWMutex
	executable string
}

// NewInvoker creates a new Invoker from the given configuration.
// It fails if the wrapper command can't be split or the env file can't be read.
func NewInvoker(config *core.Configuration, runner Runner) (*Invoker, error) {
	wrapper, err := shlex.Split(config.Oracle.Wrapper)
	if err != nil {
		return nil, fmt.Errorf("invalid oracle.wrapper %q: %w", config.Oracle.Wrapper, err)
	}
	env := os.Environ()
	if config.Oracle.EnvFile != "" {
		extra, err := godotenv.Read(fs.ExpandHomePath(config.Oracle.EnvFile))
		if err != nil {
			return nil, fmt.Errorf("reading oracle.envfile: %w", err)
		}
		env = append(env, envList(extra)...)
	}
	return &Invoker{
		runner:     runner,
		wrapper:    wrapper,
		env:        env,
		timeout:    time.Duration(config.Oracle.Timeout),
		executable: config.Oracle.Path,
	}, nil
}

// envList converts a map of variables into the KEY=value form, sorted so it's deterministic.
func envList(vars map[string]string) []string {
	ret := make([]string, 0, len(vars))
	for k, v := range vars {
		ret = append(ret, k+"="+v)
	}
	sort.Strings(ret)
	return ret
}

// SetExecutable changes the oracle executable used by subsequent invocations.
func (i *Invoker) SetExecutable(path string) {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	i.executable = path
}

// Executable returns the oracle executable currently in use.
func (i *Invoker) Executable() string {
	i.mutex.RLock()
	defer i.mutex.RUnlock()
	return i.executable
}

// Invocation returns the invocation Run would use.
func (i *Invoker) Invocation(dir, filename, prefix string) Invocation {
	inv := Invocation{
		Executable: i.Executable(),
		Args:       []string{filename, prefix},
		Dir:        dir,
		Env:        i.env,
	}
	if len(i.wrapper) > 0 {
		args := make([]string, 0, len(i.wrapper)+len(inv.Args))
		args = append(args, i.wrapper[1:]...)
		args = append(args, inv.Executable)
		inv.Args = append(args, inv.Args...)
		inv.Executable = i.wrapper[0]
	}
	return inv
}

// Run runs the oracle from the given project root for the given file and prefix.
// It returns the first line of its output, or a *SpawnError or *RuntimeError if it couldn't
// produce one. If ctx is cancelled the process is killed and the context's error is returned.
func (i *Invoker) Run(ctx context.Context, dir, filename, prefix string) (string, error) {
	inv := i.Invocation(dir, filename, prefix)
	command := i.runner.Command(inv)
	log.Debug("Running %s in %s", shellescape.QuoteCommand(command), dir)
	runCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()
	start := time.Now()
	out, err := i.runner.Run(runCtx, inv)
	duration := time.Since(start)
	if err != nil {
		var startErr *process.StartError
		if errors.As(err, &startErr) {
			metrics.RecordOracleRun(metrics.OutcomeError, duration)
			return "", &SpawnError{Command: command, Err: startErr.Err}
		} else if ctx.Err() != nil {
			metrics.RecordOracleRun(metrics.OutcomeCancelled, duration)
			return "", ctx.Err()
		} else if errors.Is(err, context.DeadlineExceeded) {
			metrics.RecordOracleRun(metrics.OutcomeError, duration)
			return "", &RuntimeError{Command: command, Stderr: stderr(out), Err: fmt.Errorf("timed out after %s: %w", i.timeout, err)}
		} else if out == nil || out.Stdout.Size() == 0 {
			metrics.RecordOracleRun(metrics.OutcomeError, duration)
			return "", &RuntimeError{Command: command, Stderr: stderr(out), Err: err}
		}
		log.Warning("elm-oracle exited unsuccessfully (%s) but produced output, using it anyway", err)
	}
	metrics.RecordOracleRun(metrics.OutcomeOK, duration)
	lines := out.Stdout.Lines()
	log.Debug("elm-oracle wrote %s in %s", humanize.Bytes(uint64(out.Stdout.Size())), duration)
	if len(lines) > 1 {
		log.Debug("Ignoring %d further lines of elm-oracle output", len(lines)-1)
	}
	return out.Stdout.First(), nil
}

func stderr(out *process.Output) string {
	if out == nil {
		return ""
	}
	return strings.TrimSpace(cli.StripAnsi.ReplaceAllString(string(out.Stderr), ""))
}
