// Contains various utility functions related to logging.

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	clilogging "github.com/peterebden/go-cli-init/v5/logging"
	"github.com/peterebden/go-deferred-regex"
	"golang.org/x/term"
	"gopkg.in/op/go-logging.v1"

	logger "github.com/please-build/elm-complete/src/cli/logging"
)

var log = logger.Log

// StdErrIsATerminal is true if the process' stderr is an interactive TTY.
var StdErrIsATerminal = IsATerminal(os.Stderr)

// StripAnsi is a regex to find & replace ANSI console escape sequences.
var StripAnsi = deferredregex.DeferredRegex{Re: "\x1b[^m]+m"}

// A Verbosity is used as a flag to define logging verbosity.
type Verbosity = clilogging.Verbosity

var (
	backendMutex sync.Mutex
	logLevel     = logging.WARNING
	fileLogLevel = logging.WARNING
	fileBackend  logging.Backend
	logFile      *os.File
)

// InitLogging initialises logging to stderr at the given verbosity.
// stdout is left alone since the language server speaks its protocol over it.
func InitLogging(verbosity Verbosity) {
	backendMutex.Lock()
	defer backendMutex.Unlock()
	logLevel = logging.Level(verbosity)
	setLogBackend()
}

// InitFileLogging initialises an optional logging backend to a file.
// The file is truncated on open.
func InitFileLogging(filename string, verbosity Verbosity) error {
	if err := os.MkdirAll(filepath.Dir(filename), os.ModeDir|0775); err != nil {
		return fmt.Errorf("creating log file directory: %w", err)
	}
	f, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	backendMutex.Lock()
	defer backendMutex.Unlock()
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	fileLogLevel = logging.Level(verbosity)
	fileBackend = logging.NewBackendFormatter(logging.NewLogBackend(f, "", 0), logFormatter(false))
	setLogBackend()
	AtExit(closeFileLogging)
	return nil
}

func closeFileLogging() {
	backendMutex.Lock()
	defer backendMutex.Unlock()
	if logFile == nil {
		return
	}
	fileBackend = nil
	setLogBackend()
	logFile.Close()
	logFile = nil
}

func logFormatter(coloured bool) logging.Formatter {
	formatStr := "%{time:15:04:05.000} %{level:7s}: %{message}"
	if coloured {
		formatStr = "%{color}" + formatStr + "%{color:reset}"
	}
	return logging.MustStringFormatter(formatStr)
}

// setLogBackend installs the backends as the default for every logger in the process,
// so package-level loggers created with MustGetLogger pick them up too.
func setLogBackend() {
	stderr := logging.AddModuleLevel(logging.NewBackendFormatter(logging.NewLogBackend(os.Stderr, "", 0), logFormatter(StdErrIsATerminal)))
	stderr.SetLevel(logLevel, "")
	if fileBackend == nil {
		logging.SetBackend(stderr)
		return
	}
	file := logging.AddModuleLevel(fileBackend)
	file.SetLevel(fileLogLevel, "")
	logging.SetBackend(stderr, file)
}

// IsATerminal returns true if the given file is an interactive TTY.
func IsATerminal(file *os.File) bool {
	return term.IsTerminal(int(file.Fd()))
}
