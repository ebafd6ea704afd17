package cli

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var (
	atexitMutex    sync.Mutex
	atexitHandlers []func()
	atexitOnce     sync.Once
)

func init() {
	go handleSignals()
}

// handleSignals waits until it receives a terminating signal from the OS, runs
// everything registered with AtExit, and then exits the process.
func handleSignals() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)
	sig := <-ch
	log.Info("Received signal %s", sig)
	// A second signal terminates the process regardless
	done := make(chan struct{})
	go func() {
		RunAtExitHandlers()
		close(done)
	}()
	select {
	case <-done:
		log.Info("All exit handlers run, shutting down")
		exit(sig)
	case sig := <-ch:
		log.Warning("Received second signal %s, aborting", sig)
		exit(sig)
	}
}

// AtExit registers a function to be run when the process is killed by a signal or
// when RunAtExitHandlers is called on an orderly shutdown.
// Handlers run in reverse order of registration.
func AtExit(f func()) {
	atexitMutex.Lock()
	defer atexitMutex.Unlock()
	atexitHandlers = append(atexitHandlers, f)
}

// RunAtExitHandlers runs all registered exit handlers. Only the first call has any effect.
func RunAtExitHandlers() {
	atexitOnce.Do(func() {
		atexitMutex.Lock()
		handlers := atexitHandlers
		atexitMutex.Unlock()
		for i := len(handlers) - 1; i >= 0; i-- {
			handlers[i]()
		}
	})
}

// exit kills the process with an exit code suitable for the given signal.
func exit(sig os.Signal) {
	if s, ok := sig.(syscall.Signal); ok {
		os.Exit(128 + int(s))
	}
	os.Exit(1)
}
