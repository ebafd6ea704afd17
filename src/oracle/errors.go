package oracle

import (
	"errors"
	"fmt"

	"github.com/alessio/shellescape"
)

// ErrEmptyOutput is returned when the oracle printed nothing useful.
var ErrEmptyOutput = errors.New("no elm-oracle suggestions")

// A SpawnError is returned when the oracle process could not be created at all,
// typically because the configured path is wrong.
type SpawnError struct {
	Command []string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("could not start elm-oracle (%s): %s", shellescape.QuoteCommand(e.Command), e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// A RuntimeError is returned when the oracle started but failed before producing any output.
type RuntimeError struct {
	Command []string
	Stderr  string
	Err     error
}

func (e *RuntimeError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("elm-oracle failed: %s", e.Err)
	}
	return fmt.Sprintf("elm-oracle failed: %s\n%s", e.Err, e.Stderr)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// A MalformedOutputError is returned when the oracle's output isn't a JSON array of symbols.
type MalformedOutputError struct {
	Output string
	Err    error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed elm-oracle output: %s", e.Err)
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Err
}
