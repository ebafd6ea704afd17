// Package core contains the configuration and project discovery shared by every
// surface of the completion server.
package core

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/please-build/gcfg"
	"gopkg.in/op/go-logging.v1"

	"github.com/please-build/elm-complete/src/cli"
	"github.com/please-build/elm-complete/src/fs"
)

var log = logging.MustGetLogger("core")

// MachineConfigFileName is the machine-level config file, read before the user's.
const MachineConfigFileName = "/etc/elmcompleteconfig"

// UserConfigFileName is the per-user config file. The ~ is expanded when it's read.
const UserConfigFileName = "~/.elmcompleteconfig"

// DefaultProjectMarker identifies the root of an Elm project whose dependencies have been installed.
const DefaultProjectMarker = "elm-stuff/exact-dependencies.json"

// Shell modes for running the oracle.
const (
	ShellAuto   = "auto"
	ShellAlways = "always"
	ShellNever  = "never"
)

// A Configuration holds everything read from config files and flags.
type Configuration struct {
	ElmComplete struct {
		Version cli.Version `help:"Version of elm_langserver this configuration needs. Can be prefixed with >= to accept newer ones."`
	}
	Oracle struct {
		Path    string       `help:"Path to the elm-oracle executable. Relative paths are resolved against the project root."`
		Timeout cli.Duration `help:"Maximum time a single oracle invocation may run for before it is killed."`
		Wrapper string       `help:"Command to prefix the oracle invocation with, e.g. 'nice -n 10'."`
		EnvFile string       `help:"A dotenv file whose variables are added to the oracle's environment."`
		Shell   string       `help:"Whether to run the oracle through the command interpreter: auto, always or never."`
	}
	Autocomplete struct {
		Enabled  bool `help:"Whether to provide suggestions at all."`
		MinChars int  `help:"Minimum length of the typed prefix before the oracle is consulted."`
	}
	Project struct {
		Marker []string `help:"Relative path of a file that marks a project root. Can be repeated."`
	}
	Metrics struct {
		Addr           string       `help:"Address to serve Prometheus metrics on, e.g. 127.0.0.1:9465. Off if empty."`
		PushGatewayURL string       `help:"Pushgateway to push metrics to when a one-shot command finishes."`
		PushTimeout    cli.Duration `help:"Timeout for pushing metrics."`
	}
}

// DefaultConfiguration returns the configuration used when no files override it.
func DefaultConfiguration() *Configuration {
	config := &Configuration{}
	config.Oracle.Path = "node_modules/.bin/elm-oracle"
	config.Oracle.Timeout = cli.Duration(10 * time.Second)
	config.Oracle.Shell = ShellAuto
	config.Autocomplete.Enabled = true
	config.Autocomplete.MinChars = 1
	config.Metrics.PushTimeout = cli.Duration(2 * time.Second)
	return config
}

func readConfigFile(config *Configuration, filename string) error {
	if !fs.FileExists(filename) {
		return nil // It's not an error to not have the file at all.
	}
	log.Debug("Reading config from %s...", filename)
	if err := gcfg.ReadFileInto(config, filename); err != nil {
		return fmt.Errorf("reading config from %s: %w", filename, err)
	}
	return nil
}

// ReadConfigFiles reads config from the given locations, in order.
// Values are filled in by defaults initially and then overridden by each file in turn.
func ReadConfigFiles(filenames []string) (*Configuration, error) {
	config := DefaultConfiguration()
	for _, filename := range filenames {
		if err := readConfigFile(config, fs.ExpandHomePath(filename)); err != nil {
			return config, err
		}
	}
	// Slices add rather than overwrite so their defaults can't be set upfront.
	setDefault(&config.Project.Marker, []string{DefaultProjectMarker})
	return config, config.Validate()
}

// ReadDefaultConfigFiles reads the machine and user config files, then any extra ones given.
func ReadDefaultConfigFiles(extra []string) (*Configuration, error) {
	return ReadConfigFiles(append([]string{MachineConfigFileName, UserConfigFileName}, extra...))
}

func setDefault(conf *[]string, def []string) {
	if len(*conf) == 0 {
		*conf = def
	}
}

// Validate checks the configuration for problems, reporting all of them at once.
func (config *Configuration) Validate() error {
	var errs *multierror.Error
	if config.Oracle.Path == "" {
		errs = multierror.Append(errs, fmt.Errorf("oracle.path must be set"))
	}
	if config.Oracle.Timeout <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("oracle.timeout must be positive, was %s", time.Duration(config.Oracle.Timeout)))
	}
	switch config.Oracle.Shell {
	case ShellAuto, ShellAlways, ShellNever:
	default:
		errs = multierror.Append(errs, fmt.Errorf("unknown oracle.shell %q, must be one of auto, always or never", config.Oracle.Shell))
	}
	if config.Autocomplete.MinChars < 0 {
		errs = multierror.Append(errs, fmt.Errorf("autocomplete.minchars cannot be negative, was %d", config.Autocomplete.MinChars))
	}
	for _, marker := range config.Project.Marker {
		if marker == "" || filepath.IsAbs(marker) {
			errs = multierror.Append(errs, fmt.Errorf("project.marker %q must be a non-empty relative path", marker))
		}
	}
	return errs.ErrorOrNil()
}
