// Package cli contains helper functions related to flag parsing and logging.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	cliflags "github.com/peterebden/go-cli-init/v5/flags"
	"github.com/thought-machine/go-flags"
)

// maxCommandSuggestionDistance is how far off a mistyped command can be before we stop guessing.
const maxCommandSuggestionDistance = 3

// A Duration is used for flags and config fields that represent a time duration; it's just a
// wrapper around time.Duration that implements flags.Unmarshaler and encoding.TextUnmarshaler.
type Duration = cliflags.Duration

// ParseFlags parses the app's flags and returns the parser, any extra arguments, and any error encountered.
// args should include the program name as its first element, as os.Args does.
func ParseFlags(appname string, data interface{}, args []string) (*flags.Parser, []string, error) {
	parser := flags.NewNamedParser(filepath.Base(args[0]), flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.AddGroup(appname+" options", "", data); err != nil {
		return parser, nil, err
	}
	extraArgs, err := parser.ParseArgs(args[1:])
	return parser, extraArgs, err
}

// ParseFlagsOrDie parses the app's flags from os.Args and dies if unsuccessful.
// It returns the active command if there is one.
func ParseFlagsOrDie(appname, version string, data interface{}) string {
	return ParseFlagsFromArgsOrDie(appname, version, data, os.Args)
}

// ParseFlagsFromArgsOrDie is similar to ParseFlagsOrDie but allows control over the flags passed.
// If data has a boolean Version field and it is set, the version is printed and the process exits.
func ParseFlagsFromArgsOrDie(appname, version string, data interface{}, args []string) string {
	parser, extraArgs, err := ParseFlags(appname, data, args)
	if versionRequested(data) {
		fmt.Printf("%s version %s\n", appname, version)
		os.Exit(0)
	}
	if err != nil {
		if ferr, ok := err.(*flags.Error); ok && ferr.Type == flags.ErrHelp {
			fmt.Println(err)
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "%s%s\n", err, commandSuggestion(parser, args))
		os.Exit(1)
	} else if len(extraArgs) > 0 {
		fmt.Fprintf(os.Stderr, "Unknown option %s\n", extraArgs)
		parser.WriteHelp(os.Stderr)
		os.Exit(1)
	}
	return ActiveCommand(parser.Command)
}

// ActiveCommand returns the name of the currently active subcommand, or the empty string.
func ActiveCommand(command *flags.Command) string {
	if command.Active == nil {
		return ""
	}
	return command.Active.Name
}

// versionRequested returns true if data is a pointer to a struct with a true Version field.
func versionRequested(data interface{}) bool {
	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return false
	}
	f := v.Elem().FieldByName("Version")
	return f.IsValid() && f.Kind() == reflect.Bool && f.Bool()
}

// commandSuggestion suggests commands that look like the first positional argument that
// isn't a known command but is close to one.
func commandSuggestion(parser *flags.Parser, args []string) string {
	cmds := parser.Commands()
	if len(cmds) == 0 {
		return ""
	}
	names := make([]string, len(cmds))
	known := make(map[string]bool, len(cmds))
	for i, cmd := range cmds {
		names[i] = cmd.Name
		known[cmd.Name] = true
	}
	for _, arg := range args[1:] {
		if strings.HasPrefix(arg, "-") || known[arg] {
			continue
		}
		if msg := PrettyPrintSuggestion(arg, names, maxCommandSuggestionDistance); msg != "" {
			return msg
		}
	}
	return ""
}

// A Filepath implements completion for file paths.
type Filepath string

// Complete implements the flags.Completer interface.
func (f *Filepath) Complete(match string) []flags.Completion {
	matches, _ := filepath.Glob(match + "*")
	// Exactly one directory match completes into its contents instead.
	if len(matches) == 1 {
		if info, err := os.Stat(matches[0]); err == nil && info.IsDir() {
			matches, _ = filepath.Glob(matches[0] + "/*")
		}
	}
	ret := make([]flags.Completion, len(matches))
	for i, match := range matches {
		ret[i].Item = match
	}
	return ret
}
