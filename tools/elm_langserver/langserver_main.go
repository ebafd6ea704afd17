package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/coreos/go-semver/semver"
	"github.com/davecgh/go-spew/spew"
	"github.com/sourcegraph/jsonrpc2"
	"gopkg.in/op/go-logging.v1"

	"github.com/please-build/elm-complete/src/cli"
	"github.com/please-build/elm-complete/src/core"
	"github.com/please-build/elm-complete/src/metrics"
	"github.com/please-build/elm-complete/src/oracle"
	"github.com/please-build/elm-complete/src/process"
	"github.com/please-build/elm-complete/src/suggest"
	"github.com/please-build/elm-complete/tools/elm_langserver/lsp"
	"github.com/please-build/elm-complete/tools/elm_langserver/mcp"
)

var log = logging.MustGetLogger("elm_langserver")

// version is set at link time for releases.
var version = "1.0.0"

var opts = struct {
	Usage        string
	Verbosity    cli.Verbosity `short:"v" long:"verbosity" default:"warning" description:"Verbosity of output (higher number = more output)"`
	LogFile      string        `long:"log_file" description:"File to echo full logging output to"`
	LogFileLevel cli.Verbosity `long:"log_file_level" default:"debug" description:"Log level for file output"`
	Config       []string      `short:"c" long:"config" description:"Additional config files to read, after the machine and user ones"`
	Oracle       string        `long:"oracle" description:"Path to elm-oracle, overriding the config file"`
	MetricsAddr  string        `long:"metrics_addr" description:"Address to serve Prometheus metrics on, e.g. localhost:9090"`
	Version      bool          `long:"version" description:"Print the version of the tool"`

	Serve struct {
	} `command:"serve" description:"Runs the language server, speaking LSP on stdin and stdout"`
	MCP struct {
	} `command:"mcp" description:"Runs a Model Context Protocol server on stdin and stdout"`
	Complete struct {
		Args struct {
			File   cli.Filepath `positional-arg-name:"file" required:"true" description:"Elm file being edited"`
			Prefix string       `positional-arg-name:"prefix" required:"true" description:"Partial identifier to complete"`
		} `positional-args:"true"`
	} `command:"complete" description:"Prints suggestions for a single prefix as JSON"`
}{
	Usage: `
elm_langserver provides autocompletion for Elm source files using elm-oracle.

It finds the project a file belongs to, asks elm-oracle about the packages installed in it
and turns the answers into snippet completions. It can be plugged into any editor that speaks
the language server protocol, or queried directly.
`,
}

func main() {
	command := cli.ParseFlagsOrDie("elm_langserver", version, &opts)
	cli.InitLogging(opts.Verbosity)
	if opts.LogFile != "" {
		if err := cli.InitFileLogging(opts.LogFile, opts.LogFileLevel); err != nil {
			log.Fatalf("Failed to open log file: %s", err)
		}
	}
	defer cli.RunAtExitHandlers()

	config, err := core.ReadDefaultConfigFiles(opts.Config)
	if err != nil {
		log.Fatalf("Error reading config file: %s", err)
	}
	if current := *semver.New(version); !config.ElmComplete.Version.Accepts(current) {
		log.Fatalf("This configuration requires elm_langserver %s, but this is version %s", config.ElmComplete.Version, current)
	}
	if opts.Oracle != "" {
		config.Oracle.Path = opts.Oracle
	}
	if opts.MetricsAddr != "" {
		config.Metrics.Addr = opts.MetricsAddr
	}
	if log.IsEnabledFor(logging.DEBUG) {
		log.Debug("Configuration:\n%s", dumpConfig(config))
	}
	initMetrics(config)

	invoker, err := oracle.NewInvoker(config, oracle.NewRunner(process.New(), runtime.GOOS, config.Oracle.Shell, os.Getenv))
	if err != nil {
		log.Fatalf("%s", err)
	}
	resolver := core.NewResolver(config.Project.Marker, nil)

	switch command {
	case "serve":
		serve(lsp.NewHandler(config, resolver, invoker))
	case "mcp":
		provider := suggest.NewProvider(config, resolver, invoker, suggest.LogNotifier)
		if err := mcp.NewServer(version, provider).Serve(); err != nil {
			log.Fatalf("MCP server failed: %s", err)
		}
	case "complete":
		provider := suggest.NewProvider(config, resolver, invoker, suggest.LogNotifier)
		if !complete(provider, string(opts.Complete.Args.File), opts.Complete.Args.Prefix) {
			cli.RunAtExitHandlers()
			os.Exit(1)
		}
	}
}

func serve(handler *lsp.Handler) {
	log.Info("elm_langserver: reading on stdin, writing on stdout")
	var connOpts []jsonrpc2.ConnOpt
	if log.IsEnabledFor(logging.DEBUG) {
		connOpts = append(connOpts, jsonrpc2.LogMessages(lsp.Logger{}))
	}
	conn := jsonrpc2.NewConn(context.Background(), jsonrpc2.NewBufferedStream(stdrwc{}, jsonrpc2.VSCodeObjectCodec{}), handler, connOpts...)
	handler.Conn = conn
	<-conn.DisconnectNotify()
	log.Info("connection closed")
}

// complete prints suggestions for a single prefix. It returns false if that failed.
func complete(provider *suggest.Provider, file, prefix string) bool {
	abs, err := filepath.Abs(file)
	if err != nil {
		log.Error("%s", err)
		return false
	}
	suggestions, err := provider.Run(context.Background(), abs, prefix)
	if err != nil {
		log.Error("%s", err)
		return false
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(suggestions); err != nil {
		log.Error("Failed to write suggestions: %s", err)
		return false
	}
	return true
}

// initMetrics starts serving metrics, and arranges for them to be pushed on the way out if
// there's a gateway configured.
func initMetrics(config *core.Configuration) {
	if config.Metrics.Addr != "" {
		server, err := metrics.Serve(config.Metrics.Addr)
		if err != nil {
			log.Fatalf("Failed to serve metrics: %s", err)
		}
		cli.AtExit(func() {
			if err := server.Close(); err != nil {
				log.Warning("Failed to shut down metrics server: %s", err)
			}
		})
	}
	if url := config.Metrics.PushGatewayURL; url != "" {
		cli.AtExit(func() {
			if err := metrics.Push(url, time.Duration(config.Metrics.PushTimeout)); err != nil {
				log.Warning("Failed to push metrics to %s: %s", url, err)
			}
		})
	}
}

// dumpConfig returns a readable dump of the configuration.
func dumpConfig(config *core.Configuration) string {
	c := spew.NewDefaultConfig()
	c.DisablePointerAddresses = true
	c.DisableCapacities = true
	c.SortKeys = true
	c.Indent = "  "
	return c.Sdump(config)
}

type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (stdrwc) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}
