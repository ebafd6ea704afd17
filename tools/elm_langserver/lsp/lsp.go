// Package lsp implements the Language Server Protocol for Elm autocompletion.
package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"
	"gopkg.in/op/go-logging.v1"

	"github.com/please-build/elm-complete/src/core"
	"github.com/please-build/elm-complete/src/oracle"
	"github.com/please-build/elm-complete/src/suggest"
)

var log = logging.MustGetLogger("lsp")

// codeRequestCancelled is the LSP error code for a request the client or a newer request cancelled.
const codeRequestCancelled int64 = -32800

// A Handler is a handler suitable for use with jsonrpc2.
type Handler struct {
	Conn     Conn
	provider *suggest.Provider
	docs     map[lsp.DocumentURI]*doc
	latest   map[lsp.DocumentURI]*inflight // the most recent completion per document
	requests map[jsonrpc2.ID]*inflight
	mutex    sync.Mutex // guards docs, latest and requests
}

// A Conn is a minimal set of the jsonrpc2.Conn that we need.
type Conn interface {
	io.Closer
	// Notify sends an asynchronous notification.
	Notify(ctx context.Context, method string, params interface{}, opts ...jsonrpc2.CallOption) error
}

// NewHandler returns a new Handler. Each Handler is one editor session, so the
// "suggestions unavailable" warning is shown at most once per Handler.
func NewHandler(config *core.Configuration, resolver *core.Resolver, invoker *oracle.Invoker) *Handler {
	h := &Handler{
		docs:     map[lsp.DocumentURI]*doc{},
		latest:   map[lsp.DocumentURI]*inflight{},
		requests: map[jsonrpc2.ID]*inflight{},
	}
	h.provider = suggest.NewProvider(config, resolver, invoker, suggest.NewOnceNotifier(suggest.NotifierFunc(h.showMessage)))
	return h
}

// Handle implements the jsonrpc2.Handler interface
func (h *Handler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	if req.Method != "textDocument/completion" || req.Notif {
		resp, err := h.handle(ctx, req.Method, req.Params)
		h.respond(ctx, conn, req, resp, err)
		return
	}
	// Completions are registered here on the read loop, in the order the client sent them,
	// and then run off it so slow oracle runs don't hold up everything else.
	reqCtx, done := h.track(ctx, req.ID, completionURI(req.Params))
	go func() {
		defer done()
		resp, err := h.handle(reqCtx, req.Method, req.Params)
		h.respond(ctx, conn, req, resp, err)
	}()
}

func (h *Handler) respond(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request, resp interface{}, err error) {
	if req.Notif {
		if err != nil {
			log.Warning("Error handling %s notification: %s", req.Method, err)
		}
		return
	}
	if err != nil {
		rpcErr, ok := err.(*jsonrpc2.Error)
		if !ok {
			rpcErr = &jsonrpc2.Error{Code: jsonrpc2.CodeInternalError, Message: err.Error()}
		}
		if err := conn.ReplyWithError(ctx, req.ID, rpcErr); err != nil {
			log.Error("Failed to send error response: %s", err)
		}
	} else if err := conn.Reply(ctx, req.ID, resp); err != nil {
		log.Error("Failed to send response: %s", err)
	}
}

// handle is the slightly higher-level handler that deals with individual methods.
func (h *Handler) handle(ctx context.Context, method string, params *json.RawMessage) (res interface{}, err error) {
	start := time.Now()
	log.Debug("Received %s message", method)
	defer func() {
		if r := recover(); r != nil {
			log.Error("Panic in handler for %s: %s", method, r)
			log.Debug("%s\n%v", r, string(debug.Stack()))
			err = &jsonrpc2.Error{
				Code:    jsonrpc2.CodeInternalError,
				Message: fmt.Sprintf("%s", r),
			}
		} else {
			log.Debug("Handled %s message in %s", method, time.Since(start))
		}
	}()
	if params == nil {
		empty := json.RawMessage("null")
		params = &empty
	}

	switch method {
	case "initialize":
		initializeParams := &lsp.InitializeParams{}
		if err := json.Unmarshal(*params, initializeParams); err != nil {
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams}
		}
		return h.initialize(initializeParams)
	case "initialized":
		return nil, nil
	case "shutdown":
		h.cancelAll()
		return nil, nil
	case "exit":
		// exit is a request to terminate the process. We do this preferably by shutting
		// down the RPC connection but if we can't we just die.
		if h.Conn != nil {
			if err := h.Conn.Close(); err != nil {
				log.Fatalf("Failed to close connection: %s", err)
			}
		} else {
			log.Fatalf("No active connection to shut down")
		}
		return nil, nil
	case "$/cancelRequest":
		cancel := &cancelParams{}
		if err := json.Unmarshal(*params, cancel); err != nil {
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams}
		}
		h.cancel(cancel.ID)
		return nil, nil
	case "textDocument/didOpen":
		didOpenParams := &lsp.DidOpenTextDocumentParams{}
		if err := json.Unmarshal(*params, didOpenParams); err != nil {
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams}
		}
		return nil, h.didOpen(didOpenParams)
	case "textDocument/didChange":
		didChangeParams := &lsp.DidChangeTextDocumentParams{}
		if err := json.Unmarshal(*params, didChangeParams); err != nil {
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams}
		}
		return nil, h.didChange(didChangeParams)
	case "textDocument/didSave":
		return nil, nil
	case "textDocument/didClose":
		didCloseParams := &lsp.DidCloseTextDocumentParams{}
		if err := json.Unmarshal(*params, didCloseParams); err != nil {
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams}
		}
		return nil, h.didClose(didCloseParams)
	case "textDocument/completion":
		completionParams := &lsp.CompletionParams{}
		if err := json.Unmarshal(*params, completionParams); err != nil {
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams}
		}
		return h.completion(ctx, completionParams)
	case "workspace/didChangeConfiguration":
		configParams := &lsp.DidChangeConfigurationParams{}
		if err := json.Unmarshal(*params, configParams); err != nil {
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams}
		}
		return nil, h.didChangeConfiguration(configParams)
	default:
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound}
	}
}

func (h *Handler) initialize(params *lsp.InitializeParams) (*lsp.InitializeResult, error) {
	if params.RootURI != "" {
		root, err := fromURI(params.RootURI)
		if err != nil {
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
		}
		log.Info("Initialising for workspace %s", root)
	}
	if params.InitializationOptions != nil {
		if err := h.applySettings(params.InitializationOptions); err != nil {
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
		}
	}
	return &lsp.InitializeResult{
		Capabilities: lsp.ServerCapabilities{
			TextDocumentSync: &lsp.TextDocumentSyncOptionsOrKind{
				Options: &lsp.TextDocumentSyncOptions{
					OpenClose: true,
					Change:    lsp.TDSKFull,
				},
			},
			CompletionProvider: &lsp.CompletionOptions{
				TriggerCharacters: []string{"."},
			},
		},
	}, nil
}

// showMessage pops up a warning in the editor.
func (h *Handler) showMessage(title, detail string) {
	if h.Conn == nil {
		log.Warning("%s. %s", title, detail)
		return
	}
	if err := h.Conn.Notify(context.Background(), "window/showMessage", &lsp.ShowMessageParams{
		Type:    lsp.MTWarning,
		Message: title + "\n" + detail,
	}); err != nil {
		log.Error("Failed to send warning to the editor: %s", err)
	}
}

// fromURI converts a DocumentURI to a path.
func fromURI(uri lsp.DocumentURI) (string, error) {
	u, err := url.Parse(string(uri))
	if err != nil {
		return "", err
	} else if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported uri %s", uri)
	}
	p := u.Path
	// file:///C:/Users/... has a path of /C:/Users/...
	if runtime.GOOS == "windows" && len(p) > 2 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	return filepath.FromSlash(p), nil
}

// toURI converts a path to a DocumentURI.
func toURI(path string) lsp.DocumentURI {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return lsp.DocumentURI((&url.URL{Scheme: "file", Path: p}).String())
}

// A Logger provides an interface to our logger.
type Logger struct{}

// Printf implements the jsonrpc2.Logger interface.
func (l Logger) Printf(tmpl string, args ...interface{}) {
	log.Info(tmpl, args...)
}
