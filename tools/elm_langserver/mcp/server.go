// Package mcp exposes Elm completions as a Model Context Protocol tool.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"gopkg.in/op/go-logging.v1"

	"github.com/please-build/elm-complete/src/suggest"
)

var log = logging.MustGetLogger("mcp")

// ServerName is the name we report to MCP clients.
const ServerName = "elm-complete"

// ToolName is the name of the completion tool.
const ToolName = "elm_complete"

// A Server serves completions over MCP.
type Server struct {
	mcp      *server.MCPServer
	provider *suggest.Provider
}

// NewServer creates a new Server. Unlike the language server it reports failures to the caller
// rather than swallowing them.
func NewServer(version string, provider *suggest.Provider) *Server {
	s := &Server{
		mcp:      server.NewMCPServer(ServerName, version, server.WithToolCapabilities(false)),
		provider: provider,
	}
	s.mcp.AddTool(completeTool(), s.handleComplete)
	return s
}

// Serve serves on stdio until the client goes away.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}

func completeTool() mcp.Tool {
	return mcp.Tool{
		Name:        ToolName,
		Description: "Suggest completions for a partially typed Elm identifier, using elm-oracle and the packages installed in the file's project",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"file": map[string]interface{}{
					"type":        "string",
					"description": "Path to the Elm source file being edited",
				},
				"prefix": map[string]interface{}{
					"type":        "string",
					"description": "The partial identifier, possibly qualified, e.g. List.ma",
				},
			},
			Required: []string{"file", "prefix"},
		},
	}
}

func (s *Server) handleComplete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments"), nil
	}
	file, _ := args["file"].(string)
	prefix, _ := args["prefix"].(string)
	if file == "" {
		return mcp.NewToolResultError("file parameter is required"), nil
	} else if prefix == "" {
		return mcp.NewToolResultError("prefix parameter is required"), nil
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	suggestions, err := s.provider.Run(ctx, abs, prefix)
	if err != nil {
		log.Warning("Completion of %s in %s failed: %s", prefix, abs, err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	b, err := json.MarshalIndent(suggestions, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode suggestions: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}
