//go:build !windows

package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/please-build/elm-complete/src/core"
	"github.com/please-build/elm-complete/src/oracle"
	"github.com/please-build/elm-complete/src/process"
	"github.com/please-build/elm-complete/src/suggest"
)

func newServer(t *testing.T) *Server {
	config := core.DefaultConfiguration()
	config.Project.Marker = []string{core.DefaultProjectMarker}
	invoker, err := oracle.NewInvoker(config, oracle.NewRunner(process.New(), runtime.GOOS, config.Oracle.Shell, os.Getenv))
	require.NoError(t, err)
	provider := suggest.NewProvider(config, core.NewResolver(config.Project.Marker, nil), invoker, suggest.LogNotifier)
	return NewServer("test", provider)
}

func write(t *testing.T, path, contents string, mode os.FileMode) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(contents), mode))
}

func call(t *testing.T, s *Server, args map[string]interface{}) *mcp.CallToolResult {
	result, err := s.handleComplete(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      ToolName,
			Arguments: args,
		},
	})
	require.NoError(t, err)
	return result
}

func text(t *testing.T, result *mcp.CallToolResult) string {
	require.Equal(t, 1, len(result.Content))
	content, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return content.Text
}

func TestComplete(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "src", "Main.elm")
	write(t, filepath.Join(root, core.DefaultProjectMarker), "{}", 0644)
	write(t, file, "module Main exposing (..)", 0644)
	write(t, filepath.Join(root, "node_modules", ".bin", "elm-oracle"), `#!/bin/sh
echo '[{"name":"map","fullName":"List.map","signature":"(a -> b) -> List a -> List b","comment":"","href":"u"}]'
`, 0755)

	result := call(t, newServer(t), map[string]interface{}{"file": file, "prefix": "List.ma"})
	assert.False(t, result.IsError)
	var suggestions []suggest.Suggestion
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &suggestions))
	assert.Equal(t, []suggest.Suggestion{{
		Kind:        suggest.KindFunction,
		Snippet:     "map ${1:(a -> b)} ${2:List a}",
		DisplayText: "map",
		RightLabel:  "(a -> b) -> List a -> List b",
		Description: "List.map",
		MoreURL:     "u",
	}}, suggestions)
}

func TestCompleteNoProject(t *testing.T) {
	file := filepath.Join(t.TempDir(), "Main.elm")
	write(t, file, "module Main exposing (..)", 0644)
	result := call(t, newServer(t), map[string]interface{}{"file": file, "prefix": "ma"})
	assert.True(t, result.IsError)
	assert.Contains(t, text(t, result), core.ErrNoProjectFound.Error())
}

func TestCompleteMissingArguments(t *testing.T) {
	s := newServer(t)
	result := call(t, s, map[string]interface{}{"prefix": "ma"})
	assert.True(t, result.IsError)
	assert.Equal(t, "file parameter is required", text(t, result))
	result = call(t, s, map[string]interface{}{"file": "Main.elm"})
	assert.True(t, result.IsError)
	assert.Equal(t, "prefix parameter is required", text(t, result))
}

func TestCompleteTool(t *testing.T) {
	tool := completeTool()
	assert.Equal(t, ToolName, tool.Name)
	assert.Equal(t, []string{"file", "prefix"}, tool.InputSchema.Required)
}

func TestCompleteRejectsShellCharacters(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "src", "Main.elm")
	marker := filepath.Join(root, "ran")
	write(t, filepath.Join(root, core.DefaultProjectMarker), "{}", 0644)
	write(t, file, "module Main exposing (..)", 0644)
	write(t, filepath.Join(root, "node_modules", ".bin", "elm-oracle"), "#!/bin/sh\ntouch "+marker+"\necho '[]'\n", 0755)

	result := call(t, newServer(t), map[string]interface{}{"file": file, "prefix": `a" & calc & "`})
	assert.False(t, result.IsError)
	assert.Equal(t, "[]", text(t, result))
	assert.NoFileExists(t, marker)
}
