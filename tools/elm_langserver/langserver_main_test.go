package main

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/please-build/elm-complete/src/core"
	"github.com/please-build/elm-complete/src/oracle"
	"github.com/please-build/elm-complete/src/process"
	"github.com/please-build/elm-complete/src/suggest"
)

func TestDumpConfig(t *testing.T) {
	dump := dumpConfig(core.DefaultConfiguration())
	assert.Contains(t, dump, "node_modules/.bin/elm-oracle")
	assert.NotContains(t, dump, "0xc0")
}

func TestCompleteNoProject(t *testing.T) {
	config := core.DefaultConfiguration()
	config.Project.Marker = []string{core.DefaultProjectMarker}
	invoker, err := oracle.NewInvoker(config, oracle.NewRunner(process.New(), runtime.GOOS, config.Oracle.Shell, os.Getenv))
	require.NoError(t, err)
	provider := suggest.NewProvider(config, core.NewResolver(config.Project.Marker, nil), invoker, suggest.LogNotifier)
	file := filepath.Join(t.TempDir(), "Main.elm")
	require.NoError(t, os.WriteFile(file, []byte("module Main exposing (..)"), 0644))
	assert.False(t, complete(provider, file, "ma"))
}
