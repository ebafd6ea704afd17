package fs

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "Main.elm")
	require.NoError(t, os.WriteFile(file, []byte("module Main exposing (..)"), 0644))

	assert.True(t, PathExists(dir))
	assert.True(t, PathExists(file))
	assert.False(t, PathExists(filepath.Join(dir, "Missing.elm")))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "Main.elm")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(dir))
	assert.False(t, FileExists(filepath.Join(dir, "Missing.elm")))
}

func TestIsExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no execute bit on windows")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "elm-oracle")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\n"), 0755))
	plain := filepath.Join(dir, "elm-package.json")
	require.NoError(t, os.WriteFile(plain, []byte("{}"), 0644))

	assert.True(t, IsExecutable(script))
	assert.False(t, IsExecutable(plain))
	assert.False(t, IsExecutable(dir))
}
