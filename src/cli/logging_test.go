package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/op/go-logging.v1"
)

func TestParseVerbosity(t *testing.T) {
	var v Verbosity
	assert.NoError(t, v.UnmarshalFlag("error"))
	assert.EqualValues(t, logging.ERROR, v)
	assert.NoError(t, v.UnmarshalFlag("1"))
	assert.EqualValues(t, logging.WARNING, v)
	assert.NoError(t, v.UnmarshalFlag("v"))
	assert.EqualValues(t, logging.NOTICE, v)
	assert.Error(t, v.UnmarshalFlag("blah"))
}

func TestInitLoggingSetsLevel(t *testing.T) {
	InitLogging(Verbosity(logging.ERROR))
	assert.Equal(t, logging.ERROR, logging.GetLevel(""))
	InitLogging(Verbosity(logging.DEBUG))
	assert.Equal(t, logging.DEBUG, logging.GetLevel(""))
}

func TestFileLogging(t *testing.T) {
	InitLogging(Verbosity(logging.ERROR))
	filename := filepath.Join(t.TempDir(), "logs", "elm.log")
	require.NoError(t, InitFileLogging(filename, Verbosity(logging.DEBUG)))
	log.Debug("resolved project for %s", "Main.elm")
	closeFileLogging()

	b, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), "resolved project for Main.elm"))
	assert.True(t, strings.Contains(string(b), "DEBUG"))
}

func TestStripAnsi(t *testing.T) {
	assert.Equal(t, "warning", StripAnsi.ReplaceAllString("\x1b[33mwarning\x1b[0m", ""))
}
