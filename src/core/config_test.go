package core

import (
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfiguration(t *testing.T) {
	config, err := ReadConfigFiles(nil)
	require.NoError(t, err)
	assert.Equal(t, "node_modules/.bin/elm-oracle", config.Oracle.Path)
	assert.Equal(t, 10*time.Second, time.Duration(config.Oracle.Timeout))
	assert.Equal(t, ShellAuto, config.Oracle.Shell)
	assert.True(t, config.Autocomplete.Enabled)
	assert.Equal(t, 1, config.Autocomplete.MinChars)
	assert.Equal(t, []string{DefaultProjectMarker}, config.Project.Marker)
	assert.False(t, config.ElmComplete.Version.IsSet)
}

func TestConfigWorking(t *testing.T) {
	config, err := ReadConfigFiles([]string{"test_data/working.elmcompleteconfig"})
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/elm-oracle", config.Oracle.Path)
	assert.Equal(t, 3*time.Second, time.Duration(config.Oracle.Timeout))
	assert.Equal(t, "nice -n 10", config.Oracle.Wrapper)
	assert.Equal(t, ShellNever, config.Oracle.Shell)
	assert.False(t, config.Autocomplete.Enabled)
	assert.Equal(t, 3, config.Autocomplete.MinChars)
	assert.Equal(t, []string{"elm-stuff/exact-dependencies.json", "elm.json"}, config.Project.Marker)
	assert.Equal(t, "127.0.0.1:9465", config.Metrics.Addr)
	assert.True(t, config.ElmComplete.Version.IsGTE)
	assert.Equal(t, "1.0.0", config.ElmComplete.Version.Version.String())
}

func TestConfigLayering(t *testing.T) {
	config, err := ReadConfigFiles([]string{"test_data/working.elmcompleteconfig", "test_data/override.elmcompleteconfig"})
	require.NoError(t, err)
	assert.Equal(t, 2, config.Autocomplete.MinChars)
	assert.Equal(t, "/usr/local/bin/elm-oracle", config.Oracle.Path)
}

func TestConfigMissingFileIsFine(t *testing.T) {
	_, err := ReadConfigFiles([]string{"test_data/does_not_exist"})
	assert.NoError(t, err)
}

func TestConfigFailing(t *testing.T) {
	_, err := ReadConfigFiles([]string{"test_data/failing.elmcompleteconfig"})
	assert.Error(t, err)
}

func TestConfigValidateReportsEverything(t *testing.T) {
	_, err := ReadConfigFiles([]string{"test_data/invalid.elmcompleteconfig"})
	require.Error(t, err)
	merr, ok := err.(*multierror.Error)
	require.True(t, ok, "expected a multierror, got %T", err)
	assert.Equal(t, 5, len(merr.Errors))
}
