package cli

import (
	"testing"

	"github.com/coreos/go-semver/semver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	v, err := NewVersion(">= 1.2.0")
	require.NoError(t, err)
	assert.True(t, v.IsGTE)
	assert.Equal(t, ">=1.2.0", v.String())

	v, err = NewVersion("1.2.0")
	require.NoError(t, err)
	assert.False(t, v.IsGTE)
	assert.Equal(t, "1.2.0", v.String())

	_, err = NewVersion("one point two")
	assert.Error(t, err)
}

func TestVersionAccepts(t *testing.T) {
	gte, _ := NewVersion(">=1.2.0")
	assert.True(t, gte.Accepts(*semver.New("1.2.0")))
	assert.True(t, gte.Accepts(*semver.New("1.10.0")))
	assert.False(t, gte.Accepts(*semver.New("1.1.9")))

	exact, _ := NewVersion("1.2.0")
	assert.True(t, exact.Accepts(*semver.New("1.2.0")))
	assert.False(t, exact.Accepts(*semver.New("1.2.1")))

	assert.True(t, (&Version{}).Accepts(*semver.New("0.0.1")))
}
