package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var commands = []string{"serve", "complete", "mcp"}

func TestSuggestClosestFirst(t *testing.T) {
	assert.Equal(t, []string{"serve"}, Suggest("serv", commands, 2))
	assert.Equal(t, []string{"complete"}, Suggest("compleet", commands, 2))
	assert.Equal(t, []string{}, Suggest("frobnicate", commands, 2))
}

func TestPrettyPrintSuggestion(t *testing.T) {
	assert.Equal(t, "\nMaybe you meant serve ?", PrettyPrintSuggestion("server", commands, 2))
	assert.Equal(t, "", PrettyPrintSuggestion("frobnicate", commands, 2))
	assert.Equal(t, "\nMaybe you meant ab , ac or ad ?", PrettyPrintSuggestion("a", []string{"ab", "ac", "ad", "ae"}, 1))
}
