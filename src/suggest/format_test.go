package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/please-build/elm-complete/src/oracle"
)

func TestFormat(t *testing.T) {
	suggestions := Format([]oracle.Symbol{
		{Name: "foo", FullName: "M.foo", Signature: "a -> b", Href: "u"},
		{
			Name:      "map",
			FullName:  "List.map",
			Signature: "(a -> b) -> List a -> List b",
			Comment:   "Apply a function to every element of a list.",
			Href:      "http://package.elm-lang.org/packages/elm-lang/core/latest/List#map",
		},
		{Name: "pi", FullName: "Basics.pi", Signature: "Float"},
	})
	assert.Equal(t, []Suggestion{
		{
			Kind:        "function",
			Snippet:     "foo ${1:a}",
			DisplayText: "foo",
			RightLabel:  "a -> b",
			Description: "M.foo",
			MoreURL:     "u",
		},
		{
			Kind:        "function",
			Snippet:     "map ${1:(a -> b)} ${2:List a}",
			DisplayText: "map",
			RightLabel:  "(a -> b) -> List a -> List b",
			Description: "List.map: Apply a function to every element of a list.",
			MoreURL:     "http://package.elm-lang.org/packages/elm-lang/core/latest/List#map",
		},
		{
			Kind:        "function",
			Snippet:     "pi",
			DisplayText: "pi",
			RightLabel:  "Float",
			Description: "Basics.pi",
		},
	}, suggestions)
}

func TestFormatEmpty(t *testing.T) {
	assert.Equal(t, []Suggestion{}, Format(nil))
}

func TestPrefixAt(t *testing.T) {
	assert.Equal(t, "List.ma", PrefixAt("    List.ma"))
	assert.Equal(t, "foo_bar-1", PrefixAt("x = foo_bar-1"))
	assert.Equal(t, "Html.Attributes.cl", PrefixAt("[ Html.Attributes.cl"))
	assert.Equal(t, "", PrefixAt("view model = ("))
	assert.Equal(t, "", PrefixAt(""))
}

func TestValidPrefix(t *testing.T) {
	assert.True(t, ValidPrefix("List.ma"))
	assert.True(t, ValidPrefix("foo_bar-1"))
	assert.False(t, ValidPrefix(`a" & calc & "`))
	assert.False(t, ValidPrefix("ma|whoami"))
	assert.False(t, ValidPrefix("%PATH%"))
	assert.False(t, ValidPrefix("ma\nrm"))
	assert.False(t, ValidPrefix(""))
}

func TestOnceNotifier(t *testing.T) {
	var warnings []string
	n := NewOnceNotifier(NotifierFunc(func(title, detail string) {
		warnings = append(warnings, title)
	}))
	n.Warn(UnavailableTitle, UnavailableDetail)
	n.Warn(UnavailableTitle, UnavailableDetail)
	n.Warn("something else", "")
	assert.Equal(t, []string{UnavailableTitle}, warnings)
}
