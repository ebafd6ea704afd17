// Package snippet turns Elm type signatures into insertion templates with tab stops,
// one per argument, so that accepting a completion leaves the cursor on the first argument.
//
// The argument detection is a heuristic over the signature text rather than a parse of it.
// Parenthesised groups are taken as single arguments and the result type is dropped, which
// is right for the common cases (curried functions, function-typed arguments) even though
// it mangles some others (tuples, arguments that follow a parenthesised group).
package snippet

import (
	"fmt"
	"strings"

	"github.com/peterebden/go-deferred-regex"
)

// parenRex matches what is stripped from a parenthesised fragment: every opening paren,
// and a leading arrow left over from the previous argument.
var parenRex = deferredregex.DeferredRegex{Re: `\(|^( ?->) `}

// A TabStop is one placeholder in a template. Indices start at 1.
type TabStop struct {
	Index int
	Label string
}

// String renders the stop in the ${index:label} form editors understand.
func (ts TabStop) String() string {
	return fmt.Sprintf("${%d:%s}", ts.Index, ts.Label)
}

// TabStops is an ordered sequence of tab stops.
type TabStops []TabStop

// String renders all the stops separated by single spaces.
func (stops TabStops) String() string {
	parts := make([]string, len(stops))
	for i, stop := range stops {
		parts[i] = stop.String()
	}
	return strings.Join(parts, " ")
}

// Expand returns the tab stops for a signature. It never fails; a signature with no
// arguments yields no stops.
func Expand(signature string) TabStops {
	stops := TabStops{}
	add := func(label string) {
		stops = append(stops, TabStop{Index: len(stops) + 1, Label: label})
	}
	for _, fragment := range strings.Split(signature, ")") {
		if strings.TrimSpace(fragment) == "" {
			continue
		}
		if strings.Contains(fragment, "(") {
			add("(" + parenRex.ReplaceAllString(fragment, "") + ")")
			continue
		}
		pieces := nonBlank(strings.Split(fragment, "->"))
		if len(pieces) == 0 {
			continue
		}
		for _, piece := range pieces[:len(pieces)-1] {
			add(strings.TrimSpace(piece))
		}
	}
	return stops
}

// Snippet returns the insertion template for a symbol: its name followed by a tab stop for
// each argument, or just the name if it takes none.
func Snippet(name, signature string) string {
	if stops := Expand(signature); len(stops) > 0 {
		return name + " " + stops.String()
	}
	return name
}

func nonBlank(pieces []string) []string {
	ret := pieces[:0]
	for _, piece := range pieces {
		if strings.TrimSpace(piece) != "" {
			ret = append(ret, piece)
		}
	}
	return ret
}
