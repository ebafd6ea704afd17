// Package suggest turns what the oracle says into suggestions an editor can show, and
// decides when it's worth asking the oracle at all.
package suggest

import (
	"github.com/please-build/elm-complete/src/oracle"
	"github.com/please-build/elm-complete/src/snippet"
)

// KindFunction is the kind of every suggestion; the oracle doesn't distinguish values from functions.
const KindFunction = "function"

// A Suggestion is one formatted completion candidate.
type Suggestion struct {
	Kind        string `json:"kind"`
	Snippet     string `json:"insertionSnippet"`
	DisplayText string `json:"displayLabel"`
	RightLabel  string `json:"typeLabel"`
	Description string `json:"description"`
	MoreURL     string `json:"moreInfoUrl"`
}

// Format converts oracle symbols into suggestions, one each, in the same order.
func Format(symbols []oracle.Symbol) []Suggestion {
	ret := make([]Suggestion, len(symbols))
	for i, sym := range symbols {
		ret[i] = Suggestion{
			Kind:        KindFunction,
			Snippet:     snippet.Snippet(sym.Name, sym.Signature),
			DisplayText: sym.Name,
			RightLabel:  sym.Signature,
			Description: description(sym),
			MoreURL:     sym.Href,
		}
	}
	return ret
}

func description(sym oracle.Symbol) string {
	if sym.Comment == "" {
		return sym.FullName
	}
	return sym.FullName + ": " + sym.Comment
}
