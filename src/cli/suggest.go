package cli

import (
	"sort"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// maxSuggestions caps how many candidates PrettyPrintSuggestion lists.
const maxSuggestions = 3

type suggestion struct {
	s    string
	dist int
}

// Suggest returns the items in haystack within maxDistance edits of needle, closest first.
func Suggest(needle string, haystack []string, maxDistance int) []string {
	r := []rune(needle)
	options := make([]suggestion, 0, len(haystack))
	for _, straw := range haystack {
		if straw == "" {
			continue
		}
		if d := levenshtein.DistanceForStrings(r, []rune(straw), levenshtein.DefaultOptions); d <= maxDistance {
			options = append(options, suggestion{s: straw, dist: d})
		}
	}
	sort.SliceStable(options, func(i, j int) bool { return options[i].dist < options[j].dist })
	ret := make([]string, len(options))
	for i, o := range options {
		ret[i] = o.s
	}
	return ret
}

// PrettyPrintSuggestion produces a single human-readable hint from Suggest, or the empty
// string if nothing is close enough.
func PrettyPrintSuggestion(needle string, haystack []string, maxDistance int) string {
	options := Suggest(needle, haystack, maxDistance)
	if len(options) == 0 {
		return ""
	}
	if len(options) > maxSuggestions {
		options = options[:maxSuggestions]
	}
	var sb strings.Builder
	sb.WriteString("\nMaybe you meant ")
	for i, o := range options {
		if i > 0 {
			if i < len(options)-1 {
				sb.WriteString(" , ") // space before the comma so the word can be selected on its own
			} else {
				sb.WriteString(" or ")
			}
		}
		sb.WriteString(o)
	}
	sb.WriteString(" ?")
	return sb.String()
}
