package suggest

import (
	"github.com/peterebden/go-deferred-regex"
)

var prefixRex = deferredregex.DeferredRegex{Re: `[.\w-]+$`}

// identRex matches a prefix we're prepared to pass to the oracle. It goes on a command line,
// possibly through cmd.exe, so nothing that a shell treats specially may get through.
var identRex = deferredregex.DeferredRegex{Re: `^[.\w-]+$`}

// PrefixAt returns the prefix being typed at the end of the given text, which should be the
// line up to the cursor. Qualified names like List.ma are returned whole.
func PrefixAt(line string) string {
	if loc := prefixRex.FindStringIndex(line); loc != nil {
		return line[loc[0]:loc[1]]
	}
	return ""
}

// ValidPrefix returns true if the given prefix is something that could be an Elm identifier,
// optionally qualified by its module.
func ValidPrefix(prefix string) bool {
	return identRex.FindStringIndex(prefix) != nil
}
