package oracle

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseResponse decodes the oracle's output. Only the first line is considered.
// Records come back in the order the oracle gave them.
func ParseResponse(raw string) ([]Symbol, error) {
	if i := strings.IndexByte(raw, '\n'); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.TrimSuffix(raw, "\r")
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyOutput
	}
	var symbols []Symbol
	if err := json.Unmarshal([]byte(raw), &symbols); err != nil {
		return nil, &MalformedOutputError{Output: raw, Err: err}
	} else if symbols == nil {
		return nil, &MalformedOutputError{Output: raw, Err: fmt.Errorf("expected an array, got %s", raw)}
	}
	return symbols, nil
}
