package lsp

import (
	"encoding/json"
	"fmt"

	"github.com/sourcegraph/go-lsp"

	"github.com/please-build/elm-complete/src/suggest"
)

// settingsKey is the section of the client's settings that belongs to us.
const settingsKey = "elm"

func (h *Handler) didChangeConfiguration(params *lsp.DidChangeConfigurationParams) error {
	if params.Settings == nil {
		return nil
	}
	return h.applySettings(params.Settings)
}

// applySettings updates the provider from a blob of client settings. Fields that aren't
// present keep their current values.
func (h *Handler) applySettings(raw interface{}) error {
	b, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	settings := h.provider.Settings()
	wrapper := struct {
		Elm *suggest.Settings `json:"elm"`
	}{Elm: &settings}
	if err := json.Unmarshal(b, &wrapper); err != nil {
		return fmt.Errorf("invalid %s settings: %w", settingsKey, err)
	} else if wrapper.Elm == nil {
		return nil // "elm": null
	}
	h.provider.UpdateSettings(settings)
	return nil
}
