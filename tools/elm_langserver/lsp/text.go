package lsp

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf16"

	"github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"
)

// A doc is a representation of a document that's opened by the editor.
type doc struct {
	// The filename of the document.
	Filename string
	// The raw content of the document.
	Content []string
	Mutex   sync.Mutex
}

func (d *doc) SetText(text string) {
	d.Mutex.Lock()
	defer d.Mutex.Unlock()
	d.Content = strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

// LineTo returns the given line up to the given position, which is measured in
// UTF-16 code units as the protocol requires.
func (d *doc) LineTo(pos lsp.Position) string {
	d.Mutex.Lock()
	defer d.Mutex.Unlock()
	if pos.Line < 0 || pos.Line >= len(d.Content) {
		return ""
	}
	line := d.Content[pos.Line]
	units := 0
	for i, r := range line {
		if units >= pos.Character {
			return line[:i]
		}
		units += utf16.RuneLen(r)
	}
	return line
}

// utf16Len returns the length of s in UTF-16 code units.
func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}

func (h *Handler) didOpen(params *lsp.DidOpenTextDocumentParams) error {
	filename, err := fromURI(params.TextDocument.URI)
	if err != nil {
		return err
	}
	d := &doc{Filename: filename}
	d.SetText(params.TextDocument.Text)
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.docs[params.TextDocument.URI] = d
	return nil
}

// doc returns a document of the given URI.
func (h *Handler) doc(uri lsp.DocumentURI) (*doc, error) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if doc := h.docs[uri]; doc != nil {
		return doc, nil
	}
	// This indicates we are getting requests for a document without a didOpen first.
	return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidRequest, Message: "unknown document " + string(uri)}
}

func (h *Handler) didChange(params *lsp.DidChangeTextDocumentParams) error {
	doc, err := h.doc(params.TextDocument.URI)
	if err != nil {
		return err
	}
	// Synchronise changes into the doc's contents
	for _, change := range params.ContentChanges {
		if change.Range != nil {
			return fmt.Errorf("non-incremental change received")
		}
		doc.SetText(change.Text)
	}
	return nil
}

func (h *Handler) didClose(params *lsp.DidCloseTextDocumentParams) error {
	if _, err := h.doc(params.TextDocument.URI); err != nil {
		return err
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	delete(h.docs, params.TextDocument.URI)
	if req := h.latest[params.TextDocument.URI]; req != nil {
		req.cancel()
	}
	return nil
}
