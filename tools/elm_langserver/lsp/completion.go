package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"

	"github.com/please-build/elm-complete/src/suggest"
)

// An inflight is a completion request that hasn't been answered yet.
type inflight struct {
	id     jsonrpc2.ID
	cancel context.CancelFunc
}

type cancelParams struct {
	ID jsonrpc2.ID `json:"id"`
}

func (h *Handler) completion(ctx context.Context, params *lsp.CompletionParams) (*lsp.CompletionList, error) {
	doc, err := h.doc(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	prefix := suggest.PrefixAt(doc.LineTo(params.Position))
	suggestions := h.provider.Suggest(ctx, doc.Filename, prefix)
	if ctx.Err() != nil {
		return nil, &jsonrpc2.Error{Code: codeRequestCancelled, Message: "request cancelled"}
	}
	return completionList(suggestions, prefix, params.Position), nil
}

// completionURI returns the document a completion request is for, or "" if the params don't say.
func completionURI(params *json.RawMessage) lsp.DocumentURI {
	var req struct {
		TextDocument struct {
			URI lsp.DocumentURI `json:"uri"`
		} `json:"textDocument"`
	}
	if params == nil || json.Unmarshal(*params, &req) != nil {
		return ""
	}
	return req.TextDocument.URI
}

// track registers a completion request so it can be cancelled. Any earlier request for the same
// document is cancelled since its answer would be stale by the time it arrived.
// The returned function must be called once the request is finished.
func (h *Handler) track(ctx context.Context, id jsonrpc2.ID, uri lsp.DocumentURI) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	req := &inflight{id: id, cancel: cancel}
	h.mutex.Lock()
	if uri != "" {
		if prev := h.latest[uri]; prev != nil {
			log.Debug("Superseding completion request %s", prev.id)
			prev.cancel()
		}
		h.latest[uri] = req
	}
	h.requests[id] = req
	h.mutex.Unlock()
	return ctx, func() {
		h.mutex.Lock()
		defer h.mutex.Unlock()
		if uri != "" && h.latest[uri] == req {
			delete(h.latest, uri)
		}
		if h.requests[id] == req {
			delete(h.requests, id)
		}
		cancel()
	}
}

// cancel cancels the request with the given id, if it's still running.
func (h *Handler) cancel(id jsonrpc2.ID) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if req := h.requests[id]; req != nil {
		log.Debug("Cancelling request %s", id)
		req.cancel()
	}
}

// cancelAll cancels every outstanding request.
func (h *Handler) cancelAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for _, req := range h.requests {
		req.cancel()
	}
}

// completionList converts suggestions into completion items. Each one replaces the part of the
// prefix after its last dot, so "List.ma" becomes "List.map".
func completionList(suggestions []suggest.Suggestion, prefix string, pos lsp.Position) *lsp.CompletionList {
	ident := prefix[strings.LastIndexByte(prefix, '.')+1:]
	start := pos
	start.Character -= utf16Len(ident)
	items := make([]lsp.CompletionItem, len(suggestions))
	for i, s := range suggestions {
		items[i] = completionItem(s, lsp.Range{Start: start, End: pos}, i)
	}
	return &lsp.CompletionList{
		// The oracle filters on the prefix so the client needs to ask again as it changes.
		IsIncomplete: true,
		Items:        items,
	}
}

func completionItem(s suggest.Suggestion, r lsp.Range, index int) lsp.CompletionItem {
	return lsp.CompletionItem{
		Label:            s.DisplayText,
		Kind:             lsp.CIKFunction,
		Detail:           s.RightLabel,
		Documentation:    s.Description,
		SortText:         fmt.Sprintf("%04d", index),
		FilterText:       s.DisplayText,
		InsertTextFormat: lsp.ITFSnippet,
		TextEdit: &lsp.TextEdit{
			NewText: s.Snippet,
			Range:   r,
		},
		Data: s.MoreURL,
	}
}
