package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/mistql-lang/mistql-go/internal/compiler/builtins"
)

func (s *Server) handleDidOpen(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidOpenTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "failed to parse didOpen params")
	}
	uri := string(params.TextDocument.URI)
	s.docs.set(uri, params.TextDocument.Text)
	s.publishDiagnostics(ctx, uri)
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidChange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidChangeTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "failed to parse didChange params")
	}
	if len(params.ContentChanges) == 0 {
		return reply(ctx, nil, nil)
	}
	uri := string(params.TextDocument.URI)
	// Full document sync: the last change carries the whole new text.
	s.docs.set(uri, params.ContentChanges[len(params.ContentChanges)-1].Text)
	s.publishDiagnostics(ctx, uri)
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidClose(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidCloseTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "failed to parse didClose params")
	}
	s.docs.remove(string(params.TextDocument.URI))
	return reply(ctx, nil, nil)
}

// publishDiagnostics re-parses a document and reports its lex/parse error,
// if any, replacing whatever diagnostic was previously published for it.
func (s *Server) publishDiagnostics(ctx context.Context, uri string) {
	doc, ok := s.docs.get(uri)
	if !ok {
		return
	}

	var diagnostics []protocol.Diagnostic
	if qerr := diagnose(doc.text); qerr != nil {
		line, col := 0, 0
		if qerr.Positioned() {
			line, col = lineCol(doc.text, qerr.Pos)
		}
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: uint32(line), Character: uint32(col)},
				End:   protocol.Position{Line: uint32(line), Character: uint32(col + 1)},
			},
			Severity: protocol.DiagnosticSeverityError,
			Source:   "mistql",
			Message:  qerr.Message,
		})
	}

	params := &protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentURI(uri),
		Diagnostics: diagnostics,
	}
	if err := s.client.PublishDiagnostics(ctx, params); err != nil {
		s.logger.Printf("error publishing diagnostics: %v", err)
	}
}

// identAt extracts the identifier (letters, digits, underscore) touching
// the cursor, the way a completion/hover request needs to know what word
// the user is in the middle of typing.
func identAt(text string, line, char int) string {
	lines := strings.Split(text, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}
	row := lines[line]
	runes := []rune(row)
	if char > len(runes) {
		char = len(runes)
	}
	isIdent := func(r rune) bool {
		return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
	}
	start := char
	for start > 0 && isIdent(runes[start-1]) {
		start--
	}
	end := char
	for end < len(runes) && isIdent(runes[end]) {
		end++
	}
	return string(runes[start:end])
}

func (s *Server) handleCompletion(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.CompletionParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "failed to parse completion params")
	}

	var items []protocol.CompletionItem
	for namespace, defs := range builtins.Catalogue {
		for _, def := range defs {
			items = append(items, protocol.CompletionItem{
				Label:            def.Name,
				Kind:             protocol.CompletionItemKindFunction,
				Detail:           def.Signature,
				Documentation:    protocol.MarkupContent{Kind: protocol.Markdown, Value: fmt.Sprintf("**%s** (%s)\n\n%s", def.Name, namespace, def.Description)},
				InsertText:       def.Name,
				InsertTextFormat: protocol.InsertTextFormatPlainText,
			})
		}
	}

	return reply(ctx, protocol.CompletionList{IsIncomplete: false, Items: items}, nil)
}

func (s *Server) handleHover(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.HoverParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "failed to parse hover params")
	}

	doc, ok := s.docs.get(string(params.TextDocument.URI))
	if !ok {
		return reply(ctx, nil, nil)
	}

	word := identAt(doc.text, int(params.Position.Line), int(params.Position.Character))
	if word == "" {
		return reply(ctx, nil, nil)
	}

	for namespace, defs := range builtins.Catalogue {
		for _, def := range defs {
			if def.Name != word {
				continue
			}
			result := protocol.Hover{
				Contents: protocol.MarkupContent{
					Kind:  protocol.Markdown,
					Value: fmt.Sprintf("**%s** (%s)\n\n`%s`\n\n%s", def.Name, namespace, def.Signature, def.Description),
				},
			}
			return reply(ctx, result, nil)
		}
	}
	return reply(ctx, nil, nil)
}
