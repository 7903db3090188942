package lsp

import (
	"strings"
	"sync"

	"github.com/mistql-lang/mistql-go/internal/compiler/errors"
	"github.com/mistql-lang/mistql-go/internal/compiler/parser"
)

// document is one open MistQL query buffer.
type document struct {
	text string
}

// documentStore tracks the open buffers a client is editing, keyed by LSP
// document URI. A MistQL document is a single expression, not a tree of
// files, so unlike a general-purpose language server this store never needs
// cross-document indexing.
type documentStore struct {
	mu   sync.RWMutex
	docs map[string]*document
}

func newDocumentStore() *documentStore {
	return &documentStore{docs: make(map[string]*document)}
}

func (s *documentStore) set(uri, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[uri] = &document{text: text}
}

func (s *documentStore) get(uri string) (*document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[uri]
	return d, ok
}

func (s *documentStore) remove(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

// lineCol converts a byte offset into a source string to a 0-indexed
// line/character position, the coordinate system LSP ranges use.
func lineCol(source string, offset int) (line, col int) {
	if offset < 0 || offset > len(source) {
		offset = len(source)
	}
	for i := 0; i < offset; i++ {
		if source[i] == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}
	return line, col
}

// diagnose parses source and reports the single QueryError it produces, if
// any. MistQL has no incremental or multi-error recovery; the first
// lex/parse failure aborts the pipeline, so a document ever surfaces at
// most one diagnostic.
func diagnose(source string) *errors.QueryError {
	if strings.TrimSpace(source) == "" {
		return nil
	}
	_, err := parser.Parse(source)
	if err == nil {
		return nil
	}
	qerr, ok := err.(*errors.QueryError)
	if !ok {
		return &errors.QueryError{Message: err.Error(), Pos: -1}
	}
	return qerr
}
