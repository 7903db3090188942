package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerInitialization(t *testing.T) {
	server := NewServer()
	require.NotNil(t, server)
	assert.NotNil(t, server.docs)
	assert.NotNil(t, server.logger)
	assert.NotNil(t, server.capabilities.CompletionProvider)
	assert.Equal(t, true, server.capabilities.HoverProvider)
}

func TestStdRWC(t *testing.T) {
	rwc := stdrwc{}
	_ = rwc.Read
	_ = rwc.Write
	_ = rwc.Close
}

func TestDocumentStore(t *testing.T) {
	store := newDocumentStore()

	_, ok := store.get("file:///a.mql")
	assert.False(t, ok)

	store.set("file:///a.mql", "1 + 2")
	doc, ok := store.get("file:///a.mql")
	require.True(t, ok)
	assert.Equal(t, "1 + 2", doc.text)

	store.remove("file:///a.mql")
	_, ok = store.get("file:///a.mql")
	assert.False(t, ok)
}

func TestLineCol(t *testing.T) {
	source := "abc\ndef\nghi"
	line, col := lineCol(source, 0)
	assert.Equal(t, 0, line)
	assert.Equal(t, 0, col)

	line, col = lineCol(source, 5) // 'e' on the second line
	assert.Equal(t, 1, line)
	assert.Equal(t, 1, col)
}

func TestDiagnose(t *testing.T) {
	assert.Nil(t, diagnose("1 + 2"))
	assert.Nil(t, diagnose("   "))
	assert.NotNil(t, diagnose("1 +"))
}
