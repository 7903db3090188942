package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mistql-lang/mistql-go/internal/compiler/builtins"
)

func TestIdentAt(t *testing.T) {
	text := "events | filter type"
	assert.Equal(t, "filter", identAt(text, 0, 11))
	assert.Equal(t, "events", identAt(text, 0, 3))
	assert.Equal(t, "", identAt(text, 0, 7)) // cursor sits between the space and "|"
}

func TestIdentAtMultiline(t *testing.T) {
	text := "a |\nfilter b"
	assert.Equal(t, "filter", identAt(text, 1, 3))
}

func TestBuiltinLookupUsedByHover(t *testing.T) {
	found := false
	for _, defs := range builtins.Catalogue {
		for _, def := range defs {
			if def.Name == "filter" {
				found = true
			}
		}
	}
	assert.True(t, found, "hover/completion depend on \"filter\" being cataloged")
}
