package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Catalogue is documentation metadata maintained by hand alongside All(); this
// test keeps the two from drifting apart.
func TestCatalogueMatchesAll(t *testing.T) {
	all := All()
	for ns, fns := range Catalogue {
		for _, fn := range fns {
			_, ok := all[fn.Name]
			assert.Truef(t, ok, "Catalogue[%s] lists %q but All() does not bind it", ns, fn.Name)
		}
	}
}

func TestNamespacesSorted(t *testing.T) {
	names := Namespaces()
	for i := 1; i < len(names); i++ {
		assert.LessOrEqual(t, names[i-1], names[i])
	}
}

func TestTotalFunctionCount(t *testing.T) {
	var want int
	for _, fns := range Catalogue {
		want += len(fns)
	}
	assert.Equal(t, want, TotalFunctionCount())
}
