// Package builtins implements the MistQL standard library and operator set:
// every name bound in the bottom frame of a query's stack.
package builtins

import (
	"math"
	"sort"

	"github.com/mistql-lang/mistql-go/internal/compiler/value"
)

// FunctionDef documents one built-in for introspection/CLI help output,
// grouped by namespace the way a generated reference page would.
type FunctionDef struct {
	Name        string
	Signature   string
	Description string
}

// Catalogue lists every built-in, grouped by namespace, for introspection.
// It is kept in sync with All() by registry_test.go.
var Catalogue = map[string][]FunctionDef{
	"Collections": {
		{Name: "map", Signature: "map(f, xs) -> array", Description: "Applies f to every element of xs"},
		{Name: "filter", Signature: "filter(f, xs) -> array", Description: "Keeps elements where f is truthy"},
		{Name: "find", Signature: "find(f, xs) -> value", Description: "First element where f is truthy, or null"},
		{Name: "reduce", Signature: "reduce(f, init, xs) -> value", Description: "Left fold with @ = [acc, cur]"},
		{Name: "sort", Signature: "sort(xs) -> array", Description: "Stable ascending sort"},
		{Name: "sortby", Signature: "sortby(f, xs) -> array", Description: "Stable ascending sort by projection"},
		{Name: "reverse", Signature: "reverse(xs) -> array", Description: "Reverses an array"},
		{Name: "head", Signature: "head(n, xs) -> array", Description: "First n elements"},
		{Name: "tail", Signature: "tail(n, xs) -> array", Description: "Last n elements"},
		{Name: "first", Signature: "first(xs) -> value", Description: "First element, or null"},
		{Name: "last", Signature: "last(xs) -> value", Description: "Last element, or null"},
		{Name: "count", Signature: "count(xs) -> number", Description: "Element count"},
		{Name: "sum", Signature: "sum(xs) -> number", Description: "Sum of a numeric array, 0 if empty"},
		{Name: "flatten", Signature: "flatten(xs) -> array", Description: "Flattens one level of nested arrays"},
		{Name: "withindices", Signature: "withindices(xs) -> array", Description: "Pairs each element with its index"},
		{Name: "groupby", Signature: "groupby(f, xs) -> object", Description: "Groups elements by string(f(x))"},
		{Name: "sequence", Signature: "sequence(f1, ..., fk, xs) -> array", Description: "All increasing index tuples matching f1..fk"},
	},
	"Objects": {
		{Name: "keys", Signature: "keys(o) -> array", Description: "Sorted keys"},
		{Name: "values", Signature: "values(o) -> array", Description: "Values in sorted-key order"},
		{Name: "entries", Signature: "entries(o) -> array", Description: "[key, value] pairs in sorted-key order"},
		{Name: "fromentries", Signature: "fromentries(xs) -> object", Description: "Builds an object from [key, value] pairs"},
		{Name: "mapvalues", Signature: "mapvalues(f, o) -> object", Description: "Maps over values, keys unchanged"},
		{Name: "filtervalues", Signature: "filtervalues(f, o) -> object", Description: "Keeps entries where f(value) is truthy"},
		{Name: "mapkeys", Signature: "mapkeys(f, o) -> object", Description: "Maps over keys, values unchanged"},
		{Name: "filterkeys", Signature: "filterkeys(f, o) -> object", Description: "Keeps entries where f(key) is truthy"},
	},
	"Scalar": {
		{Name: "string", Signature: "string(v) -> string", Description: "Canonical stringification"},
		{Name: "float", Signature: "float(v) -> number", Description: "Coerces to a number"},
		{Name: "regex", Signature: "regex(pattern, flags?) -> regex", Description: "Compiles a pattern with flags from {g,i,m,s}"},
		{Name: "match", Signature: "match(m, s) -> boolean", Description: "True iff m matches s"},
		{Name: "replace", Signature: "replace(m, r, s) -> string", Description: "Replaces match(es) of m in s with r"},
		{Name: "split", Signature: "split(sep, s) -> array", Description: "Splits s on sep"},
		{Name: "join", Signature: "join(sep, xs) -> string", Description: "Joins stringified xs with sep"},
		{Name: "summarize", Signature: "summarize(xs) -> object", Description: "min/max/mean/median/variance/stddev of a numeric array"},
	},
	"Operators": {
		{Name: "if", Signature: "if(c, a, b) -> value", Description: "Evaluates exactly one branch"},
		{Name: "apply", Signature: "apply(body, x) -> value", Description: "Evaluates body with @ = x"},
		{Name: "log", Signature: "log(v) -> value", Description: "Logs v as a diagnostic, returns it unchanged"},
		{Name: "index", Signature: "index(key, src) / index(start, end, src) -> value", Description: "Indexing and slicing desugaring target"},
	},
}

// All returns every built-in keyed by the name bound in the stack's bottom
// frame: both library functions and operator symbols.
func All() map[string]value.Value {
	out := map[string]value.Value{
		// Collections
		"map": value.Callable(mapFn), "filter": value.Callable(filterFn), "find": value.Callable(findFn),
		"reduce": value.Callable(reduceFn), "sort": value.Callable(sortFn), "sortby": value.Callable(sortbyFn),
		"reverse": value.Callable(reverseFn), "head": value.Callable(headFn), "tail": value.Callable(tailFn),
		"first": value.Callable(firstFn), "last": value.Callable(lastFn), "count": value.Callable(countFn),
		"sum": value.Callable(sumFn), "flatten": value.Callable(flattenFn), "withindices": value.Callable(withindicesFn),
		"groupby": value.Callable(groupbyFn), "sequence": value.Callable(sequenceFn),

		// Objects
		"keys": value.Callable(keysFn), "values": value.Callable(valuesFn), "entries": value.Callable(entriesFn),
		"fromentries": value.Callable(fromentriesFn), "mapvalues": value.Callable(mapvaluesFn),
		"filtervalues": value.Callable(filtervaluesFn), "mapkeys": value.Callable(mapkeysFn),
		"filterkeys": value.Callable(filterkeysFn),

		// Scalar / string / regex
		"string": value.Callable(stringFn), "float": value.Callable(floatFn), "regex": value.Callable(regexFn),
		"match": value.Callable(matchFn), "replace": value.Callable(replaceFn), "split": value.Callable(splitFn),
		"join": value.Callable(joinFn), "summarize": value.Callable(summarizeFn),

		// Operators
		"+": value.Callable(plusFn),
		"-": binaryNumeric("-", func(a, b float64) (value.Value, error) { return a - b, nil }),
		"*": binaryNumeric("*", func(a, b float64) (value.Value, error) { return a * b, nil }),
		"/": binaryNumeric("/", func(a, b float64) (value.Value, error) {
			if b == 0 {
				return math.NaN(), nil
			}
			return a / b, nil
		}),
		"%": binaryNumeric("%", func(a, b float64) (value.Value, error) {
			if b == 0 {
				return math.NaN(), nil
			}
			return math.Mod(a, b), nil
		}),
		"<":  comparisonFn("<", func(c int) bool { return c < 0 }),
		">":  comparisonFn(">", func(c int) bool { return c > 0 }),
		"<=": comparisonFn("<=", func(c int) bool { return c <= 0 }),
		">=": comparisonFn(">=", func(c int) bool { return c >= 0 }),
		"==": equalFn(false),
		"!=": equalFn(true),
		"&&": value.Callable(andFn),
		"||": value.Callable(orFn),
		"=~": value.Callable(matchOperatorFn),

		"-/unary": value.Callable(unaryNegFn),
		"!/unary": value.Callable(unaryNotFn),

		"if":    value.Callable(ifFn),
		"apply": value.Callable(applyFn),
		"log":   value.Callable(logFn),
		"index": value.Callable(indexFn),
	}
	return out
}

// Namespaces returns the sorted namespace names of Catalogue.
func Namespaces() []string {
	names := make([]string, 0, len(Catalogue))
	for n := range Catalogue {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// TotalFunctionCount returns the number of catalogued functions.
func TotalFunctionCount() int {
	total := 0
	for _, fns := range Catalogue {
		total += len(fns)
	}
	return total
}

// Frame builds the bottom stack frame holding every built-in, optionally
// shadowed/extended by host-provided extras.
func Frame(extras map[string]value.Value) *value.Frame {
	vars := All()
	for name, fn := range extras {
		vars[name] = fn
	}
	return value.NewFrame(vars)
}
