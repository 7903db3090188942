package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mistql-lang/mistql-go/internal/compiler/eval"
	"github.com/mistql-lang/mistql-go/internal/compiler/parser"
	"github.com/mistql-lang/mistql-go/internal/compiler/value"
)

func query(t *testing.T, source string, root value.Value) value.Value {
	t.Helper()
	node, err := parser.Parse(source)
	require.NoError(t, err)
	stack := value.NewStack(Frame(nil))
	result, err := eval.Eval(node, stack.PushContext(root))
	require.NoError(t, err)
	return result
}

func TestMapFilterReduce(t *testing.T) {
	xs := []value.Value{float64(1), float64(2), float64(3), float64(4)}
	assert.Equal(t,
		[]value.Value{float64(2), float64(4), float64(6), float64(8)},
		query(t, "map @ * 2 @", xs))

	assert.Equal(t,
		[]value.Value{float64(2), float64(4)},
		query(t, "filter @ % 2 == 0 @", xs))

	assert.Equal(t, float64(10), query(t, `reduce @[0] + @[1] 0 @`, xs))
}

func TestSortAndGroupby(t *testing.T) {
	xs := []value.Value{float64(3), float64(1), float64(2)}
	assert.Equal(t, []value.Value{float64(1), float64(2), float64(3)}, query(t, "sort @", xs))

	nums := []value.Value{float64(1), float64(2), float64(3), float64(4)}
	grouped := query(t, "groupby @ % 2 @", nums).(value.Object)
	assert.ElementsMatch(t, []value.Value{float64(2), float64(4)}, grouped["0"])
	assert.ElementsMatch(t, []value.Value{float64(1), float64(3)}, grouped["1"])
}

func TestObjectBuiltins(t *testing.T) {
	obj := value.Object{"b": float64(2), "a": float64(1)}
	assert.Equal(t, []value.Value{"a", "b"}, query(t, "keys @", obj))
	assert.Equal(t, []value.Value{float64(1), float64(2)}, query(t, "values @", obj))
}

func TestScalarBuiltins(t *testing.T) {
	assert.Equal(t, "1,2,3", query(t, `join "," [1, 2, 3]`, nil))
	assert.Equal(t, []value.Value{"a", "b"}, query(t, `split "," "a,b"`, nil))
	assert.Equal(t, true, query(t, `match (regex "^a") "abc"`, nil))
}

func TestOperators(t *testing.T) {
	assert.Equal(t, float64(7), query(t, "3 + 4", nil))
	assert.Equal(t, "ab", query(t, `"a" + "b"`, nil))
	assert.Equal(t, true, query(t, "1 < 2 && 2 < 3", nil))
	assert.Equal(t, float64(5), query(t, "if true 5 6", nil))
}

func queryErr(t *testing.T, source string, root value.Value) error {
	t.Helper()
	node, err := parser.Parse(source)
	require.NoError(t, err)
	stack := value.NewStack(Frame(nil))
	_, err = eval.Eval(node, stack.PushContext(root))
	require.Error(t, err)
	return err
}

func TestMatchOperatorSubjectOnLeft(t *testing.T) {
	assert.Equal(t, true, query(t, `"abc" =~ (regex "b")`, nil))
	assert.Equal(t, false, query(t, `"abc" =~ (regex "z")`, nil))
	assert.Equal(t, true, query(t, `"abc" =~ "abc"`, nil))
	queryErr(t, `(regex "b") =~ "abc"`, nil)
}

func TestShortCircuitReturnsOperand(t *testing.T) {
	assert.Equal(t, float64(0), query(t, `0 && doesnotexist`, nil))
	assert.Equal(t, "x", query(t, `"x" || doesnotexist`, nil))
	assert.Equal(t, "b", query(t, `"a" && "b"`, nil))
	assert.Equal(t, "b", query(t, `0 || "b"`, nil))
}

func TestIfEvaluatesOneBranch(t *testing.T) {
	assert.Equal(t, float64(1), query(t, "if true 1 doesnotexist", nil))
	assert.Equal(t, float64(2), query(t, "if false doesnotexist 2", nil))
}

func TestIndexEdgeCases(t *testing.T) {
	xs := []value.Value{float64(10), float64(20), float64(30)}
	assert.Equal(t, float64(30), query(t, "@[-1]", xs))
	assert.Nil(t, query(t, "@[9]", xs))
	queryErr(t, "@[1.5]", xs)

	obj := value.Object{"a": float64(1)}
	assert.Equal(t, float64(1), query(t, `@["a"]`, obj))
	assert.Nil(t, query(t, `@["missing"]`, obj))
	queryErr(t, "@[0]", obj)
	queryErr(t, "@[0:1]", obj)

	assert.Nil(t, query(t, `@[0]`, nil))
	assert.Nil(t, query(t, `@["k"]`, nil))
	queryErr(t, "@[true]", nil)
}

func TestHeadTailFirstLast(t *testing.T) {
	xs := []value.Value{float64(1), float64(2), float64(3)}
	assert.Equal(t, []value.Value{float64(1), float64(2)}, query(t, "head 2 @", xs))
	assert.Equal(t, []value.Value{float64(2), float64(3)}, query(t, "tail 2 @", xs))
	assert.Equal(t, float64(1), query(t, "first @", xs))
	assert.Equal(t, float64(3), query(t, "last @", xs))
	assert.Nil(t, query(t, "first @", []value.Value{}))
	assert.Nil(t, query(t, "last @", []value.Value{}))
}

func TestFlattenAndWithindices(t *testing.T) {
	nested := []value.Value{
		[]value.Value{float64(1)},
		[]value.Value{float64(2), float64(3)},
	}
	assert.Equal(t, []value.Value{float64(1), float64(2), float64(3)}, query(t, "flatten @", nested))
	queryErr(t, "flatten @", []value.Value{float64(1)})

	pairs := query(t, "withindices @", []value.Value{"a", "b"}).([]value.Value)
	assert.Equal(t, []value.Value{float64(0), "a"}, pairs[0])
	assert.Equal(t, []value.Value{float64(1), "b"}, pairs[1])
}

func TestSumEmptyIsZero(t *testing.T) {
	assert.Equal(t, float64(0), query(t, "sum @", []value.Value{}))
}

func TestSortIsStableAndFailsAcrossTags(t *testing.T) {
	mixed := []value.Value{float64(1), "a"}
	queryErr(t, "sort @", mixed)

	people := []value.Value{
		value.Object{"name": "b", "age": float64(30)},
		value.Object{"name": "a", "age": float64(30)},
	}
	sorted := query(t, "sortby age @", people).([]value.Value)
	assert.Equal(t, "b", sorted[0].(value.Object)["name"])
	assert.Equal(t, "a", sorted[1].(value.Object)["name"])
}

func TestReverseTwiceIsIdentity(t *testing.T) {
	xs := []value.Value{float64(1), float64(2), float64(3)}
	assert.Equal(t, xs, query(t, "reverse (reverse @)", xs))
}

func TestFromentriesEdgeCases(t *testing.T) {
	entries := []value.Value{
		[]value.Value{float64(1), "one"},
		[]value.Value{"k"},
		[]value.Value{},
	}
	out := query(t, "@ | fromentries", entries).(value.Object)
	assert.Equal(t, "one", out["1"])
	assert.Nil(t, out["k"])
	_, hasNull := out["null"]
	assert.True(t, hasNull)
}

func TestMapkeysStringifies(t *testing.T) {
	obj := value.Object{"a": float64(1)}
	out := query(t, "mapkeys (@ + @) @", obj).(value.Object)
	assert.Equal(t, float64(1), out["aa"])
}

func TestFilterkeysAndFiltervalues(t *testing.T) {
	obj := value.Object{"ax": float64(1), "bx": float64(0), "ay": float64(2)}
	kept := query(t, `filterkeys (@ =~ (regex "^a")) @`, obj).(value.Object)
	assert.Len(t, kept, 2)

	truthy := query(t, "filtervalues @ @", obj).(value.Object)
	assert.Len(t, truthy, 2)
	_, hasBx := truthy["bx"]
	assert.False(t, hasBx)
}

func TestStringCastSortsObjectKeys(t *testing.T) {
	obj := value.Object{"b": float64(2), "a": float64(1)}
	assert.Equal(t, `{"a":1,"b":2}`, query(t, "string @", obj))
}

func TestFloatCast(t *testing.T) {
	assert.Equal(t, float64(3.5), query(t, `float "3.5"`, nil))
	assert.Equal(t, float64(1), query(t, "float true", nil))
	assert.Equal(t, float64(0), query(t, "float null", nil))
	queryErr(t, "float []", nil)
}

func TestRegexFlagValidation(t *testing.T) {
	queryErr(t, `regex "a" "x"`, nil)
	assert.Equal(t, true, query(t, `match (regex "A" "i") "abc"`, nil))
}

func TestReplaceFirstMatchOnly(t *testing.T) {
	assert.Equal(t, "xbab", query(t, `replace "a" "x" "abab"`, nil))
	assert.Equal(t, "xbab", query(t, `replace (regex "a") "x" "abab"`, nil))
	assert.Equal(t, "xbxb", query(t, `replace (regex "a" "g") "x" "abab"`, nil))
}

func TestUnaryOperators(t *testing.T) {
	assert.Equal(t, float64(-5), query(t, "-(5)", nil))
	assert.Equal(t, true, query(t, "!0", nil))
	assert.Equal(t, false, query(t, "!!0", nil))
	queryErr(t, `-"a"`, nil)
}

func TestArithmeticTypeErrors(t *testing.T) {
	queryErr(t, `1 + "a"`, nil)
	queryErr(t, `"a" * 2`, nil)
	queryErr(t, "[1] + 1", nil)
	assert.Equal(t, []value.Value{float64(1), float64(2)}, query(t, "[1] + [2]", nil))
}

func TestApplyBindsContext(t *testing.T) {
	assert.Equal(t, float64(6), query(t, "apply @ + 1 5", nil))
	obj := value.Object{"n": float64(41)}
	assert.Equal(t, float64(42), query(t, "apply n + 1 @", obj))
}

func TestLogPassesValueThrough(t *testing.T) {
	assert.Equal(t, float64(7), query(t, "log 7", nil))
}
