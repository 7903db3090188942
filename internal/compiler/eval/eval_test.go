package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mistql-lang/mistql-go/internal/compiler/builtins"
	"github.com/mistql-lang/mistql-go/internal/compiler/parser"
	"github.com/mistql-lang/mistql-go/internal/compiler/value"
)

func run(t *testing.T, source string, root value.Value) (value.Value, error) {
	t.Helper()
	node, err := parser.Parse(source)
	require.NoError(t, err)
	stack := value.NewStack(builtins.Frame(nil))
	pushed := stack.PushContext(root)
	return Eval(node, pushed)
}

func TestEvalLiterals(t *testing.T) {
	v, err := run(t, `[1, "a", true, null]`, nil)
	require.NoError(t, err)
	assert.Equal(t, []value.Value{float64(1), "a", true, nil}, v)
}

func TestEvalBareDollarIsAnError(t *testing.T) {
	_, err := run(t, `$`, value.Object{"a": float64(1)})
	assert.Error(t, err)
}

func TestEvalDotOnNonObject(t *testing.T) {
	_, err := run(t, `@.x`, float64(1))
	assert.Error(t, err)
}

func TestEvalDotOnNullShortCircuits(t *testing.T) {
	v, err := run(t, `@.x`, nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestEvalCallingNonCallable(t *testing.T) {
	_, err := run(t, `5 6`, nil)
	assert.Error(t, err)
}

func TestEvalPipelineBareStage(t *testing.T) {
	v, err := run(t, `[3, 1, 2] | sort`, nil)
	require.NoError(t, err)
	assert.Equal(t, []value.Value{float64(1), float64(2), float64(3)}, v)
}

func TestEvalDotChain(t *testing.T) {
	root := value.Object{"a": value.Object{"b": float64(9)}}
	v, err := run(t, `@.a.b`, root)
	require.NoError(t, err)
	assert.Equal(t, float64(9), v)
}

func TestEvalObjectLiteralEvaluatesChildren(t *testing.T) {
	v, err := run(t, `{sum: 1 + 2, ctx: @}`, "root")
	require.NoError(t, err)
	obj := v.(value.Object)
	assert.Equal(t, float64(3), obj["sum"])
	assert.Equal(t, "root", obj["ctx"])
}

func TestEvalPipelineUnpacksObjectStages(t *testing.T) {
	root := value.Object{"inner": value.Object{"n": float64(4)}}
	v, err := run(t, `inner | n + 1`, root)
	require.Error(t, err)
	_ = v

	// An operator stage receives @ as an extra operand and fails; wrapping the
	// arithmetic in apply lets it use the unpacked field.
	v, err = run(t, `inner | apply n + 1`, root)
	require.NoError(t, err)
	assert.Equal(t, float64(5), v)
}

func TestEvalDollarChainEscapesOneFramePerStep(t *testing.T) {
	// The root object's "keys" field shadows the builtin; "$.keys" recovers
	// the builtin from the frame below the unpacked root.
	root := value.Object{"keys": "shadowed", "a": float64(1)}
	v, err := run(t, `$.keys @`, root)
	require.NoError(t, err)
	assert.Equal(t, []value.Value{"a", "keys"}, v)

	// Applying to an object pushes a second unpacked frame, so one "$" now
	// lands on the root's fields again and a second "$." step is needed to
	// reach the builtin frame.
	v, err = run(t, `apply ($.$.keys @) @`, root)
	require.NoError(t, err)
	assert.Equal(t, []value.Value{"a", "keys"}, v)
}

func TestEvalDollarEscapePastRootFails(t *testing.T) {
	_, err := run(t, `@ | $.$.x @`, value.Object{"x": float64(1)})
	assert.Error(t, err)
}

func TestEvalReduceContextPair(t *testing.T) {
	v, err := run(t, `reduce @[0] + @[1] 10 @`, []value.Value{float64(1), float64(2)})
	require.NoError(t, err)
	assert.Equal(t, float64(13), v)
}
