// Package mistql is the embeddable public API for the MistQL query
// language: parse and evaluate a query against a data value (the source is
// parsed again on every call), and let the instance's extras map extend or
// shadow the standard library.
package mistql

import (
	"github.com/mistql-lang/mistql-go/internal/compiler/ast"
	"github.com/mistql-lang/mistql-go/internal/compiler/builtins"
	"github.com/mistql-lang/mistql-go/internal/compiler/errors"
	"github.com/mistql-lang/mistql-go/internal/compiler/eval"
	"github.com/mistql-lang/mistql-go/internal/compiler/parser"
	"github.com/mistql-lang/mistql-go/internal/compiler/value"
	"github.com/mistql-lang/mistql-go/internal/hostbridge"
)

// RawFunction matches the callable contract directly: it receives its
// unevaluated argument expressions, the calling stack, and an eval
// callback, and is responsible for its own evaluation order and scope.
type RawFunction = value.Callable

// PureFunction is a host function over fully-evaluated values; Instance
// wraps it into a RawFunction by eagerly evaluating every argument in the
// caller's stack before invoking it.
type PureFunction func(args []interface{}) (interface{}, error)

// Instance is one configured MistQL engine: an immutable built-in frame
// plus whatever extras the caller registered at construction.
type Instance struct {
	bottom *value.Frame
}

// New builds an Instance whose stack's bottom frame holds the standard
// library plus extras. An extras value that is a RawFunction or a
// PureFunction (or a func of either shape) is bound as a function; any other
// value is bound as a plain data constant.
func New(extras map[string]interface{}) *Instance {
	bound := make(map[string]value.Value, len(extras))
	for name, fn := range extras {
		switch t := fn.(type) {
		case RawFunction:
			bound[name] = t
		case func([]ast.Node, *value.Stack, value.EvalFunc) (value.Value, error):
			bound[name] = value.Callable(t)
		case PureFunction:
			bound[name] = wrapPure(t)
		case func([]interface{}) (interface{}, error):
			bound[name] = wrapPure(t)
		default:
			bound[name] = hostbridge.Ingest(fn)
		}
	}
	return &Instance{bottom: builtins.Frame(bound)}
}

func wrapPure(fn PureFunction) value.Callable {
	return value.Pure(func(args []value.Value) (value.Value, error) {
		hostArgs := make([]interface{}, len(args))
		for i, a := range args {
			hostArgs[i] = hostbridge.Egress(a)
		}
		result, err := fn(hostArgs)
		if err != nil {
			return nil, err
		}
		return hostbridge.Ingest(result), nil
	})
}

// Query parses source and evaluates it against data, returning a plain Go
// value (map[string]interface{}, []interface{}, float64, string, bool, or
// nil).
func (inst *Instance) Query(source string, data interface{}) (interface{}, error) {
	tree, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}
	stack := value.NewStack(inst.bottom)
	root := hostbridge.Ingest(data)
	pushed := stack.PushContext(root)
	result, err := eval.Eval(tree, pushed)
	if err != nil {
		if qe, ok := err.(*errors.QueryError); ok {
			return nil, qe.WithSource(source)
		}
		return nil, err
	}
	return hostbridge.Egress(result), nil
}

// defaultInstance is the package-level Instance used by the package-level Query
// convenience function: the standard library with no extras.
var defaultInstance = New(nil)

// Query parses source and evaluates it against data using the standard
// library alone, with no host extras.
func Query(source string, data interface{}) (interface{}, error) {
	return defaultInstance.Query(source, data)
}
