package value

import "github.com/mistql-lang/mistql-go/internal/compiler/ast"

// EvalFunc evaluates an expression node against a stack, as implemented by
// the evaluator. Built-ins receive one of these so they can control their
// own argument evaluation order and short-circuiting.
type EvalFunc func(node ast.Node, stack *Stack) (Value, error)

// Callable is the function tag of the value model. Every built-in and host
// extra is one of these: it receives its unevaluated argument expressions,
// the calling stack, and an eval callback, and is responsible for
// arity/type checking, evaluation order, and any scope it pushes.
type Callable func(args []ast.Node, stack *Stack, eval EvalFunc) (Value, error)

// Pure lifts a host function of fully-evaluated values into a Callable by
// eagerly evaluating every argument expression in the caller's stack before
// invoking fn: the convenience shape for a "pure" host function that never
// needs to control its own evaluation order.
func Pure(fn func(args []Value) (Value, error)) Callable {
	return func(args []ast.Node, stack *Stack, eval EvalFunc) (Value, error) {
		evaluated := make([]Value, len(args))
		for i, a := range args {
			v, err := eval(a, stack)
			if err != nil {
				return nil, err
			}
			evaluated[i] = v
		}
		return fn(evaluated)
	}
}
