// Package eval walks the abstract syntax tree produced by the parser against
// a scoped stack. It knows nothing about any one built-in's behavior; it
// only knows the four node shapes, the dot/"$" special form, and pipeline
// threading.
package eval

import (
	"github.com/mistql-lang/mistql-go/internal/compiler/ast"
	"github.com/mistql-lang/mistql-go/internal/compiler/errors"
	"github.com/mistql-lang/mistql-go/internal/compiler/value"
)

// DotSymbol is the internal callee name the parser emits for "." access and
// the index/unary desugarings reuse its convention for their own symbols.
const DotSymbol = "."

// Eval evaluates node against stack. It is itself the EvalFunc closed over
// by every built-in and host extra.
func Eval(node ast.Node, stack *value.Stack) (value.Value, error) {
	switch n := node.(type) {
	case *ast.Literal:
		return evalLiteral(n, stack)
	case *ast.Reference:
		return evalReference(n, stack)
	case *ast.Application:
		return evalApplication(n, stack)
	case *ast.Pipeline:
		return evalPipeline(n, stack)
	default:
		return nil, errors.Runtimef(node.Pos(), "", "unhandled AST node %T", node)
	}
}

func evalLiteral(n *ast.Literal, stack *value.Stack) (value.Value, error) {
	switch n.Kind {
	case ast.KindNull:
		return nil, nil
	case ast.KindString, ast.KindNumber, ast.KindBool:
		return n.Scalar, nil
	case ast.KindArray:
		out := make([]value.Value, len(n.Children))
		for i, child := range n.Children {
			v, err := Eval(child, stack)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case ast.KindObject:
		out := make(value.Object, len(n.Fields))
		for _, f := range n.Fields {
			v, err := Eval(f.Value, stack)
			if err != nil {
				return nil, err
			}
			out[f.Key] = v
		}
		return out, nil
	default:
		return nil, errors.Runtimef(n.Offset, "", "unhandled literal kind %d", n.Kind)
	}
}

func evalReference(n *ast.Reference, stack *value.Stack) (value.Value, error) {
	if n.Name == "$" {
		return nil, errors.Runtimef(n.Offset, "", "$ must be followed by a dot access")
	}
	v, err := stack.Lookup(n.Name)
	if err != nil {
		return nil, errors.Runtimef(n.Offset, "", "%s", err)
	}
	return v, nil
}

func evalApplication(n *ast.Application, stack *value.Stack) (value.Value, error) {
	if ref, ok := n.Callee.(*ast.Reference); ok && ref.Name == DotSymbol {
		return evalDot(n, stack)
	}

	calleeVal, err := Eval(n.Callee, stack)
	if err != nil {
		return nil, err
	}
	fn, ok := calleeVal.(value.Callable)
	if !ok {
		return nil, errors.Runtimef(n.Offset, "", "cannot call a value of type %s", value.TypeName(calleeVal))
	}
	result, err := fn(n.Args, stack, Eval)
	if err != nil {
		if qe, ok := err.(*errors.QueryError); ok {
			return nil, qe
		}
		return nil, errors.Runtimef(n.Offset, "", "%s", err)
	}
	return result, nil
}

// evalDot resolves an Application{".", [left, Reference(name)]} node,
// special-casing the "$" root-escape chain.
func evalDot(n *ast.Application, stack *value.Stack) (value.Value, error) {
	if len(n.Args) != 2 {
		return nil, errors.Runtimef(n.Offset, "", ". expects 2 arguments, got %d", len(n.Args))
	}
	left := n.Args[0]
	nameRef, ok := n.Args[1].(*ast.Reference)
	if !ok {
		return nil, errors.Runtimef(n.Offset, "", "dot access requires a reference on the right")
	}

	if skip, isEscape := rootEscapeDepth(left); isEscape {
		v, err := stack.LookupEscaped(skip, nameRef.Name)
		if err != nil {
			return nil, errors.Runtimef(n.Offset, "", "%s", err)
		}
		return v, nil
	}

	leftVal, err := Eval(left, stack)
	if err != nil {
		return nil, err
	}
	switch lv := leftVal.(type) {
	case nil:
		return nil, nil
	case value.Object:
		return lv[nameRef.Name], nil
	default:
		return nil, errors.Runtimef(n.Offset, "", "cannot access field %q of a value of type %s", nameRef.Name, value.TypeName(leftVal))
	}
}

// rootEscapeDepth reports whether node is a pure chain of "$" root-escape
// dot steps (e.g. "$", "$.$", "$.$.$") and, if so, how many frames that
// chain rebases past the innermost one. A chain ending in a non-"$" field
// name is not itself an escape node: it is the final lookup, handled by the
// caller via LookupEscaped.
func rootEscapeDepth(node ast.Node) (skip int, isEscape bool) {
	switch n := node.(type) {
	case *ast.Reference:
		if n.Name == "$" {
			return 1, true
		}
		return 0, false
	case *ast.Application:
		ref, ok := n.Callee.(*ast.Reference)
		if !ok || ref.Name != DotSymbol {
			return 0, false
		}
		leftSkip, leftEscape := rootEscapeDepth(n.Args[0])
		if !leftEscape {
			return 0, false
		}
		nameRef, ok := n.Args[1].(*ast.Reference)
		if ok && nameRef.Name == "$" {
			return leftSkip + 1, true
		}
		return 0, false
	default:
		return 0, false
	}
}

func evalPipeline(n *ast.Pipeline, stack *value.Stack) (value.Value, error) {
	acc, err := Eval(n.Stages[0], stack)
	if err != nil {
		return nil, err
	}

	for _, stage := range n.Stages[1:] {
		pushed := stack.PushContext(acc)
		var app *ast.Application
		if existing, ok := stage.(*ast.Application); ok {
			app = &ast.Application{
				Callee: existing.Callee,
				Args:   append(append([]ast.Node{}, existing.Args...), &ast.Reference{Name: "@", Offset: existing.Offset}),
				Offset: existing.Offset,
			}
		} else {
			app = &ast.Application{
				Callee: stage,
				Args:   []ast.Node{&ast.Reference{Name: "@", Offset: stage.Pos()}},
				Offset: stage.Pos(),
			}
		}
		acc, err = evalApplication(app, pushed)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}
