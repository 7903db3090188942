// Package ast defines the abstract syntax tree produced by the parser: a
// small sum type of literal, reference, application, and pipeline nodes.
package ast

// Node is the base interface implemented by every AST node.
type Node interface {
	Pos() int
	node()
}

// LiteralKind narrows a Literal node to one of the six JSON-like shapes.
type LiteralKind int

const (
	// KindString marks a string literal.
	KindString LiteralKind = iota
	// KindNumber marks a numeric literal.
	KindNumber
	// KindBool marks a boolean literal.
	KindBool
	// KindNull marks the null literal.
	KindNull
	// KindArray marks an array literal; Children holds the element expressions.
	KindArray
	// KindObject marks an object literal; Fields holds its (key, expr) pairs.
	KindObject
)

// Field is one key/value pair of an object literal, in source order.
type Field struct {
	Key   string
	Value Node
}

// Literal is a literal value: a scalar (string/number/bool/null) or a
// compound (array/object) whose children are themselves expressions.
type Literal struct {
	Kind     LiteralKind
	Scalar   interface{} // valid when Kind is string/number/bool/null
	Children []Node      // valid when Kind == KindArray
	Fields   []Field     // valid when Kind == KindObject
	Offset   int
}

func (l *Literal) node()    {}
func (l *Literal) Pos() int { return l.Offset }

// Reference is a bare identifier, or the special names "@" (context) and "$"
// (root-scope escape).
type Reference struct {
	Name   string
	Offset int
}

func (r *Reference) node()    {}
func (r *Reference) Pos() int { return r.Offset }

// Application is a callee applied to a sequence of unevaluated argument
// expressions: ordinary function calls, operators, and indexing all desugar
// to this one shape.
type Application struct {
	Callee Node
	Args   []Node
	Offset int
}

func (a *Application) node()    {}
func (a *Application) Pos() int { return a.Offset }

// Pipeline is a chain of at least two stages, each of which receives the
// previous stage's result as its implicit trailing argument and as "@".
type Pipeline struct {
	Stages []Node
	Offset int
}

func (p *Pipeline) node()    {}
func (p *Pipeline) Pos() int { return p.Offset }
