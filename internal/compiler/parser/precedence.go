package parser

import (
	"github.com/mistql-lang/mistql-go/internal/compiler/ast"
	"github.com/mistql-lang/mistql-go/internal/compiler/lexer"
)

// precedenceLevels lists the simple binary operator tiers tightest-first.
// Space (application) and "|" (pipeline) are amalgamating operators and are
// deliberately excluded: they are folded afterward.
var precedenceLevels = [][]string{
	{"*", "/", "%"},
	{"+", "-"},
	{"<", ">", "<=", ">="},
	{"==", "!=", "=~"},
	{"&&"},
	{"||"},
}

var binaryOpSet = func() map[string]bool {
	set := map[string]bool{}
	for _, level := range precedenceLevels {
		for _, op := range level {
			set[op] = true
		}
	}
	return set
}()

func isJoinerLexeme(lex string) bool {
	return lex == " " || lex == "|" || binaryOpSet[lex]
}

// foldPrecedence reduces items/joiners tightest-precedence-first, left
// associatively at each tier, leaving only the amalgamating "space"/"|"
// joiners for the caller's amalgamation pass.
func foldPrecedence(items []ast.Node, joiners []lexer.Token) ([]ast.Node, []lexer.Token) {
	for _, level := range precedenceLevels {
		set := map[string]bool{}
		for _, op := range level {
			set[op] = true
		}
		items, joiners = foldLevel(items, joiners, set)
	}
	return items, joiners
}

func foldLevel(items []ast.Node, joiners []lexer.Token, level map[string]bool) ([]ast.Node, []lexer.Token) {
	if len(items) == 0 {
		return items, joiners
	}
	outItems := []ast.Node{items[0]}
	var outJoiners []lexer.Token
	for i, j := range joiners {
		right := items[i+1]
		if level[j.Lexeme()] {
			left := outItems[len(outItems)-1]
			outItems[len(outItems)-1] = &ast.Application{
				Callee: &ast.Reference{Name: j.Lexeme(), Offset: j.Pos},
				Args:   []ast.Node{left, right},
				Offset: j.Pos,
			}
		} else {
			outItems = append(outItems, right)
			outJoiners = append(outJoiners, j)
		}
	}
	return outItems, outJoiners
}

// amalgamate folds the remaining space/"|" joiners: each maximal
// space-joined run becomes one Application of its first item to the rest,
// and the resulting stages, if more than one, become a Pipeline.
func amalgamate(items []ast.Node, joiners []lexer.Token) ast.Node {
	var stages []ast.Node
	groupStart := 0

	flushGroup := func(end int) {
		if end == groupStart {
			stages = append(stages, items[groupStart])
			return
		}
		callee := items[groupStart]
		args := append([]ast.Node{}, items[groupStart+1:end+1]...)
		stages = append(stages, &ast.Application{Callee: callee, Args: args, Offset: callee.Pos()})
	}

	for idx, j := range joiners {
		if j.Lexeme() == "|" {
			flushGroup(idx)
			groupStart = idx + 1
		}
	}
	flushGroup(len(items) - 1)

	if len(stages) == 1 {
		return stages[0]
	}
	return &ast.Pipeline{Stages: stages, Offset: stages[0].Pos()}
}
