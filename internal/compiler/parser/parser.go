// Package parser turns a MistQL token stream into a single expression tree
// via an item/joiner amalgamation algorithm: a flat left-to-right scan
// builds parallel items/joiners lists, a precedence pass folds simple
// binary operators, and a final amalgamation pass folds space-joined runs
// into applications and pipe-joined runs into pipelines.
package parser

import (
	"github.com/mistql-lang/mistql-go/internal/compiler/ast"
	"github.com/mistql-lang/mistql-go/internal/compiler/errors"
	"github.com/mistql-lang/mistql-go/internal/compiler/lexer"
	"github.com/mistql-lang/mistql-go/internal/compiler/value"
)

// dotSymbol is the internal callee name the "." access rule rewrites onto,
// shared with the evaluator's root-escape detection.
const dotSymbol = "."

// indexSymbol is the internal callee name both the literal/postfix indexer
// syntaxes desugar onto.
const indexSymbol = "index"

// Parser holds the mutable cursor over a token stream.
type Parser struct {
	tokens []lexer.Token
	pos    int
	source string
}

// Parse lexes and parses source into a single expression tree.
func Parse(source string) (ast.Node, error) {
	tokens, err := lexer.Lex(source)
	if err != nil {
		if le, ok := err.(*lexer.LexError); ok {
			return nil, errors.Lexf(le.Pos, source, "%s", le.Message)
		}
		return nil, errors.Lexf(0, source, "%s", err)
	}

	p := &Parser{tokens: tokens, source: source}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.peek().Type != lexer.EOF {
		return nil, p.errf(p.peek().Pos, "unexpected token %s", describe(p.peek()))
	}
	return expr, nil
}

func (p *Parser) peek() lexer.Token {
	return p.tokens[p.pos]
}

func (p *Parser) advance() lexer.Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) errf(pos int, format string, args ...interface{}) error {
	return errors.Parsef(pos, p.source, format, args...)
}

// at reports whether the cursor sits on the given punctuation lexeme. Typed
// VALUE tokens never match, so a string literal like ")" cannot be mistaken
// for a closing paren.
func (p *Parser) at(lex string) bool {
	tok := p.peek()
	return tok.Type == lexer.SPECIAL && tok.Lexeme() == lex
}

// parseExpr implements the item/joiner loop. It alternates between expecting
// an item and expecting a joiner (or the end of the expression), maintaining
// the invariant that after an item |joiners| == |items|-1 and after a
// joiner |joiners| == |items|.
func (p *Parser) parseExpr() (ast.Node, error) {
	var items []ast.Node
	var joiners []lexer.Token
	needItem := true

	for {
		tok := p.peek()

		if needItem {
			item, err := p.parseItem()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			needItem = false
			continue
		}

		switch {
		case tok.Type == lexer.SPECIAL && tok.Lexeme() == dotSymbol:
			p.advance()
			nameTok := p.peek()
			if nameTok.Type != lexer.REF {
				return nil, p.errf(nameTok.Pos, "dot access must be followed by a reference, got %s", describe(nameTok))
			}
			p.advance()
			left := items[len(items)-1]
			items[len(items)-1] = &ast.Application{
				Callee: &ast.Reference{Name: dotSymbol, Offset: left.Pos()},
				Args:   []ast.Node{left, &ast.Reference{Name: nameTok.Lexeme(), Offset: nameTok.Pos}},
				Offset: left.Pos(),
			}
		case tok.Type == lexer.SPECIAL && tok.Lexeme() == "[":
			left := items[len(items)-1]
			rewritten, err := p.parseIndexer(left)
			if err != nil {
				return nil, err
			}
			items[len(items)-1] = rewritten
		case tok.Type == lexer.SPECIAL && isJoinerLexeme(tok.Lexeme()):
			joiners = append(joiners, tok)
			p.advance()
			needItem = true
		default:
			if len(items) == 0 {
				return nil, errors.ParseBug("binary-expression rewriter found an empty item list")
			}
			items, joiners = foldPrecedence(items, joiners)
			return amalgamate(items, joiners), nil
		}
	}
}

// parseItem parses one operand: a unary-prefixed expression, a parenthetical,
// an array or struct literal, or a bare value/reference token.
func (p *Parser) parseItem() (ast.Node, error) {
	tok := p.peek()
	switch {
	case tok.Type == lexer.SPECIAL && (tok.Lexeme() == "-" || tok.Lexeme() == "!"):
		return p.parseUnary()
	case tok.Type == lexer.SPECIAL && tok.Lexeme() == "(":
		return p.parseParen()
	case tok.Type == lexer.SPECIAL && tok.Lexeme() == "[":
		return p.parseArrayLiteral()
	case tok.Type == lexer.SPECIAL && tok.Lexeme() == "{":
		return p.parseObjectLiteral()
	case tok.Type == lexer.VALUE:
		p.advance()
		return literalFromToken(tok), nil
	case tok.Type == lexer.REF:
		p.advance()
		return &ast.Reference{Name: tok.Lexeme(), Offset: tok.Pos}, nil
	case tok.Type == lexer.EOF:
		return nil, p.errf(tok.Pos, "unexpected end of input")
	default:
		return nil, p.errf(tok.Pos, "unexpected token %s", describe(tok))
	}
}

// parseUnary scans a maximal run of unary prefix tokens, parses the
// following item once, then wraps it right-to-left: "!!x" == "!(!x)".
func (p *Parser) parseUnary() (ast.Node, error) {
	var ops []string
	var positions []int
	for p.peek().Type == lexer.SPECIAL && (p.peek().Lexeme() == "-" || p.peek().Lexeme() == "!") {
		ops = append(ops, p.peek().Lexeme())
		positions = append(positions, p.peek().Pos)
		p.advance()
	}

	operand, err := p.parseItem()
	if err != nil {
		return nil, err
	}
	for i := len(ops) - 1; i >= 0; i-- {
		operand = &ast.Application{
			Callee: &ast.Reference{Name: ops[i] + "/unary", Offset: positions[i]},
			Args:   []ast.Node{operand},
			Offset: positions[i],
		}
	}
	return operand, nil
}

func (p *Parser) parseParen() (ast.Node, error) {
	open := p.advance() // "("
	if p.at(")") {
		return nil, p.errf(open.Pos, "empty parenthetical")
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.at(")") {
		return nil, p.errf(p.peek().Pos, "expected ')', got %s", describe(p.peek()))
	}
	p.advance()
	return expr, nil
}

func (p *Parser) parseArrayLiteral() (ast.Node, error) {
	open := p.advance() // "["
	lit := &ast.Literal{Kind: ast.KindArray, Offset: open.Pos}
	if p.at("]") {
		p.advance()
		return lit, nil
	}
	for {
		elem, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		lit.Children = append(lit.Children, elem)
		if p.at(",") {
			p.advance()
			continue
		}
		break
	}
	if !p.at("]") {
		return nil, p.errf(p.peek().Pos, "expected ']', got %s", describe(p.peek()))
	}
	p.advance()
	return lit, nil
}

func (p *Parser) parseObjectLiteral() (ast.Node, error) {
	open := p.advance() // "{"
	lit := &ast.Literal{Kind: ast.KindObject, Offset: open.Pos}
	if p.at("}") {
		p.advance()
		return lit, nil
	}
	for {
		keyTok := p.peek()
		var key string
		switch keyTok.Type {
		case lexer.REF:
			key = keyTok.Lexeme()
			p.advance()
		case lexer.VALUE:
			p.advance()
			key = value.ToDisplayString(keyTok.Literal)
		default:
			return nil, p.errf(keyTok.Pos, "struct key must be a reference or literal, got %s", describe(keyTok))
		}
		if !p.at(":") {
			return nil, p.errf(p.peek().Pos, "expected ':', got %s", describe(p.peek()))
		}
		p.advance()
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		lit.Fields = append(lit.Fields, ast.Field{Key: key, Value: val})
		if p.at(",") {
			p.advance()
			continue
		}
		break
	}
	if !p.at("}") {
		return nil, p.errf(p.peek().Pos, "expected '}', got %s", describe(p.peek()))
	}
	p.advance()
	return lit, nil
}

// parseIndexer parses the bracket contents of a literal or postfix indexer
// and desugars it onto the internal index symbol:
// x[a] -> index(a, x); x[a:] -> index(a, null, x); x[:b] -> index(null, b, x);
// x[a:b] -> index(a, b, x); x[:] -> index(null, null, x).
func (p *Parser) parseIndexer(left ast.Node) (ast.Node, error) {
	p.advance() // "["
	var startExpr, endExpr ast.Node
	isRange := false

	if p.at(":") {
		isRange = true
		p.advance()
	} else {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		startExpr = e
		if p.at(":") {
			isRange = true
			p.advance()
		}
	}

	if isRange && !p.at("]") {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		endExpr = e
	}

	if !p.at("]") {
		return nil, p.errf(p.peek().Pos, "expected ']', got %s", describe(p.peek()))
	}
	p.advance()

	offset := left.Pos()
	indexRef := &ast.Reference{Name: indexSymbol, Offset: offset}
	if !isRange {
		return &ast.Application{Callee: indexRef, Args: []ast.Node{startExpr, left}, Offset: offset}, nil
	}
	return &ast.Application{
		Callee: indexRef,
		Args:   []ast.Node{nullNode(startExpr, offset), nullNode(endExpr, offset), left},
		Offset: offset,
	}, nil
}

func nullNode(n ast.Node, offset int) ast.Node {
	if n != nil {
		return n
	}
	return &ast.Literal{Kind: ast.KindNull, Offset: offset}
}

func literalFromToken(tok lexer.Token) ast.Node {
	switch tok.Kind {
	case lexer.KindString:
		return &ast.Literal{Kind: ast.KindString, Scalar: tok.Literal, Offset: tok.Pos}
	case lexer.KindNumber:
		return &ast.Literal{Kind: ast.KindNumber, Scalar: tok.Literal, Offset: tok.Pos}
	case lexer.KindBool:
		return &ast.Literal{Kind: ast.KindBool, Scalar: tok.Literal, Offset: tok.Pos}
	default:
		return &ast.Literal{Kind: ast.KindNull, Offset: tok.Pos}
	}
}

func describe(tok lexer.Token) string {
	switch tok.Type {
	case lexer.EOF:
		return "end of input"
	case lexer.VALUE:
		return value.ToDisplayString(tok.Literal)
	default:
		return tok.Lexeme()
	}
}
