// Package parser is a hand-written recursive-descent parser for Quack,
// split across files by grammar concern the way this compiler's ancestor
// splits its own parser (core/statements/expressions rather than one
// generated grammar file).
//
// The tree it produces is deliberately the *raw*, pre-desugar shape
// described by internal/transform's package doc: if/elif/else chains are
// flat, arithmetic and comparison operators are their own transient Kinds,
// identifier references carry redundant wrapper nodes, and triple-quoted
// strings are untouched. internal/transform does all of the cleanup.
package parser

import (
	"fmt"

	"github.com/quack-lang/quackc/internal/ast"
	"github.com/quack-lang/quackc/internal/lexer"
	"github.com/quack-lang/quackc/internal/token"
)

// ParseError is a syntax error with source position.
type ParseError struct {
	Tok token.Token
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: syntax error: %s (near %q)", e.Tok.Line, e.Tok.Column, e.Msg, e.Tok.Lexeme)
}

// Parser holds the one-token lookahead state used throughout the package.
type Parser struct {
	l *lexer.Lexer

	cur  token.Token
	peek token.Token
}

// New creates a Parser over source text.
func New(input string) *Parser {
	p := &Parser{l: lexer.New(input)}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) at(tt token.Type) bool  { return p.cur.Type == tt }
func (p *Parser) peekAt(tt token.Type) bool { return p.peek.Type == tt }

func (p *Parser) expect(tt token.Type) (token.Token, error) {
	if p.cur.Type != tt {
		return token.Token{}, &ParseError{Tok: p.cur, Msg: fmt.Sprintf("expected %s", tt)}
	}
	tok := p.cur
	p.next()
	return tok, nil
}

// Parse parses a full source file into a KindProgram node.
func Parse(input string) (*ast.Node, error) {
	p := New(input)
	return p.parseProgram()
}

// parseProgram : clazz* statement*  (but in practice classes and loose
// statements may interleave in the source; the parser accepts either kind
// wherever a top-level item begins).
func (p *Parser) parseProgram() (*ast.Node, error) {
	startTok := p.cur
	var children []ast.Child
	for !p.at(token.EOF) {
		if p.at(token.CLASS) {
			clazz, err := p.parseClazz()
			if err != nil {
				return nil, err
			}
			children = append(children, ast.N(clazz))
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		children = append(children, ast.N(stmt))
	}
	return ast.NewNode(ast.KindProgram, startTok, children...), nil
}

// parseClazz : "class" identifier "(" formal_args? ")" ("extends" identifier)? class_body
func (p *Parser) parseClazz() (*ast.Node, error) {
	classTok, err := p.expect(token.CLASS)
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.CNAME)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	formalArgs, err := p.parseFormalArgs()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	children := []ast.Child{ast.T(nameTok), ast.N(formalArgs)}

	if p.at(token.EXTENDS) {
		p.next()
		superTok, err := p.expect(token.CNAME)
		if err != nil {
			return nil, err
		}
		children = append(children, ast.N(ast.Ident(superTok)))
	}

	body, err := p.parseClassBody()
	if err != nil {
		return nil, err
	}
	children = append(children, ast.N(body))

	return ast.NewNode(ast.KindClazz, classTok, children...), nil
}

// parseFormalArgs : (identifier ":" identifier ("," identifier ":" identifier)*)?
func (p *Parser) parseFormalArgs() (*ast.Node, error) {
	startTok := p.cur
	var children []ast.Child
	if p.at(token.CNAME) {
		for {
			nameTok, err := p.expect(token.CNAME)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.COLON); err != nil {
				return nil, err
			}
			typeTok, err := p.expect(token.CNAME)
			if err != nil {
				return nil, err
			}
			arg := ast.NewNode(ast.KindFormalArg, nameTok, ast.T(nameTok), ast.T(typeTok))
			children = append(children, ast.N(arg))
			if p.at(token.COMMA) {
				p.next()
				continue
			}
			break
		}
	}
	return ast.NewNode(ast.KindFormalArgs, startTok, children...), nil
}

// parseClassBody : "{" statement* class_method* "}"
// The grammar separates statements from methods textually, but Quack
// programs in the wild interleave them; the parser accepts either in any
// order and C3's constructor-synthesis pass is what actually separates
// them into $constructor body vs forward-declared methods.
func (p *Parser) parseClassBody() (*ast.Node, error) {
	lbrace, err := p.expect(token.LBRACE)
	if err != nil {
		return nil, err
	}
	var children []ast.Child
	for !p.at(token.RBRACE) {
		if p.at(token.DEF) {
			m, err := p.parseClassMethod()
			if err != nil {
				return nil, err
			}
			children = append(children, ast.N(m))
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		children = append(children, ast.N(stmt))
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return ast.NewNode(ast.KindClassBody, lbrace, children...), nil
}

// parseClassMethod : "def" identifier "(" formal_args? ")" (":" identifier)? statement_block
func (p *Parser) parseClassMethod() (*ast.Node, error) {
	defTok, err := p.expect(token.DEF)
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.CNAME)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	formalArgs, err := p.parseFormalArgs()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	children := []ast.Child{ast.T(nameTok), ast.N(formalArgs)}

	if p.at(token.COLON) {
		p.next()
		retTok, err := p.expect(token.CNAME)
		if err != nil {
			return nil, err
		}
		children = append(children, ast.N(ast.Ident(retTok)))
	}

	block, err := p.parseStatementBlock()
	if err != nil {
		return nil, err
	}
	children = append(children, ast.N(block))

	return ast.NewNode(ast.KindClassMethod, defTok, children...), nil
}

// parseStatementBlock : "{" statement* "}"
func (p *Parser) parseStatementBlock() (*ast.Node, error) {
	lbrace, err := p.expect(token.LBRACE)
	if err != nil {
		return nil, err
	}
	var children []ast.Child
	for !p.at(token.RBRACE) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		children = append(children, ast.N(stmt))
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return ast.NewNode(ast.KindStatementBlock, lbrace, children...), nil
}
