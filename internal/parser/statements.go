package parser

import (
	"github.com/quack-lang/quackc/internal/ast"
	"github.com/quack-lang/quackc/internal/token"
)

// parseStatement dispatches on the leading token to one of:
//
//	l_expr "=" c_expr ";"                  -> assignment
//	l_expr ":" identifier "=" c_expr ";"   -> assignment_decl
//	c_expr ";"                             -> statement (bare expression)
//	"if" ... -> if_structure (flat, pre-desugar)
//	"while" c_expr statement_block         -> while_structure
//	"return" c_expr? ";"                   -> return_statement
//	"typecase" c_expr "{" type_alt* "}"    -> typecase_statement (parsed, rejected later)
func (p *Parser) parseStatement() (*ast.Node, error) {
	switch p.cur.Type {
	case token.IF:
		return p.parseIfStructure()
	case token.WHILE:
		return p.parseWhileStructure()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.TYPECASE:
		return p.parseTypecaseStatement()
	default:
		return p.parseSimpleStatement()
	}
}

// parseSimpleStatement handles the three statement forms that start with
// an expression: bare expression statements, assignment, and
// assignment-with-declared-type. All three need arbitrary expression
// lookahead to tell apart, so the receiver expression is parsed once as a
// generic c_expr and then reinterpreted as an l_expr if '=' or ':' follows.
func (p *Parser) parseSimpleStatement() (*ast.Node, error) {
	startTok := p.cur
	expr, err := p.parseCExpr()
	if err != nil {
		return nil, err
	}

	switch p.cur.Type {
	case token.ASSIGN:
		p.next()
		lhand, err := exprToLhand(expr)
		if err != nil {
			return nil, err
		}
		rhs, err := p.parseCExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		return ast.NewNode(ast.KindAssignment, startTok, ast.N(lhand), ast.N(rhs)), nil

	case token.COLON:
		p.next()
		typeTok, err := p.expect(token.CNAME)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.ASSIGN); err != nil {
			return nil, err
		}
		lhand, err := exprToLhand(expr)
		if err != nil {
			return nil, err
		}
		rhs, err := p.parseCExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		return ast.NewNode(ast.KindAssignmentDecl, startTok, ast.N(lhand), ast.T(typeTok), ast.N(rhs)), nil

	default:
		if _, err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		return ast.NewNode(ast.KindStatement, startTok, ast.N(expr)), nil
	}
}

// exprToLhand reinterprets an already-parsed r_expr as an l_expr: a plain
// identifier becomes identifier_lhand, a field access becomes
// identifier_field_lhand(_this). Any other expression shape is a syntax
// error (cannot assign to a literal, a call result, etc).
func exprToLhand(expr *ast.Node) (*ast.Node, error) {
	switch expr.Kind {
	case ast.KindIdentifierRhand:
		return ast.NewNode(ast.KindIdentifierLhand, expr.Tok, expr.Children...), nil
	case ast.KindIdentifierFieldRhand:
		return ast.NewNode(ast.KindIdentifierFieldLhand, expr.Tok, expr.Children...), nil
	case ast.KindIdentifierFieldRhandThis:
		return ast.NewNode(ast.KindIdentifierFieldLhandThis, expr.Tok, expr.Children...), nil
	default:
		return nil, &ParseError{Tok: expr.Tok, Msg: "invalid assignment target"}
	}
}

// parseIfStructure produces the flat pre-desugar shape:
// [cond1, block1, cond2, block2, ..., condN, blockN, elseBlock?]
func (p *Parser) parseIfStructure() (*ast.Node, error) {
	ifTok, err := p.expect(token.IF)
	if err != nil {
		return nil, err
	}
	var children []ast.Child

	cond, err := p.parseCExpr()
	if err != nil {
		return nil, err
	}
	block, err := p.parseStatementBlock()
	if err != nil {
		return nil, err
	}
	children = append(children, ast.N(cond), ast.N(block))

	for p.at(token.ELIF) {
		p.next()
		cond, err := p.parseCExpr()
		if err != nil {
			return nil, err
		}
		block, err := p.parseStatementBlock()
		if err != nil {
			return nil, err
		}
		children = append(children, ast.N(cond), ast.N(block))
	}

	if p.at(token.ELSE) {
		p.next()
		elseBlock, err := p.parseStatementBlock()
		if err != nil {
			return nil, err
		}
		children = append(children, ast.N(elseBlock))
	}

	return ast.NewNode(ast.KindIfStructure, ifTok, children...), nil
}

// parseWhileStructure : "while" c_expr statement_block
func (p *Parser) parseWhileStructure() (*ast.Node, error) {
	whileTok, err := p.expect(token.WHILE)
	if err != nil {
		return nil, err
	}
	cond, err := p.parseCExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseStatementBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewNode(ast.KindWhileStructure, whileTok, ast.N(cond), ast.N(body)), nil
}

// parseReturnStatement : "return" c_expr? ";"
func (p *Parser) parseReturnStatement() (*ast.Node, error) {
	retTok, err := p.expect(token.RETURN)
	if err != nil {
		return nil, err
	}
	if p.at(token.SEMICOLON) {
		p.next()
		return ast.NewNode(ast.KindReturnStatement, retTok), nil
	}
	expr, err := p.parseCExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return ast.NewNode(ast.KindReturnStatement, retTok, ast.N(expr)), nil
}

// parseTypecaseStatement parses (but never runs) a typecase block so the
// compiler can reject it with a clear diagnostic at the identifier-usage
// phase rather than a raw syntax error — see spec's Open Questions.
func (p *Parser) parseTypecaseStatement() (*ast.Node, error) {
	tcTok, err := p.expect(token.TYPECASE)
	if err != nil {
		return nil, err
	}
	subject, err := p.parseCExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	children := []ast.Child{ast.N(subject)}
	for !p.at(token.RBRACE) {
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
		block, err := p.parseStatementBlock()
		if err != nil {
			return nil, err
		}
		alt := ast.NewNode(ast.KindStatement, nameTok, ast.T(nameTok), ast.T(typeTok), ast.N(block))
		children = append(children, ast.N(alt))
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return ast.NewNode(ast.KindTypecaseStatement, tcTok, children...), nil
}
