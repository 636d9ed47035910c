package transform

import (
	"github.com/quack-lang/quackc/internal/ast"
	"github.com/quack-lang/quackc/internal/config"
	"github.com/quack-lang/quackc/internal/token"
)

// CaptureLooseStatements wraps any top-level statements that sit outside
// every clazz into a synthetic class named mainClassName, with no
// user-declared superclass (constructor synthesis fills in Obj next).
// Returns the (possibly rebuilt) program node.
func CaptureLooseStatements(program *ast.Node, mainClassName string) *ast.Node {
	var clazzes []ast.Child
	var loose []ast.Child
	for _, c := range program.Children {
		if nc, ok := c.(ast.NodeChild); ok && nc.Kind == ast.KindClazz {
			clazzes = append(clazzes, c)
			continue
		}
		loose = append(loose, c)
	}
	if len(loose) == 0 {
		return program
	}

	nameTok := token.Token{Type: token.CNAME, Lexeme: mainClassName, Literal: mainClassName, Line: program.Tok.Line, Column: program.Tok.Column}
	formalArgs := ast.NewNode(ast.KindFormalArgs, nameTok)
	body := ast.NewNode(ast.KindClassBody, nameTok, loose...)
	mainClazz := ast.NewNode(ast.KindClazz, nameTok, ast.T(nameTok), ast.N(formalArgs), ast.N(body))

	program.Children = append(clazzes, ast.N(mainClazz))
	return program
}

// SynthesizeConstructors runs over every clazz: it injects an explicit
// "extends Obj" for classes that declared none, and replaces the class
// body's loose statements with a synthesized $constructor method whose
// formal arguments are the class's own header parameters.
func SynthesizeConstructors(program *ast.Node) {
	w := &ast.Walker{Override: map[ast.Kind]func(w *ast.Walker, n *ast.Node){
		ast.KindClazz: func(w *ast.Walker, n *ast.Node) {
			w.VisitChildren(n)
			synthesizeConstructor(n)
		},
	}}
	w.Visit(program)
}

func synthesizeConstructor(clazz *ast.Node) {
	nameTok := clazz.Token(0)
	formalArgsNode := ast.ClazzFormalArgsNode(clazz)
	body := ast.ClazzBody(clazz)

	var methods []ast.Child
	var loose []ast.Child
	for _, c := range body.Children {
		if nc, ok := c.(ast.NodeChild); ok && nc.Kind == ast.KindClassMethod {
			methods = append(methods, c)
			continue
		}
		loose = append(loose, c)
	}

	ctorBody := ast.NewNode(ast.KindStatementBlock, nameTok, loose...)
	ctor := ast.NewNode(ast.KindClassMethod, nameTok,
		ast.T(tokenWithLexeme(nameTok, config.ConstructorMethodName)),
		ast.N(formalArgsNode),
		ast.N(ast.Ident(nameTok)),
		ast.N(ctorBody),
	)
	newBody := ast.NewNode(ast.KindClassBody, body.Tok, append([]ast.Child{ast.N(ctor)}, methods...)...)

	if _, hasExtends := ast.ClazzSuper(clazz); !hasExtends {
		objTok := tokenWithLexeme(nameTok, config.ObjClassName)
		clazz.Children = []ast.Child{clazz.Children[0], clazz.Children[1], ast.N(ast.Ident(objTok)), ast.N(newBody)}
		return
	}
	clazz.Children[clazz.NumChildren()-1] = ast.N(newBody)
}

func tokenWithLexeme(base token.Token, lexeme string) token.Token {
	base.Lexeme = lexeme
	base.Literal = lexeme
	return base
}

// InsertReturns appends a return_statement to every class_method body that
// doesn't already end with one, and rewrites any bare "return;" into an
// explicit "return none;". $constructor's synthesized return yields this;
// every other method's yields none.
func InsertReturns(program *ast.Node) {
	w := &ast.Walker{Override: map[ast.Kind]func(w *ast.Walker, n *ast.Node){
		ast.KindClassMethod: func(w *ast.Walker, n *ast.Node) {
			w.VisitChildren(n)
			insertReturn(n)
		},
	}}
	w.Visit(program)
}

func insertReturn(method *ast.Node) {
	isCtor := ast.MethodName(method) == config.ConstructorMethodName
	body := ast.MethodBody(method)

	rewriteBareReturnsBlock(body)

	if n := len(body.Children); n > 0 {
		if last, ok := body.Children[n-1].(ast.NodeChild); ok && last.Kind == ast.KindReturnStatement {
			return
		}
	}

	var expr *ast.Node
	if isCtor {
		expr = ast.Leaf(ast.KindThisPtr, body.Tok)
	} else {
		expr = ast.Leaf(ast.KindNothingLiteral, body.Tok)
	}
	ret := ast.NewNode(ast.KindReturnStatement, body.Tok, ast.N(expr))
	body.Children = append(body.Children, ast.N(ret))
}

// rewriteBareReturnsBlock rewrites every bare "return;" (a return_statement
// with no expression child) found anywhere in block — including nested
// inside if_structure/while_structure bodies, not just block's own top
// level — into an explicit "return none;". Every later phase (semck's
// return-conformance check, codegen's return_statement emission) assumes a
// return_statement always carries an expression; this is what keeps that
// true for every reachable return, not only the last statement of a method.
func rewriteBareReturnsBlock(block *ast.Node) {
	for i, c := range block.Children {
		nc, ok := c.(ast.NodeChild)
		if !ok {
			continue
		}
		block.Children[i] = ast.N(rewriteBareReturnsStmt(nc.Node))
	}
}

func rewriteBareReturnsStmt(n *ast.Node) *ast.Node {
	switch n.Kind {
	case ast.KindReturnStatement:
		if n.NumChildren() == 0 {
			return ast.NewNode(ast.KindReturnStatement, n.Tok, ast.N(ast.Leaf(ast.KindNothingLiteral, n.Tok)))
		}
	case ast.KindIfStructure:
		rewriteBareReturnsBlock(n.Child(1))
		if n.NumChildren() == 3 {
			elseChild := n.Child(2)
			if elseChild.Kind == ast.KindIfStructure {
				n.Children[2] = ast.N(rewriteBareReturnsStmt(elseChild))
			} else {
				rewriteBareReturnsBlock(elseChild)
			}
		}
	case ast.KindWhileStructure:
		rewriteBareReturnsBlock(n.Child(1))
	}
	return n
}
