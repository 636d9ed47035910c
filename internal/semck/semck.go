// Package semck runs the semantic checks spec.md assigns to C6, after
// type inference has converged: inheritance-cycle detection via
// incremental union-find, name redefinition/collision checks, call-site
// arity and subtyping, and return-type conformance. Grounded on this
// compiler's ancestor's own two-phase "infer everything, then check"
// split (internal/analyzer runs its checks only after the symbol table
// and type graph are fully built).
package semck

import (
	"strconv"

	"github.com/quack-lang/quackc/internal/ast"
	"github.com/quack-lang/quackc/internal/catalog"
	"github.com/quack-lang/quackc/internal/config"
	"github.com/quack-lang/quackc/internal/diagnostics"
	"github.com/quack-lang/quackc/internal/token"
	"github.com/quack-lang/quackc/internal/typeinfer"
)

// Check runs every C6 check over program against the already-converged
// cat and returns every violation found.
func Check(program *ast.Node, cat *catalog.Catalog) []*diagnostics.DiagnosticError {
	var errs []*diagnostics.DiagnosticError
	errs = append(errs, checkRedefinitions(program)...)
	errs = append(errs, checkCycles(program)...)
	errs = append(errs, checkNameCollisions(program, cat)...)
	errs = append(errs, checkCallSites(program, cat)...)
	errs = append(errs, checkReturnConformance(program, cat)...)
	return errs
}

// checkRedefinitions enforces unique class names, unique method names
// within a class, and no method sharing its enclosing class's name.
func checkRedefinitions(program *ast.Node) []*diagnostics.DiagnosticError {
	var errs []*diagnostics.DiagnosticError
	seenClasses := map[string]bool{}
	for _, c := range program.Children {
		clazz := c.(ast.NodeChild).Node
		name := ast.ClazzName(clazz)
		if seenClasses[name] || catalog.IsBuiltin(name) {
			errs = append(errs, diagnostics.NewError(diagnostics.ErrA001, clazz.Tok,
				"class \""+name+"\" is already defined"))
		}
		seenClasses[name] = true

		seenMethods := map[string]bool{}
		body := ast.ClazzBody(clazz)
		for _, mc := range body.Children {
			m := mc.(ast.NodeChild).Node
			mname := ast.MethodName(m)
			if mname == name {
				errs = append(errs, diagnostics.NewError(diagnostics.ErrA001, m.Tok,
					"method \""+mname+"\" may not share its class's name"))
			}
			if seenMethods[mname] {
				errs = append(errs, diagnostics.NewError(diagnostics.ErrA001, m.Tok,
					"method \""+mname+"\" is already defined in class \""+name+"\""))
			}
			seenMethods[mname] = true
		}
	}
	return errs
}

// checkCycles detects cycles in the (class, superclass) relation using
// incremental union-find: unioning two classes that are already in the
// same component means the edge being added closes a cycle. A superclass
// that is neither a built-in nor a class of the program is reported too.
func checkCycles(program *ast.Node) []*diagnostics.DiagnosticError {
	uf := newUnionFind()
	var errs []*diagnostics.DiagnosticError
	declared := map[string]bool{}
	for _, c := range program.Children {
		declared[ast.ClazzName(c.(ast.NodeChild).Node)] = true
	}
	for _, c := range program.Children {
		clazz := c.(ast.NodeChild).Node
		name := ast.ClazzName(clazz)
		super, ok := ast.ClazzSuper(clazz)
		if !ok {
			continue
		}
		if !declared[super] && !catalog.IsBuiltin(super) {
			errs = append(errs, diagnostics.NewError(diagnostics.ErrA002, clazz.Tok,
				"class \""+name+"\" extends unknown class \""+super+"\""))
			continue
		}
		if uf.connected(name, super) {
			errs = append(errs, diagnostics.NewError(diagnostics.ErrA003, clazz.Tok,
				"inheritance cycle detected involving class \""+name+"\""))
			continue
		}
		uf.union(name, super)
	}
	return errs
}

type unionFind struct {
	parent map[string]string
}

func newUnionFind() *unionFind { return &unionFind{parent: map[string]string{}} }

func (u *unionFind) find(x string) string {
	if _, ok := u.parent[x]; !ok {
		u.parent[x] = x
	}
	if u.parent[x] != x {
		u.parent[x] = u.find(u.parent[x])
	}
	return u.parent[x]
}

func (u *unionFind) connected(a, b string) bool { return u.find(a) == u.find(b) }

func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}

// checkNameCollisions rejects any identifier appearing on either side of
// "=" that names an existing class, per spec.md §4.4.
func checkNameCollisions(program *ast.Node, cat *catalog.Catalog) []*diagnostics.DiagnosticError {
	var errs []*diagnostics.DiagnosticError
	for _, c := range program.Children {
		clazz := c.(ast.NodeChild).Node
		body := ast.ClazzBody(clazz)
		for _, mc := range body.Children {
			m := mc.(ast.NodeChild).Node
			walkCollisions(ast.MethodBody(m), cat, &errs)
		}
	}
	return errs
}

func walkCollisions(block *ast.Node, cat *catalog.Catalog, errs *[]*diagnostics.DiagnosticError) {
	for _, c := range block.Children {
		walkCollisionsStmt(c.(ast.NodeChild).Node, cat, errs)
	}
}

func walkCollisionsStmt(n *ast.Node, cat *catalog.Catalog, errs *[]*diagnostics.DiagnosticError) {
	switch n.Kind {
	case ast.KindAssignment:
		checkNameIsNotClass(n.Child(0), cat, errs)
		walkExprCollisions(n.Child(1), cat, errs)
	case ast.KindIfStructure:
		walkCollisions(n.Child(1), cat, errs)
		if n.NumChildren() == 3 {
			elseChild := n.Child(2)
			if elseChild.Kind == ast.KindIfStructure {
				walkCollisionsStmt(elseChild, cat, errs)
			} else {
				walkCollisions(elseChild, cat, errs)
			}
		}
	case ast.KindWhileStructure:
		walkCollisions(n.Child(1), cat, errs)
	}
}

func checkNameIsNotClass(lhand *ast.Node, cat *catalog.Catalog, errs *[]*diagnostics.DiagnosticError) {
	switch lhand.Kind {
	case ast.KindIdentifierLhand:
		name := ast.Name(lhand)
		if _, ok := cat.Lookup(name); ok {
			*errs = append(*errs, diagnostics.NewError(diagnostics.ErrA001, lhand.Tok,
				"\""+name+"\" collides with an existing class name"))
		}
	}
}

// walkExprCollisions is checkNameIsNotClass's RHS counterpart: it descends
// into an assignment's expression tree and flags any identifier_rhand
// naming an existing class, wherever it appears (a bare name, an operand
// of a method call, a condition of "and"/"or"/"not").
func walkExprCollisions(n *ast.Node, cat *catalog.Catalog, errs *[]*diagnostics.DiagnosticError) {
	switch n.Kind {
	case ast.KindIdentifierRhand:
		name := ast.Name(n)
		if _, ok := cat.Lookup(name); ok {
			*errs = append(*errs, diagnostics.NewError(diagnostics.ErrA001, n.Tok,
				"\""+name+"\" collides with an existing class name"))
		}
	case ast.KindIdentifierFieldRhand:
		walkExprCollisions(n.Child(0), cat, errs)
	case ast.KindMethodInvocation:
		walkExprCollisions(n.Child(0), cat, errs)
		for _, a := range n.Child(2).Children {
			walkExprCollisions(a.(ast.NodeChild).Node, cat, errs)
		}
	case ast.KindObjInstantiation:
		for _, a := range n.Child(1).Children {
			walkExprCollisions(a.(ast.NodeChild).Node, cat, errs)
		}
	case ast.KindCondAnd, ast.KindCondOr:
		walkExprCollisions(n.Child(0), cat, errs)
		walkExprCollisions(n.Child(1), cat, errs)
	case ast.KindCondNot:
		walkExprCollisions(n.Child(0), cat, errs)
	}
}

// checkCallSites enforces that every method_invocation's argument count
// matches the method's declared arity and that each argument's inferred
// type is a subtype of the corresponding declared parameter type.
func checkCallSites(program *ast.Node, cat *catalog.Catalog) []*diagnostics.DiagnosticError {
	var errs []*diagnostics.DiagnosticError
	for _, c := range program.Children {
		clazz := c.(ast.NodeChild).Node
		className := ast.ClazzName(clazz)
		body := ast.ClazzBody(clazz)
		for _, mc := range body.Children {
			m := mc.(ast.NodeChild).Node
			cx := exprCtx{cat: cat, class: className, method: ast.MethodName(m)}
			cx.walkBlock(ast.MethodBody(m), &errs)
		}
	}
	return errs
}

// exprCtx re-derives expression types the same way typeinfer.ctx does,
// reading the now-converged catalog instead of mutating it.
type exprCtx struct {
	cat    *catalog.Catalog
	class  string
	method string
}

func (cx exprCtx) walkBlock(block *ast.Node, errs *[]*diagnostics.DiagnosticError) {
	for _, c := range block.Children {
		cx.walkStatement(c.(ast.NodeChild).Node, errs)
	}
}

func (cx exprCtx) walkStatement(n *ast.Node, errs *[]*diagnostics.DiagnosticError) {
	switch n.Kind {
	case ast.KindAssignment:
		cx.walkExpr(n.Child(1), errs)
	case ast.KindIfStructure:
		cx.walkExpr(n.Child(0), errs)
		cx.walkBlock(n.Child(1), errs)
		if n.NumChildren() == 3 {
			elseChild := n.Child(2)
			if elseChild.Kind == ast.KindIfStructure {
				cx.walkStatement(elseChild, errs)
			} else {
				cx.walkBlock(elseChild, errs)
			}
		}
	case ast.KindWhileStructure:
		cx.walkExpr(n.Child(0), errs)
		cx.walkBlock(n.Child(1), errs)
	case ast.KindReturnStatement:
		if expr, ok := n.TryChild(0); ok {
			cx.walkExpr(expr, errs)
		}
	case ast.KindStatement:
		cx.walkExpr(n.Child(0), errs)
	}
}

func (cx exprCtx) walkExpr(n *ast.Node, errs *[]*diagnostics.DiagnosticError) {
	switch n.Kind {
	case ast.KindMethodInvocation:
		recvType := cx.typeOf(n.Child(0))
		cx.walkExpr(n.Child(0), errs)
		methodName := n.Token(1).Lexeme
		argNodes := n.Child(2).Children
		for _, a := range argNodes {
			cx.walkExpr(a.(ast.NodeChild).Node, errs)
		}
		cx.checkArgs(n.Tok, string(recvType), methodName, argNodes, errs)

	case ast.KindObjInstantiation:
		className := n.Token(0).Lexeme
		argNodes := n.Child(1).Children
		for _, a := range argNodes {
			cx.walkExpr(a.(ast.NodeChild).Node, errs)
		}
		cx.checkArgs(n.Tok, className, config.ConstructorMethodName, argNodes, errs)

	case ast.KindCondAnd, ast.KindCondOr:
		cx.walkExpr(n.Child(0), errs)
		cx.walkExpr(n.Child(1), errs)

	case ast.KindCondNot:
		cx.walkExpr(n.Child(0), errs)

	case ast.KindIdentifierFieldRhand:
		cx.walkExpr(n.Child(0), errs)
	}
}

// checkArgs validates a call (method or constructor) made on receiverType
// against the declared arity and parameter types of calleeName.
func (cx exprCtx) checkArgs(tok token.Token, receiverType, calleeName string, argNodes []ast.Child, errs *[]*diagnostics.DiagnosticError) {
	rec, ok := cx.cat.Lookup(receiverType)
	if !ok {
		return
	}
	declaredArgs, ok := rec.MethodArgs[calleeName]
	if !ok {
		return
	}
	if len(argNodes) != len(declaredArgs) {
		*errs = append(*errs, diagnostics.NewError(diagnostics.ErrA003, tok,
			"call to \""+calleeName+"\" passes "+strconv.Itoa(len(argNodes))+" argument(s), expected "+strconv.Itoa(len(declaredArgs))))
		return
	}
	for i, a := range argNodes {
		argType := cx.typeOf(a.(ast.NodeChild).Node)
		paramType := typeinfer.Type(declaredArgs[i])
		if !typeinfer.IsSubtype(cx.cat, argType, paramType) {
			*errs = append(*errs, diagnostics.NewError(diagnostics.ErrA003, tok,
				"argument "+strconv.Itoa(i+1)+" to \""+calleeName+"\" has type "+string(argType)+", want "+string(paramType)))
		}
	}
}

// typeOf mirrors typeinfer's exprType against the frozen, converged
// catalog (no mutation, no join — everything should already be stable).
func (cx exprCtx) typeOf(n *ast.Node) typeinfer.Type {
	switch n.Kind {
	case ast.KindIntLiteral:
		return typeinfer.Type(config.IntClassName)
	case ast.KindStringLiteral:
		return typeinfer.Type(config.StringClassName)
	case ast.KindBooleanLiteralTrue, ast.KindBooleanLiteralFalse:
		return typeinfer.Type(config.BooleanClassName)
	case ast.KindNothingLiteral:
		return typeinfer.Type(config.NothingClassName)
	case ast.KindThisPtr:
		return typeinfer.Type(cx.class)
	case ast.KindIdentifierRhand:
		rec, _ := cx.cat.Lookup(cx.class)
		return typeinfer.Type(rec.MethodLocals[cx.method][ast.Name(n)])
	case ast.KindIdentifierFieldRhandThis:
		rec, _ := cx.cat.Lookup(cx.class)
		return typeinfer.Type(rec.FieldList[ast.Name(n)])
	case ast.KindIdentifierFieldRhand:
		recvType := cx.typeOf(n.Child(0))
		rec, ok := cx.cat.Lookup(string(recvType))
		if !ok {
			return typeinfer.Bottom
		}
		return typeinfer.Type(rec.FieldList[ast.FieldName(n)])
	case ast.KindMethodInvocation:
		recvType := cx.typeOf(n.Child(0))
		rec, ok := cx.cat.Lookup(string(recvType))
		if !ok {
			return typeinfer.Bottom
		}
		return typeinfer.Type(rec.MethodReturns[n.Token(1).Lexeme])
	case ast.KindObjInstantiation:
		return typeinfer.Type(n.Token(0).Lexeme)
	case ast.KindCondAnd, ast.KindCondOr, ast.KindCondNot:
		return typeinfer.Type(config.BooleanClassName)
	default:
		return typeinfer.Bottom
	}
}

// checkReturnConformance asserts every return_statement's expression type
// is a subtype of its enclosing method's declared return type.
func checkReturnConformance(program *ast.Node, cat *catalog.Catalog) []*diagnostics.DiagnosticError {
	var errs []*diagnostics.DiagnosticError
	for _, c := range program.Children {
		clazz := c.(ast.NodeChild).Node
		className := ast.ClazzName(clazz)
		rec, ok := cat.Lookup(className)
		if !ok {
			continue
		}
		body := ast.ClazzBody(clazz)
		for _, mc := range body.Children {
			m := mc.(ast.NodeChild).Node
			mname := ast.MethodName(m)
			declared, ok := rec.MethodReturns[mname]
			if !ok {
				continue
			}
			cx := exprCtx{cat: cat, class: className, method: mname}
			walkReturns(cx, ast.MethodBody(m), typeinfer.Type(declared), &errs)
		}
	}
	return errs
}

func walkReturns(cx exprCtx, block *ast.Node, declared typeinfer.Type, errs *[]*diagnostics.DiagnosticError) {
	for _, c := range block.Children {
		walkReturnsStmt(cx, c.(ast.NodeChild).Node, declared, errs)
	}
}

func walkReturnsStmt(cx exprCtx, n *ast.Node, declared typeinfer.Type, errs *[]*diagnostics.DiagnosticError) {
	switch n.Kind {
	case ast.KindReturnStatement:
		expr, ok := n.TryChild(0)
		if !ok {
			return
		}
		got := cx.typeOf(expr)
		if !typeinfer.IsSubtype(cx.cat, got, declared) {
			*errs = append(*errs, diagnostics.NewError(diagnostics.ErrA003, n.Tok,
				"return type "+string(got)+" is not a subtype of declared return type "+string(declared)))
		}
	case ast.KindIfStructure:
		walkReturns(cx, n.Child(1), declared, errs)
		if n.NumChildren() == 3 {
			elseChild := n.Child(2)
			if elseChild.Kind == ast.KindIfStructure {
				walkReturnsStmt(cx, elseChild, declared, errs)
			} else {
				walkReturns(cx, elseChild, declared, errs)
			}
		}
	case ast.KindWhileStructure:
		walkReturns(cx, n.Child(1), declared, errs)
	}
}
