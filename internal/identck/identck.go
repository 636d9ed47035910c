// Package identck implements the identifier-usage pass (C4): a
// flow-sensitive check that every local and field is definitely assigned
// before it is read, with branch-intersection semantics for if_structure
// and discard-on-exit semantics for while_structure. Modeled on the
// reference compiler's two-set (locals, this-fields) tracking described in
// spec.md §4.2; it walks statements in source order with its own per-kind
// switch (not internal/ast.Walker) and carries mutable checker state across
// sibling statements instead of rewriting nodes.
package identck

import (
	"github.com/quack-lang/quackc/internal/ast"
	"github.com/quack-lang/quackc/internal/config"
	"github.com/quack-lang/quackc/internal/diagnostics"
)

// stringSet is a small set-of-names helper; cloned at every branch point
// since Go maps share storage on plain assignment.
type stringSet map[string]struct{}

func (s stringSet) clone() stringSet {
	out := make(stringSet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

func (s stringSet) add(name string) { s[name] = struct{}{} }
func (s stringSet) has(name string) bool {
	_, ok := s[name]
	return ok
}

func intersect(a, b stringSet) stringSet {
	out := stringSet{}
	for k := range a {
		if b.has(k) {
			out[k] = struct{}{}
		}
	}
	return out
}

// checker holds the state that changes as statements are visited in
// order within one method body: defined locals, declared fields (only
// ever grown inside $constructor), and used fields (grown everywhere,
// checked against declared fields at class end).
type checker struct {
	locals        stringSet
	declaredFields stringSet
	usedFields    stringSet
	inConstructor bool
	errs          []*diagnostics.DiagnosticError
}

// Check runs the identifier-usage pass over every class in program
// (already past internal/transform, so every clazz has a $constructor and
// every if_structure has 2 or 3 children). Returns every violation found;
// an empty slice means the program passed.
func Check(program *ast.Node) []*diagnostics.DiagnosticError {
	var errs []*diagnostics.DiagnosticError
	for _, c := range program.Children {
		nc, ok := c.(ast.NodeChild)
		if !ok || nc.Kind != ast.KindClazz {
			continue
		}
		errs = append(errs, checkClass(nc.Node)...)
	}
	return errs
}

func checkClass(clazz *ast.Node) []*diagnostics.DiagnosticError {
	ck := &checker{declaredFields: stringSet{}, usedFields: stringSet{}}

	body := ast.ClazzBody(clazz)
	// $constructor must run first so declared-fields is populated before
	// other methods' used-fields are checked against it.
	var ctor *ast.Node
	var others []*ast.Node
	for _, c := range body.Children {
		m := c.(ast.NodeChild).Node
		if ast.MethodName(m) == config.ConstructorMethodName {
			ctor = m
			continue
		}
		others = append(others, m)
	}

	if ctor != nil {
		ck.checkMethod(ctor)
	}
	for _, m := range others {
		ck.checkMethod(m)
	}

	for name := range ck.usedFields {
		if !ck.declaredFields.has(name) {
			ck.errs = append(ck.errs, diagnostics.NewError(diagnostics.ErrA004, clazz.Tok,
				"field \""+name+"\" is used but never assigned in the constructor"))
		}
	}
	return ck.errs
}

func (ck *checker) checkMethod(m *ast.Node) {
	ck.locals = stringSet{}
	ck.inConstructor = ast.MethodName(m) == config.ConstructorMethodName
	for _, fa := range ast.FormalArgs(ast.MethodFormalArgsNode(m)) {
		ck.locals.add(fa.Name)
	}
	ck.visitBlock(ast.MethodBody(m))
}

func (ck *checker) visitBlock(block *ast.Node) {
	for _, c := range block.Children {
		ck.visitStatement(c.(ast.NodeChild).Node)
	}
}

func (ck *checker) visitStatement(n *ast.Node) {
	switch n.Kind {
	case ast.KindIfStructure:
		ck.visitExpr(n.Child(0))
		before := ck.locals.clone()
		beforeFields := ck.declaredFields.clone()

		ck.visitBlock(n.Child(1))
		afterThen := ck.locals.clone()
		afterThenFields := ck.declaredFields.clone()

		ck.locals = before
		ck.declaredFields = beforeFields
		if n.NumChildren() == 3 {
			elseChild := n.Child(2)
			if elseChild.Kind == ast.KindIfStructure {
				ck.visitStatement(elseChild)
			} else {
				ck.visitBlock(elseChild)
			}
		}

		ck.locals = intersect(afterThen, ck.locals)
		ck.declaredFields = intersect(afterThenFields, ck.declaredFields)

	case ast.KindWhileStructure:
		savedLocals := ck.locals.clone()
		savedFields := ck.declaredFields.clone()
		ck.visitExpr(n.Child(0))
		ck.visitBlock(n.Child(1))
		ck.locals = savedLocals
		ck.declaredFields = savedFields

	case ast.KindAssignment:
		ck.visitExpr(n.Child(1))
		ck.visitLhand(n.Child(0))

	case ast.KindAssignmentDecl:
		// "x : T = expr" still has this shape at this stage — typeinfer is
		// what rewrites it to a plain assignment, and that pass runs after
		// this one, per spec.md's pipeline ordering.
		ck.visitExpr(n.Child(2))
		ck.visitLhand(n.Child(0))

	case ast.KindReturnStatement:
		if expr, ok := n.TryChild(0); ok {
			ck.visitExpr(expr)
		}

	case ast.KindStatement:
		ck.visitExpr(n.Child(0))

	case ast.KindTypecaseStatement:
		ck.errs = append(ck.errs, diagnostics.ErrUnsupported(n.Tok, "typecase"))

	default:
		ck.errs = append(ck.errs, diagnostics.NewError(diagnostics.ErrA007, n.Tok,
			"internal invariant violation: unhandled statement kind "+string(n.Kind)))
	}
}

func (ck *checker) visitLhand(n *ast.Node) {
	switch n.Kind {
	case ast.KindIdentifierLhand:
		ck.locals.add(ast.Name(n))
	case ast.KindIdentifierFieldLhandThis:
		name := ast.Name(n)
		if ck.inConstructor {
			ck.declaredFields.add(name)
		}
	case ast.KindIdentifierFieldLhand:
		ck.visitExpr(n.Child(0))
	}
}

func (ck *checker) visitExpr(n *ast.Node) {
	switch n.Kind {
	case ast.KindIdentifierRhand:
		name := ast.Name(n)
		if !ck.locals.has(name) {
			ck.errs = append(ck.errs, diagnostics.NewError(diagnostics.ErrA004, n.Tok,
				"identifier \""+name+"\" used before assignment"))
			return
		}
	case ast.KindIdentifierFieldRhandThis:
		ck.usedFields.add(ast.Name(n))
	case ast.KindIdentifierFieldRhand:
		ck.visitExpr(n.Child(0))
	case ast.KindMethodInvocation:
		ck.visitExpr(n.Child(0))
		for _, arg := range n.Child(2).Children {
			ck.visitExpr(arg.(ast.NodeChild).Node)
		}
	case ast.KindObjInstantiation:
		for _, arg := range n.Child(1).Children {
			ck.visitExpr(arg.(ast.NodeChild).Node)
		}
	case ast.KindCondAnd, ast.KindCondOr:
		ck.visitExpr(n.Child(0))
		ck.visitExpr(n.Child(1))
	case ast.KindCondNot:
		ck.visitExpr(n.Child(0))
	case ast.KindThisPtr, ast.KindIntLiteral, ast.KindStringLiteral,
		ast.KindBooleanLiteralTrue, ast.KindBooleanLiteralFalse, ast.KindNothingLiteral:
		// leaves, always defined
	default:
		ck.errs = append(ck.errs, diagnostics.NewError(diagnostics.ErrA007, n.Tok,
			"internal invariant violation: unhandled expression kind "+string(n.Kind)))
	}
}
