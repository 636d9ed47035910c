package typeinfer

import (
	"github.com/quack-lang/quackc/internal/ast"
	"github.com/quack-lang/quackc/internal/catalog"
	"github.com/quack-lang/quackc/internal/config"
	"github.com/quack-lang/quackc/internal/diagnostics"
)

// checkFormalConformance asserts that every formal parameter's stored
// method_locals type still equals its declaration. An assignment to a
// formal inside the method body joins it like any other local, so a
// mismatch means the body assigns the parameter a value outside its
// declared type.
func checkFormalConformance(program *ast.Node, cat *catalog.Catalog) []*diagnostics.DiagnosticError {
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
			name := ast.MethodName(m)
			for _, fa := range ast.FormalArgs(ast.MethodFormalArgsNode(m)) {
				got := rec.MethodLocals[name][fa.Name]
				if got != fa.Type {
					errs = append(errs, diagnostics.NewError(diagnostics.ErrA003, m.Tok,
						"formal parameter \""+fa.Name+"\" of "+className+"."+name+
							" inferred as "+got+", declared as "+fa.Type))
				}
			}
		}
	}
	return errs
}

// checkBooleanConformance walks every if/while condition and asserts its
// inferred type is a subtype of Boolean. The operands of and/or/not are not
// checked: a cond_and, cond_or or cond_not node is typed Boolean whatever
// its operands are.
func checkBooleanConformance(program *ast.Node, cat *catalog.Catalog) []*diagnostics.DiagnosticError {
	var errs []*diagnostics.DiagnosticError
	for _, c := range program.Children {
		clazz := c.(ast.NodeChild).Node
		className := ast.ClazzName(clazz)
		body := ast.ClazzBody(clazz)
		for _, mc := range body.Children {
			m := mc.(ast.NodeChild).Node
			cx := ctx{cat: cat, class: className, method: ast.MethodName(m), changed: new(bool)}
			checkBlockBooleanConformance(cx, ast.MethodBody(m), &errs)
		}
	}
	return errs
}

func checkBlockBooleanConformance(c ctx, block *ast.Node, errs *[]*diagnostics.DiagnosticError) {
	for _, ch := range block.Children {
		checkStmtBooleanConformance(c, ch.(ast.NodeChild).Node, errs)
	}
}

func checkStmtBooleanConformance(c ctx, n *ast.Node, errs *[]*diagnostics.DiagnosticError) {
	switch n.Kind {
	case ast.KindIfStructure:
		requireBoolean(c, n.Child(0), errs)
		checkBlockBooleanConformance(c, n.Child(1), errs)
		if n.NumChildren() == 3 {
			elseChild := n.Child(2)
			if elseChild.Kind == ast.KindIfStructure {
				checkStmtBooleanConformance(c, elseChild, errs)
			} else {
				checkBlockBooleanConformance(c, elseChild, errs)
			}
		}
	case ast.KindWhileStructure:
		requireBoolean(c, n.Child(0), errs)
		checkBlockBooleanConformance(c, n.Child(1), errs)
	}
}

func requireBoolean(c ctx, expr *ast.Node, errs *[]*diagnostics.DiagnosticError) {
	t := c.exprType(expr)
	if !IsSubtype(c.cat, t, Type(config.BooleanClassName)) {
		*errs = append(*errs, diagnostics.NewError(diagnostics.ErrA003, expr.Tok,
			"condition must be a Boolean, got "+string(t)))
	}
}
