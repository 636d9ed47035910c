package typeinfer

import (
	"github.com/quack-lang/quackc/internal/ast"
	"github.com/quack-lang/quackc/internal/catalog"
	"github.com/quack-lang/quackc/internal/config"
	"github.com/quack-lang/quackc/internal/diagnostics"
)

// maxOuterPasses bounds the fixpoint loop. The lattice has finite height
// (the class hierarchy's depth), so convergence is guaranteed well under
// this; it exists only as a backstop against a future bug in the join
// rules turning this into an infinite loop.
const maxOuterPasses = 10000

// ctx carries the per-method state an inference visit needs: which class
// and method we're in (for this_ptr, field lookups, and method_locals
// keys) and whether a value changed this outer pass.
type ctx struct {
	cat     *catalog.Catalog
	class   string
	method  string
	changed *bool
}

// Infer runs the fixpoint to convergence, mutating cat in place, then
// performs the post-convergence checks spec.md assigns to this phase:
// formal-parameter type conformance, Boolean-conformance of every if/while
// condition, and no field or local whose joined type is Top. Returns any
// errors found; an empty slice means OK.
func Infer(program *ast.Node, cat *catalog.Catalog) []*diagnostics.DiagnosticError {
	registerClassSkeletons(program, cat)

	for pass := 0; pass < maxOuterPasses; pass++ {
		changed := false
		for _, c := range program.Children {
			clazz := c.(ast.NodeChild).Node
			visitClass(clazz, cat, &changed)
		}
		if !changed {
			break
		}
	}

	var errs []*diagnostics.DiagnosticError
	errs = append(errs, checkFormalConformance(program, cat)...)
	errs = append(errs, checkBooleanConformance(program, cat)...)
	for _, c := range program.Children {
		clazz := c.(ast.NodeChild).Node
		rec, _ := cat.Lookup(ast.ClazzName(clazz))
		vars := []map[string]string{rec.FieldList}
		for _, locals := range rec.MethodLocals {
			vars = append(vars, locals)
		}
		for _, m := range vars {
			for name, t := range m {
				if Type(t) == Top {
					errs = append(errs, diagnostics.NewError(diagnostics.ErrA003, clazz.Tok, "\""+name+"\" is assigned values with no common type"))
				}
			}
		}
	}
	return errs
}

// registerClassSkeletons performs the one-time-per-class setup spec.md's
// clazz rule describes: if a class isn't yet in the catalog, deep-copy its
// declared superclass's record as a starting point (inheriting its
// fields/methods), then overwrite superclass and clear method_locals so
// this class's own locals are inferred fresh.
func registerClassSkeletons(program *ast.Node, cat *catalog.Catalog) {
	// A user class may extend another user class declared later in the
	// source, so repeat until a full round registers nothing new
	// (bounded by the number of classes: each round resolves at least
	// one more link in the longest extends chain).
	for round := 0; round <= len(program.Children); round++ {
		registeredAny := false
		for _, c := range program.Children {
			clazz := c.(ast.NodeChild).Node
			name := ast.ClazzName(clazz)
			if _, ok := cat.Lookup(name); ok {
				continue
			}
			super, _ := ast.ClazzSuper(clazz)
			if _, ok := cat.Lookup(super); !ok {
				continue
			}
			rec := deepCopyFrom(cat, super)
			rec.Superclass = super
			rec.MethodLocals = map[string]map[string]string{}
			cat.Define(name, rec)
			registeredAny = true
		}
		if !registeredAny {
			break
		}
	}
	// Any class whose superclass never resolved (cycle, or extends an
	// undeclared name) still needs a catalog entry so later passes don't
	// nil-panic; semck's cycle/unknown-type checks are what reject it.
	for _, c := range program.Children {
		clazz := c.(ast.NodeChild).Node
		name := ast.ClazzName(clazz)
		if _, ok := cat.Lookup(name); ok {
			continue
		}
		super, _ := ast.ClazzSuper(clazz)
		rec := deepCopyFrom(cat, super)
		rec.Superclass = super
		cat.Define(name, rec)
	}
}

func deepCopyFrom(cat *catalog.Catalog, superName string) *catalog.ClassRecord {
	base, ok := cat.Lookup(superName)
	rec := &catalog.ClassRecord{
		FieldList:      map[string]string{},
		MethodReturns:  map[string]string{},
		MethodArgs:     map[string][]string{},
		MethodArgNames: map[string][]string{},
		MethodLocals:   map[string]map[string]string{},
	}
	if !ok {
		return rec
	}
	for k, v := range base.FieldList {
		rec.FieldList[k] = v
	}
	for k, v := range base.MethodReturns {
		rec.MethodReturns[k] = v
	}
	for k, v := range base.MethodArgs {
		rec.MethodArgs[k] = append([]string{}, v...)
	}
	for k, v := range base.MethodArgNames {
		rec.MethodArgNames[k] = append([]string{}, v...)
	}
	return rec
}

func visitClass(clazz *ast.Node, cat *catalog.Catalog, changed *bool) {
	className := ast.ClazzName(clazz)
	rec, _ := cat.Lookup(className)
	if super, ok := ast.ClazzSuper(clazz); ok {
		rec.Superclass = super
	}

	body := ast.ClazzBody(clazz)
	for _, c := range body.Children {
		method := c.(ast.NodeChild).Node
		visitMethod(method, className, cat, changed)
	}
}

func visitMethod(method *ast.Node, className string, cat *catalog.Catalog, changed *bool) {
	name := ast.MethodName(method)
	rec, _ := cat.Lookup(className)

	if retType, ok := ast.MethodReturnType(method); ok {
		rec.MethodReturns[name] = retType
	}

	formals := ast.FormalArgs(ast.MethodFormalArgsNode(method))
	argTypes := make([]string, len(formals))
	argNames := make([]string, len(formals))
	for i, fa := range formals {
		argTypes[i] = fa.Type
		argNames[i] = fa.Name
	}
	rec.MethodArgs[name] = argTypes
	rec.MethodArgNames[name] = argNames

	if rec.MethodLocals[name] == nil {
		rec.MethodLocals[name] = map[string]string{}
	}
	for _, fa := range formals {
		if _, ok := rec.MethodLocals[name][fa.Name]; !ok {
			rec.MethodLocals[name][fa.Name] = fa.Type
		}
	}

	c := ctx{cat: cat, class: className, method: name, changed: changed}
	c.visitBlock(ast.MethodBody(method))
}

func (c ctx) localType(name string) Type {
	rec, _ := c.cat.Lookup(c.class)
	if t, ok := rec.MethodLocals[c.method][name]; ok {
		return Type(t)
	}
	return Bottom
}

func (c ctx) setLocalType(name string, t Type) {
	rec, _ := c.cat.Lookup(c.class)
	cur := rec.MethodLocals[c.method][name]
	if string(t) != cur {
		rec.MethodLocals[c.method][name] = string(t)
		*c.changed = true
	}
}

func (c ctx) fieldType(onClass, name string) Type {
	rec, ok := c.cat.Lookup(onClass)
	if !ok {
		return Bottom
	}
	if t, ok := rec.FieldList[name]; ok {
		return Type(t)
	}
	return Bottom
}

func (c ctx) setFieldType(onClass, name string, t Type) {
	rec, ok := c.cat.Lookup(onClass)
	if !ok {
		return
	}
	cur := rec.FieldList[name]
	if string(t) != cur {
		rec.FieldList[name] = string(t)
		*c.changed = true
	}
}

func (c ctx) visitBlock(block *ast.Node) {
	for _, ch := range block.Children {
		c.visitStatement(ch.(ast.NodeChild).Node)
	}
}

func (c ctx) visitStatement(n *ast.Node) {
	switch n.Kind {
	case ast.KindAssignmentDecl:
		// "x : T = expr" : rewrite to a plain assignment and fall through,
		// per spec.md's C5 rule, joining the declared type in first.
		lhand := n.Child(0)
		declared := Type(n.Token(1).Lexeme)
		rhs := n.Child(2)
		n.Kind = ast.KindAssignment
		n.Children = []ast.Child{ast.N(lhand), ast.N(rhs)}
		c.assign(lhand, rhs, declared)

	case ast.KindAssignment:
		c.assign(n.Child(0), n.Child(1), Bottom)

	case ast.KindIfStructure:
		c.exprType(n.Child(0))
		c.visitBlock(n.Child(1))
		if n.NumChildren() == 3 {
			elseChild := n.Child(2)
			if elseChild.Kind == ast.KindIfStructure {
				c.visitStatement(elseChild)
			} else {
				c.visitBlock(elseChild)
			}
		}

	case ast.KindWhileStructure:
		c.exprType(n.Child(0))
		c.visitBlock(n.Child(1))

	case ast.KindReturnStatement:
		if expr, ok := n.TryChild(0); ok {
			c.exprType(expr)
		}

	case ast.KindStatement:
		c.exprType(n.Child(0))

	case ast.KindTypecaseStatement:
		// Left to internal/identck to reject; nothing to infer here.
	}
}

// assign joins the lhs's current type with the RHS's inferred type (and,
// for assignment_decl, the declared type too), storing the result back
// onto whichever target (local or field) the lhs names.
func (c ctx) assign(lhand, rhs *ast.Node, declared Type) {
	rhsType := c.exprType(rhs)

	switch lhand.Kind {
	case ast.KindIdentifierLhand:
		name := ast.Name(lhand)
		cur := c.localType(name)
		joined := LCA(c.cat, LCA(c.cat, cur, declared), rhsType)
		c.setLocalType(name, joined)

	case ast.KindIdentifierFieldLhandThis:
		name := ast.Name(lhand)
		cur := c.fieldType(c.class, name)
		joined := LCA(c.cat, LCA(c.cat, cur, declared), rhsType)
		c.setFieldType(c.class, name, joined)

	case ast.KindIdentifierFieldLhand:
		recvType := c.exprType(lhand.Child(0))
		name := ast.FieldName(lhand)
		cur := c.fieldType(string(recvType), name)
		joined := LCA(c.cat, LCA(c.cat, cur, declared), rhsType)
		c.setFieldType(string(recvType), name, joined)
	}
}

func (c ctx) exprType(n *ast.Node) Type {
	switch n.Kind {
	case ast.KindIntLiteral:
		return Type(config.IntClassName)
	case ast.KindStringLiteral:
		return Type(config.StringClassName)
	case ast.KindBooleanLiteralTrue, ast.KindBooleanLiteralFalse:
		return Type(config.BooleanClassName)
	case ast.KindNothingLiteral:
		return Type(config.NothingClassName)
	case ast.KindThisPtr:
		return Type(c.class)

	case ast.KindIdentifierRhand:
		return c.localType(ast.Name(n))

	case ast.KindIdentifierFieldRhandThis:
		return c.fieldType(c.class, ast.Name(n))

	case ast.KindIdentifierFieldRhand:
		recvType := c.exprType(n.Child(0))
		return c.fieldType(string(recvType), ast.FieldName(n))

	case ast.KindMethodInvocation:
		recvType := c.exprType(n.Child(0))
		methodName := n.Token(1).Lexeme
		rec, ok := c.cat.Lookup(string(recvType))
		if !ok {
			return Bottom
		}
		for _, argChild := range n.Child(2).Children {
			c.exprType(argChild.(ast.NodeChild).Node)
		}
		if ret, ok := rec.MethodReturns[methodName]; ok {
			return Type(ret)
		}
		return Bottom

	case ast.KindObjInstantiation:
		for _, argChild := range n.Child(1).Children {
			c.exprType(argChild.(ast.NodeChild).Node)
		}
		return Type(n.Token(0).Lexeme)

	case ast.KindCondAnd, ast.KindCondOr:
		c.exprType(n.Child(0))
		c.exprType(n.Child(1))
		return Type(config.BooleanClassName)

	case ast.KindCondNot:
		c.exprType(n.Child(0))
		return Type(config.BooleanClassName)

	default:
		return Bottom
	}
}
