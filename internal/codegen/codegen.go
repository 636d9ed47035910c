// Package codegen implements the stack-machine code generator (C7): the
// last compiler phase, run once type inference has converged and semck has
// accepted the program. It lowers each class's methods to the tiny
// stack-VM's textual instruction set, one ordered line list per class.
//
// Grounded on the reference compiler's QuackASMGen
// (original_source/hw4/code_gen.py), a Lark Visitor_Recursive with per-kind
// hooks and a handful of kinds that override the generic bottom-up walk.
// Reworked here as per-kind switch statements on an explicit generator
// struct carrying the label allocator and short-circuit slots instead of
// instance fields on a visitor object; it does not use internal/ast.Walker.
package codegen

import (
	"strconv"

	"github.com/quack-lang/quackc/internal/ast"
	"github.com/quack-lang/quackc/internal/catalog"
	"github.com/quack-lang/quackc/internal/config"
	"github.com/quack-lang/quackc/internal/token"
	"github.com/quack-lang/quackc/internal/transform"
	"github.com/quack-lang/quackc/internal/typeinfer"
)

// ClassAsm is one class's emitted assembly listing, line-ordered.
type ClassAsm struct {
	Name  string
	Lines []string
}

// Generate lowers every user class in program to its assembly listing,
// against the already-converged catalog cat. Order matches the program's
// own class declaration order (including the synthesized main class).
func Generate(program *ast.Node, cat *catalog.Catalog) []ClassAsm {
	out := make([]ClassAsm, 0, len(program.Children))
	for _, c := range program.Children {
		clazz := c.(ast.NodeChild).Node
		out = append(out, generateClass(clazz, cat))
	}
	return out
}

// line is one emitted line before final rendering: either a VM instruction
// (rendered with a leading tab) or a label marker (rendered as "NAME:"
// with no indent), matching spec.md §6's two line shapes.
type line struct {
	isLabel bool
	text    string
}

func generateClass(clazz *ast.Node, cat *catalog.Catalog) ClassAsm {
	className := ast.ClazzName(clazz)
	rec, _ := cat.Lookup(className)
	body := ast.ClazzBody(clazz)

	var lines []string
	lines = append(lines, ".class "+className+":"+rec.Superclass)
	for _, f := range fieldOrder(body) {
		lines = append(lines, ".field "+f)
	}
	for _, c := range body.Children {
		m := c.(ast.NodeChild).Node
		name := ast.MethodName(m)
		if name != config.ConstructorMethodName {
			lines = append(lines, ".method "+name+" forward")
		}
	}

	for _, c := range body.Children {
		m := c.(ast.NodeChild).Node
		lines = append(lines, "")
		lines = append(lines, generateMethod(m, className, cat)...)
	}

	return ClassAsm{Name: className, Lines: lines}
}

// fieldOrder recovers field declaration order (the order spec.md's worked
// example 5 expects) by scanning the constructor body for the first
// occurrence of each `this.<name> = …` assignment — catalog.FieldList is a
// Go map and carries no order of its own, so codegen derives it straight
// from the AST the same way the reference compiler's field_list dict
// preserved insertion order from its own fixpoint pass.
func fieldOrder(classBody *ast.Node) []string {
	var ctor *ast.Node
	for _, c := range classBody.Children {
		m := c.(ast.NodeChild).Node
		if ast.MethodName(m) == config.ConstructorMethodName {
			ctor = m
			break
		}
	}
	if ctor == nil {
		return nil
	}
	var order []string
	seen := map[string]bool{}
	var walk func(block *ast.Node)
	walk = func(block *ast.Node) {
		for _, c := range block.Children {
			n := c.(ast.NodeChild).Node
			switch n.Kind {
			case ast.KindAssignment:
				if lhand := n.Child(0); lhand.Kind == ast.KindIdentifierFieldLhandThis {
					name := ast.FieldName(lhand)
					if !seen[name] {
						seen[name] = true
						order = append(order, name)
					}
				}
			case ast.KindIfStructure:
				walk(n.Child(1))
				if n.NumChildren() == 3 {
					if elseChild := n.Child(2); elseChild.Kind == ast.KindIfStructure {
						walkStmt(elseChild, &order, seen)
					} else {
						walk(elseChild)
					}
				}
			case ast.KindWhileStructure:
				walk(n.Child(1))
			}
		}
	}
	walk(ast.MethodBody(ctor))
	return order
}

// walkStmt handles the elif-chain case of fieldOrder's scan: a nested
// if_structure occupying an else slot isn't itself a block, so it needs
// its own single-statement entry point.
func walkStmt(n *ast.Node, order *[]string, seen map[string]bool) {
	switch n.Kind {
	case ast.KindAssignment:
		if lhand := n.Child(0); lhand.Kind == ast.KindIdentifierFieldLhandThis {
			name := ast.FieldName(lhand)
			if !seen[name] {
				seen[name] = true
				*order = append(*order, name)
			}
		}
	case ast.KindIfStructure:
		walkBlockInto(n.Child(1), order, seen)
		if n.NumChildren() == 3 {
			if elseChild := n.Child(2); elseChild.Kind == ast.KindIfStructure {
				walkStmt(elseChild, order, seen)
			} else {
				walkBlockInto(elseChild, order, seen)
			}
		}
	case ast.KindWhileStructure:
		walkBlockInto(n.Child(1), order, seen)
	}
}

func walkBlockInto(block *ast.Node, order *[]string, seen map[string]bool) {
	for _, c := range block.Children {
		walkStmt(c.(ast.NodeChild).Node, order, seen)
	}
}

// labelAllocator yields fresh "<prefix>_<n>" labels, one counter per
// prefix, per spec.md §4.5 ("and_1, and_2, …"). Reset at the start of
// every method — labels never need to be unique beyond their own method.
type labelAllocator struct {
	counts map[string]int
}

func newLabelAllocator() *labelAllocator {
	return &labelAllocator{counts: map[string]int{}}
}

func (a *labelAllocator) next(prefix string) string {
	a.counts[prefix]++
	return prefix + "_" + strconv.Itoa(a.counts[prefix])
}

// methodGen carries one method body's emission state: the running line
// buffer, the label allocator, and the short-circuit destination slots
// and/or/not reads and if/while set before descending into a condition.
//
// Per DESIGN NOTES, scTrue/scFalse are saved and restored around nested
// conditionals (not overwritten and reset to empty, as the reference
// compiler does) so an inner if/while can't clobber an outer one's
// short-circuit targets.
type methodGen struct {
	cat     *catalog.Catalog
	class   string
	method  string
	lines   []line
	alloc   *labelAllocator
	scTrue  string
	scFalse string
}

func generateMethod(m *ast.Node, className string, cat *catalog.Catalog) []string {
	name := ast.MethodName(m)

	g := &methodGen{cat: cat, class: className, method: name, alloc: newLabelAllocator()}
	g.visitBlock(ast.MethodBody(m))

	formals := ast.FormalArgs(ast.MethodFormalArgsNode(m))
	argNames := make([]string, len(formals))
	isArg := map[string]bool{}
	for i, fa := range formals {
		argNames[i] = fa.Name
		isArg[fa.Name] = true
	}
	localNames := localOrder(ast.MethodBody(m), isArg)

	var out []string
	out = append(out, ".method "+name)
	if len(argNames) > 0 {
		out = append(out, ".args "+joinComma(argNames))
	}
	if len(localNames) > 0 {
		out = append(out, ".local "+joinComma(localNames))
	}
	for _, ln := range g.lines {
		if ln.isLabel {
			out = append(out, ln.text+":")
		} else {
			out = append(out, "\t"+ln.text)
		}
	}
	return out
}

func joinComma(names []string) string {
	s := ""
	for i, n := range names {
		if i > 0 {
			s += ","
		}
		s += n
	}
	return s
}

// localOrder recovers the order in which a method's locals are first
// assigned (excluding formal parameters), for the same reason fieldOrder
// does: catalog.MethodLocals is a map and spec.md's .local listing needs a
// stable, source-derived order.
func localOrder(methodBody *ast.Node, isArg map[string]bool) []string {
	var order []string
	seen := map[string]bool{}
	add := func(name string) {
		if isArg[name] || seen[name] {
			return
		}
		seen[name] = true
		order = append(order, name)
	}
	var walk func(block *ast.Node)
	var walkStmt func(n *ast.Node)
	walkStmt = func(n *ast.Node) {
		switch n.Kind {
		case ast.KindAssignment:
			if lhand := n.Child(0); lhand.Kind == ast.KindIdentifierLhand {
				add(ast.Name(lhand))
			}
		case ast.KindIfStructure:
			walk(n.Child(1))
			if n.NumChildren() == 3 {
				if elseChild := n.Child(2); elseChild.Kind == ast.KindIfStructure {
					walkStmt(elseChild)
				} else {
					walk(elseChild)
				}
			}
		case ast.KindWhileStructure:
			walk(n.Child(1))
		}
	}
	walk = func(block *ast.Node) {
		for _, c := range block.Children {
			walkStmt(c.(ast.NodeChild).Node)
		}
	}
	walk(methodBody)
	return order
}

func (g *methodGen) emit(text string) {
	g.lines = append(g.lines, line{text: text})
}

func (g *methodGen) label(name string) {
	g.lines = append(g.lines, line{isLabel: true, text: name})
}

// typeOf re-derives an already-converged expression's type straight from
// cat, mirroring typeinfer.ctx.exprType and semck's exprCtx.typeOf against
// the frozen catalog — codegen needs it to resolve the receiver class for
// field and method opcodes.
func (g *methodGen) typeOf(n *ast.Node) typeinfer.Type {
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
		return typeinfer.Type(g.class)
	case ast.KindIdentifierRhand:
		rec, _ := g.cat.Lookup(g.class)
		return typeinfer.Type(rec.MethodLocals[g.method][ast.Name(n)])
	case ast.KindIdentifierFieldRhandThis:
		rec, _ := g.cat.Lookup(g.class)
		return typeinfer.Type(rec.FieldList[ast.FieldName(n)])
	case ast.KindIdentifierFieldRhand:
		recvType := g.typeOf(n.Child(0))
		rec, ok := g.cat.Lookup(string(recvType))
		if !ok {
			return typeinfer.Bottom
		}
		return typeinfer.Type(rec.FieldList[ast.FieldName(n)])
	case ast.KindMethodInvocation:
		recvType := g.typeOf(n.Child(0))
		rec, ok := g.cat.Lookup(string(recvType))
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

func (g *methodGen) visitBlock(block *ast.Node) {
	for _, c := range block.Children {
		g.visitStatement(c.(ast.NodeChild).Node)
	}
}

func (g *methodGen) visitStatement(n *ast.Node) {
	switch n.Kind {
	case ast.KindAssignment:
		// Custom order per spec.md §4.5: RHS first, then LHS, then emit
		// the actual store — the LHS visit itself is what emits the
		// store/store_field instruction once the value is in place.
		g.visitExpr(n.Child(1))
		g.emitStore(n.Child(0))

	case ast.KindIfStructure:
		g.emitIf(n)

	case ast.KindWhileStructure:
		g.emitWhile(n)

	case ast.KindReturnStatement:
		// transform.InsertReturns rewrites every bare "return;" to
		// "return none;", so by codegen time this child always exists.
		if expr, ok := n.TryChild(0); ok {
			g.visitExpr(expr)
		}
		rec, _ := g.cat.Lookup(g.class)
		g.emit("return " + strconv.Itoa(len(rec.MethodArgs[g.method])))

	case ast.KindStatement:
		g.visitExpr(n.Child(0))

	case ast.KindTypecaseStatement:
		// identck already rejected this; unreachable once the pipeline
		// reaches codegen, kept only so the switch stays exhaustive.
	}
}

// emitStore finishes an assignment's LHS: for a plain local it emits the
// store instruction directly; for a field target it first pushes the
// receiver (literal "$" for this.f, or the already-inferred receiver
// class for e.f) and then emits store_field.
func (g *methodGen) emitStore(lhand *ast.Node) {
	switch lhand.Kind {
	case ast.KindIdentifierLhand:
		g.emit("store " + ast.Name(lhand))

	case ast.KindIdentifierFieldLhandThis:
		g.emit("load " + config.ThisSentinel)
		g.emit("store_field " + config.ThisSentinel + ":" + ast.FieldName(lhand))

	case ast.KindIdentifierFieldLhand:
		recvType := g.typeOf(lhand.Child(0))
		g.visitExpr(lhand.Child(0))
		g.emit("store_field " + string(recvType) + ":" + ast.FieldName(lhand))
	}
}

// visitExpr emits an expression's value-producing instructions, per the
// per-kind rules in spec.md §4.5.
func (g *methodGen) visitExpr(n *ast.Node) {
	switch n.Kind {
	case ast.KindIntLiteral:
		g.emit("const " + n.Tok.Lexeme)
	case ast.KindStringLiteral:
		// Triple-quoted literals were already escaped by
		// transform.CanonicalizeStrings; escaping them again would double
		// every backslash.
		lit := n.Tok.Literal
		if n.Tok.Type != token.LONG_STRING {
			lit = transform.EscapeStringLiteral(lit)
		}
		g.emit(`const "` + lit + `"`)
	case ast.KindBooleanLiteralTrue:
		g.emit("const true")
	case ast.KindBooleanLiteralFalse:
		g.emit("const false")
	case ast.KindNothingLiteral:
		g.emit("const none")

	case ast.KindThisPtr:
		g.emit("load " + config.ThisSentinel)

	case ast.KindIdentifierRhand:
		g.emit("load " + ast.Name(n))

	case ast.KindIdentifierFieldRhandThis:
		g.emit("load " + config.ThisSentinel)
		g.emit("load_field " + config.ThisSentinel + ":" + ast.FieldName(n))

	case ast.KindIdentifierFieldRhand:
		recvType := g.typeOf(n.Child(0))
		g.visitExpr(n.Child(0))
		g.emit("load_field " + string(recvType) + ":" + ast.FieldName(n))

	case ast.KindMethodInvocation:
		g.emitCall(n)

	case ast.KindObjInstantiation:
		className := n.Token(0).Lexeme
		for _, a := range n.Child(1).Children {
			g.visitExpr(a.(ast.NodeChild).Node)
		}
		g.emit("call " + className + ":" + config.ConstructorMethodName)

	case ast.KindCondAnd:
		g.emitAnd(n)
	case ast.KindCondOr:
		g.emitOr(n)
	case ast.KindCondNot:
		g.emitNot(n)
	}
}

// emitCall emits a method_invocation: the receiver, then each argument in
// source order, then the call opcode.
//
// spec.md §4.5 describes this traversal as visiting "args-then-receiver"
// in reverse child order; doing so does not reproduce spec.md §8 scenario
// 1's worked trace (`x = 3 + 4 * 2;` → const 3, const 4, const 2, call
// Int:times, call Int:plus), which only falls out of receiver-then-args
// order. This implementation follows the worked scenario — the
// unambiguous oracle — over the prose; see DESIGN.md.
func (g *methodGen) emitCall(n *ast.Node) {
	receiver := n.Child(0)
	methodName := n.Token(1).Lexeme
	argsNode := n.Child(2)

	recvType := g.typeOf(receiver)
	g.visitExpr(receiver)
	for _, a := range argsNode.Children {
		g.visitExpr(a.(ast.NodeChild).Node)
	}

	recvClass := string(recvType)
	if receiver.Kind == ast.KindThisPtr {
		recvClass = g.class
	}
	g.emit("call " + recvClass + ":" + methodName)

	rec, ok := g.cat.Lookup(recvClass)
	if ok && rec.MethodReturns[methodName] == config.NothingClassName {
		g.emit("pop")
	}
}

// emitAnd implements cond_and's short-circuit evaluation: evaluate the
// left operand, jump past the right operand if it's false, evaluate the
// right operand. Reuses an enclosing if/while's scFalse slot when one is
// active, exactly as spec.md §4.5 describes.
//
// The landing label itself is only emitted here when no enclosing slot
// is active (a bare boolean expression, e.g. "x = a and b;", with no
// if/while to land it for). When scFalse is reused, the owning if/while
// has already allocated that label and will emit it itself at the
// correct place (its own else/whileend); emitting it a second time here
// would define the same label twice in one method, tripping the
// exactly-once-per-label invariant spec.md §8 requires.
func (g *methodGen) emitAnd(n *ast.Node) {
	reused := g.scFalse != ""
	falseLabel := g.scFalse
	if !reused {
		falseLabel = g.alloc.next("and")
	}
	g.visitExpr(n.Child(0))
	g.emit("jump_ifnot " + falseLabel)
	g.visitExpr(n.Child(1))
	if !reused {
		g.label(falseLabel)
	}
}

// emitOr mirrors emitAnd for cond_or, reusing scTrue.
func (g *methodGen) emitOr(n *ast.Node) {
	reused := g.scTrue != ""
	trueLabel := g.scTrue
	if !reused {
		trueLabel = g.alloc.next("or")
	}
	g.visitExpr(n.Child(0))
	g.emit("jump_if " + trueLabel)
	g.visitExpr(n.Child(1))
	if !reused {
		g.label(trueLabel)
	}
}

// emitNot: when the child is itself a cond_and/cond_or/cond_not — the only
// kinds that consult scTrue/scFalse — and a conditional context is active
// (set by an enclosing if/while), swap the two short-circuit destinations
// and emit the child directly, so "not" costs nothing beyond re-aiming the
// jumps. Every other child kind (a plain identifier, a method call, a
// literal) pushes its value via the ordinary visitExpr path regardless of
// scTrue/scFalse, so swapping them would do nothing but leave the
// un-negated value on the stack; fall back to evaluating the child and
// calling Boolean:negate for those, and whenever no conditional context is
// active at all.
func (g *methodGen) emitNot(n *ast.Node) {
	child := n.Child(0)
	if usesShortCircuitContext(child) && (g.scTrue != "" || g.scFalse != "") {
		g.scTrue, g.scFalse = g.scFalse, g.scTrue
		g.visitExpr(child)
		g.scTrue, g.scFalse = g.scFalse, g.scTrue
		return
	}
	g.visitExpr(child)
	g.emit("call " + config.BooleanClassName + ":negate")
}

func usesShortCircuitContext(n *ast.Node) bool {
	switch n.Kind {
	case ast.KindCondAnd, ast.KindCondOr, ast.KindCondNot:
		return true
	default:
		return false
	}
}

// emitIf implements if_structure, 2- or 3-child, per spec.md §4.5.
func (g *methodGen) emitIf(n *ast.Node) {
	savedTrue, savedFalse := g.scTrue, g.scFalse

	if n.NumChildren() == 2 {
		branch1 := g.alloc.next("ifbranch1")
		ifend := g.alloc.next("ifend")
		g.scTrue, g.scFalse = branch1, ifend

		g.visitExpr(n.Child(0))
		g.emit("jump_ifnot " + ifend)
		g.label(branch1)
		g.scTrue, g.scFalse = savedTrue, savedFalse
		g.visitBlock(n.Child(1))
		g.label(ifend)
	} else {
		branch1 := g.alloc.next("ifbranch1")
		branch2 := g.alloc.next("ifbranch2")
		ifend := g.alloc.next("ifend")
		g.scTrue, g.scFalse = branch1, branch2

		g.visitExpr(n.Child(0))
		g.emit("jump_ifnot " + branch2)
		g.label(branch1)
		g.scTrue, g.scFalse = savedTrue, savedFalse
		g.visitBlock(n.Child(1))
		g.emit("jump " + ifend)
		g.label(branch2)

		elseChild := n.Child(2)
		if elseChild.Kind == ast.KindIfStructure {
			g.visitStatement(elseChild)
		} else {
			g.visitBlock(elseChild)
		}
		g.label(ifend)
	}

	g.scTrue, g.scFalse = savedTrue, savedFalse
}

// emitWhile implements while_structure per spec.md §4.5: jump straight to
// the condition test first (so a false condition never runs the body),
// loop body, condition, conditional jump back.
func (g *methodGen) emitWhile(n *ast.Node) {
	savedTrue, savedFalse := g.scTrue, g.scFalse

	loop := g.alloc.next("whileloop")
	whileend := g.alloc.next("whileend")
	cond := g.alloc.next("whilecond")
	g.scTrue, g.scFalse = loop, whileend

	g.emit("jump " + cond)
	g.label(loop)
	g.visitBlock(n.Child(1))
	g.label(cond)
	g.visitExpr(n.Child(0))
	g.emit("jump_if " + loop)
	g.label(whileend)

	g.scTrue, g.scFalse = savedTrue, savedFalse
}
