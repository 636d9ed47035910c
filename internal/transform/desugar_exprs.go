package transform

import (
	"strings"

	"github.com/quack-lang/quackc/internal/ast"
	"github.com/quack-lang/quackc/internal/token"
)

// FlattenIfElse right-nests every if_structure's flat
// (cond,block)+,else? child list into a chain where each elif becomes a
// nested if_structure occupying the previous level's else slot, so every
// if_structure ends up with exactly 2 or 3 children.
func FlattenIfElse(program *ast.Node) {
	w := &ast.Walker{Override: map[ast.Kind]func(w *ast.Walker, n *ast.Node){
		ast.KindIfStructure: func(w *ast.Walker, n *ast.Node) {
			w.VisitChildren(n)
			n.Children = rightNestIf(n.Tok, n.Children)
		},
	}}
	w.Visit(program)
}

func rightNestIf(tok token.Token, children []ast.Child) []ast.Child {
	hasElse := len(children)%2 == 1
	var elseChild ast.Child
	if hasElse {
		elseChild = children[len(children)-1]
		children = children[:len(children)-1]
	}
	numBranches := len(children) / 2

	var nested ast.Child
	if hasElse {
		nested = elseChild
	}
	for i := numBranches - 1; i >= 0; i-- {
		cond := children[2*i]
		block := children[2*i+1]
		var branch *ast.Node
		if nested != nil {
			branch = ast.NewNode(ast.KindIfStructure, tok, cond, block, nested)
		} else {
			branch = ast.NewNode(ast.KindIfStructure, tok, cond, block)
		}
		nested = ast.N(branch)
	}
	return nested.(ast.NodeChild).Children
}

// operatorMethodNames maps each transient pre-desugar operator Kind to the
// builtin method name it lowers to.
var operatorMethodNames = map[ast.Kind]string{
	ast.KindMethodAdd:  "plus",
	ast.KindMethodSub:  "minus",
	ast.KindMethodMul:  "times",
	ast.KindMethodDiv:  "divide",
	ast.KindMethodNeg:  "negate",
	ast.KindMethodEq:   "equals",
	ast.KindMethodLeq:  "atmost",
	ast.KindMethodGeq:  "atleast",
	ast.KindMethodLt:   "less",
	ast.KindMethodGt:   "more",
}

// LowerOperators rewrites every arithmetic/comparison operator node and
// every method_invocation_self into a plain method_invocation, so codegen
// only ever has one call-shaped node to handle. The canonical shape used
// throughout this compiler (receiver, method_name, method_args) differs
// cosmetically from the reference grammar's flattened argument list — see
// DESIGN.md — but carries the same information.
func LowerOperators(program *ast.Node) {
	w := &ast.Walker{}
	w.Default = func(w *ast.Walker, n *ast.Node) {
		if name, ok := operatorMethodNames[n.Kind]; ok {
			receiver := n.Child(0)
			nameTok := n.Tok
			nameTok.Lexeme, nameTok.Literal = name, name
			var args *ast.Node
			if n.NumChildren() == 2 {
				args = ast.NewNode(ast.KindMethodArgs, n.Tok, ast.N(n.Child(1)))
			} else {
				args = ast.NewNode(ast.KindMethodArgs, n.Tok)
			}
			n.Kind = ast.KindMethodInvocation
			n.Children = []ast.Child{ast.N(receiver), ast.T(nameTok), ast.N(args)}
			return
		}
		if n.Kind == ast.KindMethodInvocationSelf {
			thisPtr := ast.Leaf(ast.KindThisPtr, n.Tok)
			methodName := n.Child(0)
			args := n.Child(1)
			n.Kind = ast.KindMethodInvocation
			n.Children = []ast.Child{ast.N(thisPtr), ast.N(methodName), ast.N(args)}
		}
	}
	w.Visit(program)
}

// CanonicalizeStrings collapses every longstring_literal into a
// string_literal, re-escaping its raw interior (newlines, quotes,
// backslashes) into the single-line quoted form the VM assembler accepts.
func CanonicalizeStrings(program *ast.Node) {
	w := &ast.Walker{Override: map[ast.Kind]func(w *ast.Walker, n *ast.Node){
		ast.KindLongStringLiteral: func(w *ast.Walker, n *ast.Node) {
			n.Kind = ast.KindStringLiteral
			n.Tok.Literal = EscapeStringLiteral(n.Tok.Literal)
		},
	}}
	w.Visit(program)
}

// EscapeStringLiteral re-escapes a string literal's raw interior (actual
// newline/tab/quote/backslash bytes, as the lexer leaves them) into the
// one-line, quote-ready form the VM assembler accepts. Exported so
// internal/codegen can apply the same escaping to ordinary (non-triple-
// quoted) string literals, which never pass through this transform pass.
func EscapeStringLiteral(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch r {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// identWrapperSlots maps every node shape that wraps a bare identifier node
// (produced by ast.Ident) to that identifier's fixed child index.
var identWrapperSlots = map[ast.Kind]int{
	ast.KindIdentifierRhand:          0,
	ast.KindIdentifierLhand:          0,
	ast.KindIdentifierFieldRhandThis: 0,
	ast.KindIdentifierFieldLhandThis: 0,
	ast.KindIdentifierFieldRhand:     1,
	ast.KindIdentifierFieldLhand:     1,
	ast.KindMethodName:               0,
}

// FlattenIdentifiers unwraps the redundant identifier/identifier_method
// wrapper node the parser leaves around every bare name reference, so that
// slot holds the CNAME token directly instead of a node.
//
// method_invocation gets the same treatment at its own child 1, but for a
// different reason: LowerOperators gives every arithmetic/comparison node
// it rewrites a bare token there directly, while the parser's own
// method_invocation/method_invocation_self (an explicit ".foo(...)" or
// "this.foo(...)" call) still carries the wrapMethodName wrapper
// (identifier_method -> identifier -> CNAME) at that slot. Every later
// phase reads the method name via n.Token(1), so the two producers must
// agree on the shape; hoisting it here (once FlattenIdentifiers has
// already reduced the wrapper's own interior to a token) keeps
// method_invocation uniform no matter which pass built it.
func FlattenIdentifiers(program *ast.Node) {
	w := &ast.Walker{}
	w.Default = func(w *ast.Walker, n *ast.Node) {
		if n.Kind == ast.KindMethodInvocation && len(n.Children) > 1 {
			if wrapper, ok := n.Children[1].(ast.NodeChild); ok && wrapper.Kind == ast.KindMethodName {
				n.Children[1] = ast.T(wrapper.Tok)
			}
		}

		slot, ok := identWrapperSlots[n.Kind]
		if !ok {
			return
		}
		if slot >= len(n.Children) {
			return
		}
		if inner, ok := n.Children[slot].(ast.NodeChild); ok && inner.Kind == ast.KindIdentifier {
			n.Children[slot] = ast.T(inner.Token(0))
		}
	}
	w.Visit(program)
}
