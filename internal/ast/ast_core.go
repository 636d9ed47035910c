// Package ast is the tree model shared by every compiler phase.
//
// Nodes are deliberately *not* one Go type per grammar production. Per the
// source language's own shape (every node is a kind label plus an ordered
// list of children that are either nodes or raw tokens) we model a Node as
// a tagged variant: a Kind enum and a Children slice. Each phase owns its
// own per-Kind dispatch table (see Walker) instead of a generated
// visitor interface — this keeps the four downstream phases (transform,
// identifier-usage, type inference, codegen) free to each define their own
// traversal order for the handful of kinds that need one, while sharing a
// single default bottom-up walk for everything else.
package ast

import (
	"strconv"

	"github.com/quack-lang/quackc/internal/token"
)

// Kind labels every node produced by the parser or synthesized by a
// transform pass.
type Kind string

const (
	KindProgram   Kind = "program"
	KindClazz     Kind = "clazz"
	KindClassBody Kind = "class_body"

	KindClassMethod Kind = "class_method"
	KindFormalArgs  Kind = "formal_args"
	KindFormalArg   Kind = "formal_arg"

	KindStatement      Kind = "statement"
	KindStatementBlock Kind = "statement_block"
	KindAssignment     Kind = "assignment"
	KindAssignmentDecl Kind = "assignment_decl"
	KindIfStructure    Kind = "if_structure"
	KindWhileStructure Kind = "while_structure"
	KindReturnStatement Kind = "return_statement"
	KindTypecaseStatement Kind = "typecase_statement"

	KindIdentifier            Kind = "identifier"
	KindIdentifierLhand       Kind = "identifier_lhand"
	KindIdentifierRhand       Kind = "identifier_rhand"
	KindIdentifierFieldLhand  Kind = "identifier_field_lhand"
	KindIdentifierFieldRhand  Kind = "identifier_field_rhand"
	KindIdentifierFieldLhandThis Kind = "identifier_field_lhand_this"
	KindIdentifierFieldRhandThis Kind = "identifier_field_rhand_this"

	KindThisPtr          Kind = "this_ptr"
	KindObjInstantiation Kind = "obj_instantiation"
	KindIntLiteral       Kind = "int_literal"
	KindStringLiteral    Kind = "string_literal"
	KindLongStringLiteral Kind = "longstring_literal"
	KindBooleanLiteralTrue  Kind = "boolean_literal_true"
	KindBooleanLiteralFalse Kind = "boolean_literal_false"
	KindNothingLiteral   Kind = "nothing_literal"

	KindMethodInvocation Kind = "method_invocation"
	KindMethodArgs       Kind = "method_args"
	KindMethodName       Kind = "identifier_method"

	KindCondAnd Kind = "cond_and"
	KindCondOr  Kind = "cond_or"
	KindCondNot Kind = "cond_not"

	// Transient, pre-desugar operator kinds. None of these survive past
	// the operator-to-method-lowering transform pass.
	KindMethodAdd           Kind = "method_add"
	KindMethodSub           Kind = "method_sub"
	KindMethodMul           Kind = "method_mul"
	KindMethodDiv           Kind = "method_div"
	KindMethodNeg           Kind = "method_neg"
	KindMethodEq            Kind = "method_eq"
	KindMethodLeq           Kind = "method_leq"
	KindMethodGeq           Kind = "method_geq"
	KindMethodLt            Kind = "method_lt"
	KindMethodGt            Kind = "method_gt"
	KindMethodInvocationSelf Kind = "method_invocation_self"
)

// Child is either a *Node or a token.Token — the sum type spec.md's data
// model calls for.
type Child interface {
	isChild()
}

// NodeChild wraps a *Node as a Child.
type NodeChild struct{ *Node }

func (NodeChild) isChild() {}

// TokenChild wraps a token.Token as a Child.
type TokenChild struct{ token.Token }

func (TokenChild) isChild() {}

// N wraps a node pointer as a Child for use in Children slices.
func N(n *Node) Child { return NodeChild{n} }

// T wraps a token as a Child for use in Children slices.
func T(tok token.Token) Child { return TokenChild{tok} }

// Node is a single tagged-variant AST node.
type Node struct {
	Kind     Kind
	Children []Child
	Tok      token.Token // primary token, for diagnostics
}

// NewNode builds a node of the given kind with the given children.
func NewNode(kind Kind, tok token.Token, children ...Child) *Node {
	return &Node{Kind: kind, Children: children, Tok: tok}
}

// Child returns the i'th child as *Node, panicking (an internal invariant
// violation, per spec.md §7) if it is absent or a token.
func (n *Node) Child(i int) *Node {
	c := n.Children[i]
	nc, ok := c.(NodeChild)
	if !ok {
		panic("ast: internal invariant violation: child " + strconv.Itoa(i) + " of " + string(n.Kind) + " is not a node")
	}
	return nc.Node
}

// TryChild returns the i'th child as *Node and whether it is present.
func (n *Node) TryChild(i int) (*Node, bool) {
	if i >= len(n.Children) {
		return nil, false
	}
	nc, ok := n.Children[i].(NodeChild)
	if !ok {
		return nil, false
	}
	return nc.Node, true
}

// Token returns the i'th child as a token.Token.
func (n *Node) Token(i int) token.Token {
	c := n.Children[i]
	tc, ok := c.(TokenChild)
	if !ok {
		panic("ast: internal invariant violation: child " + strconv.Itoa(i) + " of " + string(n.Kind) + " is not a token")
	}
	return tc.Token
}

// NumChildren returns len(n.Children); nil-safe.
func (n *Node) NumChildren() int {
	if n == nil {
		return 0
	}
	return len(n.Children)
}
