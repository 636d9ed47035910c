package ast

import "github.com/quack-lang/quackc/internal/token"

// Convenience constructors used heavily by internal/parser and
// internal/transform. Kept separate from ast_core.go because this is
// where the grammar's concrete shapes live, not the generic Node plumbing.

// Leaf builds a childless node carrying only its own token (literals,
// this_ptr, nothing_literal, bare identifiers before flattening).
func Leaf(kind Kind, tok token.Token) *Node {
	return NewNode(kind, tok)
}

// Ident builds an identifier node wrapping a CNAME token.
func Ident(tok token.Token) *Node {
	return NewNode(KindIdentifier, tok, T(tok))
}

// Name returns the CNAME text of an identifier-shaped node (identifier,
// identifier_lhand, identifier_rhand, or any node whose first child is the
// name token after flattening).
func Name(n *Node) string {
	if n == nil {
		return ""
	}
	if len(n.Children) > 0 {
		if tc, ok := n.Children[0].(TokenChild); ok {
			return tc.Token.Lexeme
		}
		if nc, ok := n.Children[0].(NodeChild); ok {
			return Name(nc.Node)
		}
	}
	return n.Tok.Lexeme
}

// FieldName returns the field name referenced by an identifier_field_*
// node. The this-forms carry the name at child 0 (their only child); the
// receiver-qualified forms carry a receiver expression at child 0 and the
// name at child 1 (see transform.identWrapperSlots) — Name alone cannot
// tell these apart, since it always looks at child 0 first.
func FieldName(n *Node) string {
	switch n.Kind {
	case KindIdentifierFieldRhandThis, KindIdentifierFieldLhandThis:
		return n.Token(0).Lexeme
	case KindIdentifierFieldRhand, KindIdentifierFieldLhand:
		return n.Token(1).Lexeme
	default:
		return Name(n)
	}
}
