// Package typeinfer implements the monotone fixpoint type-inference pass
// (C5): every class body is visited repeatedly, joining each local's and
// field's inferred type with the least common ancestor of its previous
// type and whatever a fresh assignment produces, until a full outer pass
// leaves the catalog unchanged. Grounded on the reference compiler's own
// fixpoint inferencer (original_source/hw4), expressed here against
// internal/catalog instead of a Python dict-of-dicts.
package typeinfer

import "github.com/quack-lang/quackc/internal/config"

// Type is a class name, or one of the two lattice sentinels.
type Type string

const (
	// Bottom is the identity element for LCA: "no information yet".
	Bottom Type = ""
	// Top absorbs any join: "incompatible / unknown". Infer reports any
	// field or local still typed Top once the fixpoint has converged.
	Top Type = "\x00TOP"
)

// classLineager is the minimal read interface LCA needs from the catalog,
// kept separate from *catalog.Catalog so this package doesn't import it
// directly for the handful of functions that only need superclass lookup.
type classLineager interface {
	Superclass(name string) (string, bool)
}

// LCA returns the least common ancestor of t1 and t2 along the class
// hierarchy rooted at config.Root, honoring the Bottom/Top sentinels.
func LCA(cl classLineager, t1, t2 Type) Type {
	if t1 == Bottom {
		return t2
	}
	if t2 == Bottom {
		return t1
	}
	if t1 == Top || t2 == Top {
		return Top
	}
	if t1 == t2 {
		return t1
	}

	l1 := lineage(cl, string(t1))
	l2 := lineage(cl, string(t2))
	if len(l1) == 0 || len(l2) == 0 || l1[0] != l2[0] {
		return Top
	}

	last := l1[0]
	for i := 1; i < len(l1) && i < len(l2); i++ {
		if l1[i] != l2[i] {
			break
		}
		last = l1[i]
	}
	return Type(last)
}

// lineage returns the chain of class names from the root ($) down to and
// including name. An unknown class name, or a superclass chain that loops
// back on itself without ever reaching the root (an inheritance cycle
// semck.checkCycles is meant to reject, but which this package cannot
// assume has run yet — see DESIGN.md), yields an empty lineage; the
// caller treats that the same as an unresolved class and returns Top.
func lineage(cl classLineager, name string) []string {
	var chain []string
	seen := map[string]bool{}
	cur := name
	for cur != config.Root {
		if seen[cur] {
			return nil
		}
		seen[cur] = true
		chain = append(chain, cur)
		super, ok := cl.Superclass(cur)
		if !ok {
			return nil
		}
		cur = super
	}
	chain = append(chain, config.Root)
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// IsSubtype reports whether sub is sub (or equal to) super along the
// hierarchy, i.e. LCA(super, sub) == super.
func IsSubtype(cl classLineager, sub, super Type) bool {
	return LCA(cl, super, sub) == super
}
