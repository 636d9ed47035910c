package ast

// Walker is the traversal shape internal/transform's passes use: a default
// bottom-up walk over every kind, with a per-kind override table for kinds
// whose pass handles the node's children itself. identck, typeinfer, semck
// and codegen do not use it; each recurses through its own per-kind switch.
// See DESIGN.md for why this replaces a generated Visitor interface.
type Walker struct {
	// Override, if non-nil for a Kind, is called instead of the default
	// bottom-up walk. It is responsible for visiting (or not visiting)
	// the node's own children.
	Override map[Kind]func(w *Walker, n *Node)

	// Default runs after children have been visited bottom-up, unless
	// the node's kind has an Override. May be nil.
	Default func(w *Walker, n *Node)
}

// Visit walks n, honoring w.Override for n.Kind and otherwise recursing
// into every *Node child before calling w.Default.
func (w *Walker) Visit(n *Node) {
	if n == nil {
		return
	}
	if fn, ok := w.Override[n.Kind]; ok {
		fn(w, n)
		return
	}
	for _, c := range n.Children {
		if nc, ok := c.(NodeChild); ok {
			w.Visit(nc.Node)
		}
	}
	if w.Default != nil {
		w.Default(w, n)
	}
}

// VisitChildren runs the default bottom-up walk over every *Node child of
// n, ignoring any Override table entry for n.Kind itself. Override
// implementations call this when they want the ordinary recursive
// behavior for their own children (e.g. visiting a statement block).
func (w *Walker) VisitChildren(n *Node) {
	for _, c := range n.Children {
		if nc, ok := c.(NodeChild); ok {
			w.Visit(nc.Node)
		}
	}
}
