package ast

// FormalArg is a single "name:Type" parameter read out of a formal_args
// node. Not a Kind of its own node payload beyond KindFormalArg — this is
// the typed accessor callers use instead of indexing Children by hand.
type FormalArg struct {
	Name string
	Type string
}

// FormalArgs reads the ordered parameter list out of a formal_args node
// (the node itself, not its parent).
func FormalArgs(formalArgsNode *Node) []FormalArg {
	if formalArgsNode == nil {
		return nil
	}
	args := make([]FormalArg, 0, len(formalArgsNode.Children))
	for _, c := range formalArgsNode.Children {
		nc, ok := c.(NodeChild)
		if !ok {
			continue
		}
		fa := nc.Node
		args = append(args, FormalArg{
			Name: fa.Token(0).Lexeme,
			Type: fa.Token(1).Lexeme,
		})
	}
	return args
}

// ClazzName returns the declared name of a clazz node.
func ClazzName(clazz *Node) string {
	return clazz.Token(0).Lexeme
}

// ClazzFormalArgsNode returns the clazz's formal_args child.
func ClazzFormalArgsNode(clazz *Node) *Node {
	return clazz.Child(1)
}

// ClazzSuper returns the declared superclass name and whether an "extends"
// clause was present. Only meaningful before the constructor-synthesis
// transform pass injects an explicit Obj superclass for classes that lack
// one — after transforms every clazz node has 4 children.
func ClazzSuper(clazz *Node) (name string, ok bool) {
	if clazz.NumChildren() == 4 {
		return Name(clazz.Child(2)), true
	}
	return "", false
}

// ClazzBody returns the clazz's class_body child.
func ClazzBody(clazz *Node) *Node {
	return clazz.Child(clazz.NumChildren() - 1)
}

// MethodName returns the declared name of a class_method node.
func MethodName(m *Node) string {
	return m.Token(0).Lexeme
}

// MethodFormalArgsNode returns the method's formal_args child.
func MethodFormalArgsNode(m *Node) *Node {
	return m.Child(1)
}

// MethodReturnType returns the declared return type name and whether one
// was written explicitly (": Type" after the parameter list).
func MethodReturnType(m *Node) (name string, ok bool) {
	if m.NumChildren() == 4 {
		return Name(m.Child(2)), true
	}
	return "", false
}

// MethodBody returns the method's statement_block child.
func MethodBody(m *Node) *Node {
	return m.Child(m.NumChildren() - 1)
}
