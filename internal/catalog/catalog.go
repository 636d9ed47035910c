// Package catalog is the class table shared by every later compiler phase:
// identifier-usage checking, type inference, semantic checking, and code
// generation all read and, in typeinfer's case, populate the same
// *Catalog. Modeled on this compiler's ancestor's prelude-backed symbol
// table (internal/symbols): a small set of built-in records seeded once,
// user classes layered on top by Define.
package catalog

import "github.com/quack-lang/quackc/internal/config"

// ClassRecord is one class's compiled-down signature: its superclass name,
// field types, and per-method argument/return/local types. MethodArgs holds
// parameter types in order (semck's call-site checks and codegen's
// `return N` count read it); MethodArgNames holds the names in the same
// order.
type ClassRecord struct {
	Superclass      string
	FieldList       map[string]string
	MethodReturns   map[string]string
	MethodArgs      map[string][]string
	MethodArgNames  map[string][]string
	MethodLocals    map[string]map[string]string
}

func newRecord(superclass string) *ClassRecord {
	return &ClassRecord{
		Superclass:     superclass,
		FieldList:      map[string]string{},
		MethodReturns:  map[string]string{},
		MethodArgs:     map[string][]string{},
		MethodArgNames: map[string][]string{},
		MethodLocals:   map[string]map[string]string{},
	}
}

// Catalog maps class name to ClassRecord. It is built once per compilation
// unit (unlike the teacher's process-wide prelude singleton) because each
// compile may in principle run with a different built-in set under test.
type Catalog struct {
	classes map[string]*ClassRecord
}

// New returns a Catalog preloaded with Quack's five built-in classes.
func New() *Catalog {
	c := &Catalog{classes: map[string]*ClassRecord{}}
	c.seedBuiltins()
	return c
}

// Define registers a new class record, overwriting any previous definition
// of the same name (semck's checkRedefinitions is what actually rejects user
// redefinitions of built-ins or duplicate user classes; Define itself is
// unconditional so callers can rebuild incrementally during testing).
func (c *Catalog) Define(name string, rec *ClassRecord) {
	c.classes[name] = rec
}

// Lookup returns the named class's record, or nil and false if undefined.
func (c *Catalog) Lookup(name string) (*ClassRecord, bool) {
	rec, ok := c.classes[name]
	return rec, ok
}

// Superclass returns the declared superclass of name, satisfying
// typeinfer's classLineager interface for LCA traversal.
func (c *Catalog) Superclass(name string) (string, bool) {
	rec, ok := c.classes[name]
	if !ok {
		return "", false
	}
	return rec.Superclass, true
}

// Names returns every defined class name, built-ins included, in no
// particular order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.classes))
	for name := range c.classes {
		names = append(names, name)
	}
	return names
}

// IsBuiltin reports whether name is one of the five preloaded classes.
func IsBuiltin(name string) bool {
	switch name {
	case config.ObjClassName, config.IntClassName, config.BooleanClassName,
		config.StringClassName, config.NothingClassName:
		return true
	default:
		return false
	}
}

// seedBuiltins mirrors the reference interpreter's hardcoded class map:
// Obj at the root, Int/Boolean/String/Nothing each extending Obj directly
// with no fields of their own. Int.$constructor takes zero arguments (the
// reference map's "TODO" placeholder there was never filled in upstream;
// a literal int_literal is what actually produces an Int, not a call).
func (c *Catalog) seedBuiltins() {
	obj := newRecord(config.Root)
	obj.MethodReturns[config.ConstructorMethodName] = config.ObjClassName
	obj.MethodReturns["string"] = config.StringClassName
	obj.MethodReturns["print"] = config.NothingClassName
	obj.MethodReturns["equals"] = config.BooleanClassName
	obj.MethodArgs[config.ConstructorMethodName] = []string{}
	obj.MethodArgs["string"] = []string{}
	obj.MethodArgs["print"] = []string{}
	obj.MethodArgs["equals"] = []string{config.ObjClassName}
	c.Define(config.ObjClassName, obj)

	intRec := newRecord(config.ObjClassName)
	intRec.MethodReturns[config.ConstructorMethodName] = config.IntClassName
	intRec.MethodReturns["string"] = config.StringClassName
	intRec.MethodReturns["print"] = config.NothingClassName
	intRec.MethodReturns["plus"] = config.IntClassName
	intRec.MethodReturns["minus"] = config.IntClassName
	intRec.MethodReturns["times"] = config.IntClassName
	intRec.MethodReturns["divide"] = config.IntClassName
	intRec.MethodReturns["negate"] = config.IntClassName
	intRec.MethodReturns["equals"] = config.BooleanClassName
	intRec.MethodReturns["more"] = config.BooleanClassName
	intRec.MethodReturns["less"] = config.BooleanClassName
	intRec.MethodReturns["atleast"] = config.BooleanClassName
	intRec.MethodReturns["atmost"] = config.BooleanClassName
	intRec.MethodArgs[config.ConstructorMethodName] = []string{}
	intRec.MethodArgs["string"] = []string{}
	intRec.MethodArgs["print"] = []string{}
	intRec.MethodArgs["plus"] = []string{config.IntClassName}
	intRec.MethodArgs["minus"] = []string{config.IntClassName}
	intRec.MethodArgs["times"] = []string{config.IntClassName}
	intRec.MethodArgs["divide"] = []string{config.IntClassName}
	intRec.MethodArgs["negate"] = []string{}
	intRec.MethodArgs["equals"] = []string{config.ObjClassName}
	intRec.MethodArgs["less"] = []string{config.ObjClassName}
	intRec.MethodArgs["more"] = []string{config.ObjClassName}
	intRec.MethodArgs["atmost"] = []string{config.ObjClassName}
	intRec.MethodArgs["atleast"] = []string{config.ObjClassName}
	c.Define(config.IntClassName, intRec)

	boolRec := newRecord(config.ObjClassName)
	boolRec.MethodReturns[config.ConstructorMethodName] = config.BooleanClassName
	boolRec.MethodReturns["string"] = config.StringClassName
	boolRec.MethodReturns["print"] = config.NothingClassName
	boolRec.MethodReturns["equals"] = config.BooleanClassName
	boolRec.MethodReturns["negate"] = config.BooleanClassName
	boolRec.MethodArgs[config.ConstructorMethodName] = []string{}
	boolRec.MethodArgs["string"] = []string{}
	boolRec.MethodArgs["print"] = []string{}
	boolRec.MethodArgs["equals"] = []string{config.ObjClassName}
	boolRec.MethodArgs["negate"] = []string{}
	c.Define(config.BooleanClassName, boolRec)

	strRec := newRecord(config.ObjClassName)
	strRec.MethodReturns[config.ConstructorMethodName] = config.StringClassName
	strRec.MethodReturns["string"] = config.StringClassName
	strRec.MethodReturns["print"] = config.NothingClassName
	strRec.MethodReturns["equals"] = config.BooleanClassName
	strRec.MethodReturns["less"] = config.BooleanClassName
	strRec.MethodReturns["more"] = config.BooleanClassName
	strRec.MethodReturns["atleast"] = config.BooleanClassName
	strRec.MethodReturns["atmost"] = config.BooleanClassName
	strRec.MethodReturns["plus"] = config.StringClassName
	strRec.MethodArgs[config.ConstructorMethodName] = []string{}
	strRec.MethodArgs["string"] = []string{}
	strRec.MethodArgs["print"] = []string{}
	strRec.MethodArgs["equals"] = []string{config.ObjClassName}
	strRec.MethodArgs["less"] = []string{config.ObjClassName}
	strRec.MethodArgs["more"] = []string{config.ObjClassName}
	strRec.MethodArgs["atleast"] = []string{config.ObjClassName}
	strRec.MethodArgs["atmost"] = []string{config.ObjClassName}
	strRec.MethodArgs["plus"] = []string{config.StringClassName}
	c.Define(config.StringClassName, strRec)

	nothingRec := newRecord(config.ObjClassName)
	nothingRec.MethodReturns[config.ConstructorMethodName] = config.NothingClassName
	nothingRec.MethodReturns["string"] = config.StringClassName
	nothingRec.MethodReturns["print"] = config.NothingClassName
	nothingRec.MethodReturns["equals"] = config.BooleanClassName
	nothingRec.MethodArgs[config.ConstructorMethodName] = []string{}
	nothingRec.MethodArgs["string"] = []string{}
	nothingRec.MethodArgs["print"] = []string{}
	nothingRec.MethodArgs["equals"] = []string{config.ObjClassName}
	c.Define(config.NothingClassName, nothingRec)
}
