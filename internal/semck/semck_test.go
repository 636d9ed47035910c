package semck

import (
	"testing"

	"github.com/quack-lang/quackc/internal/ast"
	"github.com/quack-lang/quackc/internal/catalog"
	"github.com/quack-lang/quackc/internal/parser"
	"github.com/quack-lang/quackc/internal/transform"
	"github.com/quack-lang/quackc/internal/typeinfer"
)

func build(t *testing.T, src string) (*ast.Node, *catalog.Catalog) {
	t.Helper()
	n, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	n = transform.Run(n, "Main")
	cat := catalog.New()
	if errs := typeinfer.Infer(n, cat); len(errs) != 0 {
		t.Fatalf("unexpected inference errors: %v", errs)
	}
	return n, cat
}

func TestWellFormedProgramPasses(t *testing.T) {
	program, cat := build(t, `
class Point(x: Int, y: Int) {
    this.x = x;
    this.y = y;
    def sum(): Int {
        return this.x.plus(this.y);
    }
}
`)
	errs := Check(program, cat)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestDuplicateClassNameFails(t *testing.T) {
	program, cat := build(t, `
class Point(x: Int) {
    this.x = x;
}
class Point(y: Int) {
    this.y = y;
}
`)
	errs := Check(program, cat)
	if len(errs) == 0 {
		t.Fatal("expected a duplicate-class-name error")
	}
}

func TestClassRedefiningBuiltinFails(t *testing.T) {
	program, cat := build(t, `
class Int(x: Int) {
    this.x = x;
}
`)
	errs := Check(program, cat)
	if len(errs) == 0 {
		t.Fatal("expected a builtin-redefinition error")
	}
}

func TestDuplicateMethodNameFails(t *testing.T) {
	program, cat := build(t, `
class Box(v: Int) {
    this.v = v;
    def get(): Int {
        return this.v;
    }
    def get(): Int {
        return this.v;
    }
}
`)
	errs := Check(program, cat)
	if len(errs) == 0 {
		t.Fatal("expected a duplicate-method-name error")
	}
}

func TestMethodNamedAfterItsOwnClassFails(t *testing.T) {
	program, cat := build(t, `
class Box(v: Int) {
    this.v = v;
    def Box(): Int {
        return this.v;
    }
}
`)
	errs := Check(program, cat)
	if len(errs) == 0 {
		t.Fatal("expected a method-named-after-class error")
	}
}

func TestInheritanceCycleFails(t *testing.T) {
	program, cat := build(t, `
class A() extends B {
}
class B() extends A {
}
`)
	errs := Check(program, cat)
	if len(errs) == 0 {
		t.Fatal("expected an inheritance-cycle error")
	}
}

func TestNoCycleForNormalHierarchyPasses(t *testing.T) {
	program, cat := build(t, `
class Animal() {
}
class Dog() extends Animal {
}
`)
	errs := Check(program, cat)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestAssignmentTargetCollidingWithClassNameFails(t *testing.T) {
	program, cat := build(t, `
class Point() {
}
Point = 1;
`)
	errs := Check(program, cat)
	if len(errs) == 0 {
		t.Fatal("expected a name-collision error")
	}
}

func TestAssignmentRHSCollidingWithClassNameFails(t *testing.T) {
	program, cat := build(t, `
class Point() {
}
x = Point;
`)
	errs := Check(program, cat)
	if len(errs) == 0 {
		t.Fatal("expected a name-collision error for the RHS identifier")
	}
}

func TestCallSiteArityMismatchFails(t *testing.T) {
	program, cat := build(t, `
class Box(v: Int) {
    this.v = v;
    def set(a: Int): Nothing {
        this.v = a;
    }
}
b = Box(1);
b.set(1, 2);
`)
	errs := Check(program, cat)
	if len(errs) == 0 {
		t.Fatal("expected a call-site arity error")
	}
}

func TestCallSiteSubtypeViolationFails(t *testing.T) {
	program, cat := build(t, `
class Box(v: Int) {
    this.v = v;
    def set(a: Int): Nothing {
        this.v = a;
    }
}
b = Box(1);
b.set(b);
`)
	errs := Check(program, cat)
	if len(errs) == 0 {
		t.Fatal("expected a call-site subtype error")
	}
}

func TestConstructorArityMismatchFails(t *testing.T) {
	program, cat := build(t, `
class Box(v: Int) {
    this.v = v;
}
b = Box(1, 2);
`)
	errs := Check(program, cat)
	if len(errs) == 0 {
		t.Fatal("expected a constructor arity error")
	}
}

func TestReturnConformanceViolationFails(t *testing.T) {
	program, cat := build(t, `
class Box(v: Int) {
    this.v = v;
    def get(): Int {
        return this;
    }
}
`)
	errs := Check(program, cat)
	if len(errs) == 0 {
		t.Fatal("expected a return-conformance error")
	}
}
