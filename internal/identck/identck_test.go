package identck

import (
	"testing"

	"github.com/quack-lang/quackc/internal/ast"
	"github.com/quack-lang/quackc/internal/parser"
	"github.com/quack-lang/quackc/internal/transform"
)

func build(t *testing.T, src string) *ast.Node {
	t.Helper()
	n, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return transform.Run(n, "Main")
}

func TestUseBeforeAssignmentFails(t *testing.T) {
	errs := Check(build(t, `y = x;`))
	if len(errs) == 0 {
		t.Fatal("expected a use-before-assignment error")
	}
}

func TestFormalParametersAreDefined(t *testing.T) {
	errs := Check(build(t, `
class Adder() {
    def sum(a: Int, b: Int): Int {
        return a.plus(b);
    }
}
`))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestDeclaredTypeAssignmentDefinesLocal(t *testing.T) {
	errs := Check(build(t, `
class Adder() {
    def sum(): Int {
        x : Int = 1;
        return x.plus(1);
    }
}
`))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestFieldUsedButNeverDeclaredFails(t *testing.T) {
	errs := Check(build(t, `
class Broken() {
    def show() {
        this.missing.print();
    }
}
`))
	if len(errs) == 0 {
		t.Fatal("expected a field-never-declared error")
	}
}

func TestFieldDeclaredInConstructorIsUsable(t *testing.T) {
	errs := Check(build(t, `
class Ok(v: Int) {
    this.v = v;
    def show() {
        this.v.print();
    }
}
`))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestIfBranchIntersectionRejectsPartialDefinition(t *testing.T) {
	errs := Check(build(t, `
if true {
    x = 1;
}
y = x;
`))
	if len(errs) == 0 {
		t.Fatal("expected x to be undefined after an if with no else")
	}
}

func TestIfElseBothBranchesDefineMerges(t *testing.T) {
	errs := Check(build(t, `
if true {
    x = 1;
} else {
    x = 2;
}
y = x;
`))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestWhileBodyDefinitionDoesNotEscape(t *testing.T) {
	errs := Check(build(t, `
while true {
    x = 1;
}
y = x;
`))
	if len(errs) == 0 {
		t.Fatal("expected x to be undefined after the loop (loop body may not run)")
	}
}

func TestTypecaseIsRejectedAsUnsupported(t *testing.T) {
	errs := Check(build(t, `
typecase x {
    Int: i { }
}
`))
	if len(errs) == 0 {
		t.Fatal("expected typecase to be rejected")
	}
}
