package parser

import (
	"testing"

	"github.com/quack-lang/quackc/internal/ast"
)

func TestParseEmptyProgram(t *testing.T) {
	n, err := Parse("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Kind != ast.KindProgram {
		t.Fatalf("Kind = %s, want %s", n.Kind, ast.KindProgram)
	}
	if n.NumChildren() != 0 {
		t.Fatalf("NumChildren = %d, want 0", n.NumChildren())
	}
}

func TestParseClassWithExtendsAndMethod(t *testing.T) {
	src := `
class Point(x: Int, y: Int) extends Obj {
    this.x = x;
    this.y = y;

    def dist(other: Point): Int {
        return this.x.minus(other.x);
    }
}
`
	n, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.NumChildren() != 1 {
		t.Fatalf("program has %d children, want 1", n.NumChildren())
	}
	clazz := n.Child(0)
	if clazz.Kind != ast.KindClazz {
		t.Fatalf("Kind = %s, want %s", clazz.Kind, ast.KindClazz)
	}
	if got := ast.ClazzName(clazz); got != "Point" {
		t.Errorf("ClazzName = %q, want %q", got, "Point")
	}
	if super, ok := ast.ClazzSuper(clazz); !ok || super != "Obj" {
		t.Errorf("ClazzSuper = (%q, %v), want (%q, true)", super, ok, "Obj")
	}
	formals := ast.FormalArgs(ast.ClazzFormalArgsNode(clazz))
	if len(formals) != 2 || formals[0].Name != "x" || formals[0].Type != "Int" {
		t.Errorf("formals = %+v, want [{x Int} {y Int}]", formals)
	}

	body := ast.ClazzBody(clazz)
	if body.NumChildren() != 3 {
		t.Fatalf("class body has %d children, want 3 (two assigns + one method)", body.NumChildren())
	}
	method := body.Child(2)
	if method.Kind != ast.KindClassMethod {
		t.Fatalf("third body child Kind = %s, want %s", method.Kind, ast.KindClassMethod)
	}
	if got := ast.MethodName(method); got != "dist" {
		t.Errorf("MethodName = %q, want %q", got, "dist")
	}
	if ret, ok := ast.MethodReturnType(method); !ok || ret != "Int" {
		t.Errorf("MethodReturnType = (%q, %v), want (%q, true)", ret, ok, "Int")
	}
}

func TestParseClassWithoutExtends(t *testing.T) {
	n, err := Parse(`class Lonely() { }`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	clazz := n.Child(0)
	if _, ok := ast.ClazzSuper(clazz); ok {
		t.Error("expected ClazzSuper ok=false for a class with no extends clause")
	}
}

func TestParseIfElifElse(t *testing.T) {
	src := `
if 1.less(2) {
    x = 1;
} elif 2.less(1) {
    x = 2;
} else {
    x = 3;
}
`
	n, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ifNode := n.Child(0)
	if ifNode.Kind != ast.KindIfStructure {
		t.Fatalf("Kind = %s, want %s", ifNode.Kind, ast.KindIfStructure)
	}
	// cond1, block1, cond2, block2, elseBlock == 5 children
	if ifNode.NumChildren() != 5 {
		t.Fatalf("if_structure has %d children, want 5", ifNode.NumChildren())
	}
}

func TestParseWhileLoop(t *testing.T) {
	n, err := Parse(`while true { x = x.plus(1); }`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w := n.Child(0)
	if w.Kind != ast.KindWhileStructure {
		t.Fatalf("Kind = %s, want %s", w.Kind, ast.KindWhileStructure)
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	// 1 + 2 * 3 should parse as method_add(1, method_mul(2, 3))
	n, err := Parse(`x = 1 + 2 * 3;`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assign := n.Child(0)
	if assign.Kind != ast.KindAssignment {
		t.Fatalf("Kind = %s, want %s", assign.Kind, ast.KindAssignment)
	}
	rhs := assign.Child(1)
	if rhs.Kind != ast.KindMethodAdd {
		t.Fatalf("rhs Kind = %s, want %s", rhs.Kind, ast.KindMethodAdd)
	}
	right := rhs.Child(1)
	if right.Kind != ast.KindMethodMul {
		t.Fatalf("rhs.right Kind = %s, want %s", right.Kind, ast.KindMethodMul)
	}
}

func TestParseMethodChainAndFieldAccess(t *testing.T) {
	n, err := Parse(`x = this.total.plus(other.count);`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assign := n.Child(0)
	rhs := assign.Child(1)
	if rhs.Kind != ast.KindMethodInvocation {
		t.Fatalf("Kind = %s, want %s", rhs.Kind, ast.KindMethodInvocation)
	}
	receiver := rhs.Child(0)
	if receiver.Kind != ast.KindIdentifierFieldRhandThis {
		t.Fatalf("receiver Kind = %s, want %s", receiver.Kind, ast.KindIdentifierFieldRhandThis)
	}
}

func TestParseObjInstantiation(t *testing.T) {
	n, err := Parse(`p = Point(1, 2);`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assign := n.Child(0)
	rhs := assign.Child(1)
	if rhs.Kind != ast.KindObjInstantiation {
		t.Fatalf("Kind = %s, want %s", rhs.Kind, ast.KindObjInstantiation)
	}
	if rhs.Token(0).Lexeme != "Point" {
		t.Errorf("class name = %q, want %q", rhs.Token(0).Lexeme, "Point")
	}
}

func TestParseInvalidAssignmentTarget(t *testing.T) {
	_, err := Parse(`1 = 2;`)
	if err == nil {
		t.Fatal("expected a parse error assigning to a literal")
	}
}

func TestParseUnterminatedBlock(t *testing.T) {
	_, err := Parse(`class Bad() {`)
	if err == nil {
		t.Fatal("expected a parse error for an unterminated class body")
	}
}

func TestParseTripleQuotedString(t *testing.T) {
	n, err := Parse("x = \"\"\"hello\nworld\"\"\";")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rhs := n.Child(0).Child(1)
	if rhs.Kind != ast.KindLongStringLiteral {
		t.Fatalf("Kind = %s, want %s", rhs.Kind, ast.KindLongStringLiteral)
	}
}
