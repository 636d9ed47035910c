package transform

import (
	"testing"

	"github.com/quack-lang/quackc/internal/ast"
	"github.com/quack-lang/quackc/internal/parser"
)

func parseAndRun(t *testing.T, src, mainClass string) *ast.Node {
	t.Helper()
	n, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return Run(n, mainClass)
}

func TestFlattenIfElseProducesTwoOrThreeChildren(t *testing.T) {
	program := parseAndRun(t, `
if 1.less(2) {
    x = 1;
} elif 2.less(1) {
    x = 2;
} elif 3.less(1) {
    x = 3;
} else {
    x = 4;
}
`, "Main")

	var checkAllIfs func(n *ast.Node)
	checkAllIfs = func(n *ast.Node) {
		if n == nil {
			return
		}
		if n.Kind == ast.KindIfStructure {
			if nc := n.NumChildren(); nc != 2 && nc != 3 {
				t.Errorf("if_structure has %d children, want 2 or 3", nc)
			}
		}
		for _, c := range n.Children {
			if nn, ok := c.(ast.NodeChild); ok {
				checkAllIfs(nn.Node)
			}
		}
	}
	checkAllIfs(program)
}

func TestOperatorLoweringProducesMethodInvocation(t *testing.T) {
	program := parseAndRun(t, `x = 1 + 2;`, "Main")
	// Main class -> $constructor -> statement_block -> [assignment]
	ctor := findConstructor(t, program)
	body := ast.MethodBody(ctor)
	assign := body.Child(0)
	if assign.Kind != ast.KindAssignment {
		t.Fatalf("Kind = %s, want %s", assign.Kind, ast.KindAssignment)
	}
	rhs := assign.Child(1)
	if rhs.Kind != ast.KindMethodInvocation {
		t.Fatalf("rhs Kind = %s, want %s", rhs.Kind, ast.KindMethodInvocation)
	}
	if rhs.Token(1).Lexeme != "plus" {
		t.Errorf("method name = %q, want %q", rhs.Token(1).Lexeme, "plus")
	}
}

func TestExplicitMethodInvocationMethodNameIsToken(t *testing.T) {
	program := parseAndRun(t, `x = a.plus(1);`, "Main")
	ctor := findConstructor(t, program)
	rhs := ast.MethodBody(ctor).Child(0).Child(1)
	if rhs.Kind != ast.KindMethodInvocation {
		t.Fatalf("rhs Kind = %s, want %s", rhs.Kind, ast.KindMethodInvocation)
	}
	if _, ok := rhs.Children[1].(ast.TokenChild); !ok {
		t.Fatalf("method_invocation child 1 = %T, want a bare token", rhs.Children[1])
	}
	if rhs.Token(1).Lexeme != "plus" {
		t.Errorf("method name = %q, want %q", rhs.Token(1).Lexeme, "plus")
	}
}

func TestSelfMethodInvocationMethodNameIsToken(t *testing.T) {
	program := parseAndRun(t, `
class C() {
    def m() { }
    def caller() {
        this.m();
    }
}
`, "Main")
	clazz := program.Child(0)
	body := ast.ClazzBody(clazz)
	var caller *ast.Node
	for _, c := range body.Children {
		nc := c.(ast.NodeChild)
		if ast.MethodName(nc.Node) == "caller" {
			caller = nc.Node
		}
	}
	if caller == nil {
		t.Fatal("caller method not found")
	}
	call := ast.MethodBody(caller).Child(0).Child(0)
	if call.Kind != ast.KindMethodInvocation {
		t.Fatalf("Kind = %s, want %s", call.Kind, ast.KindMethodInvocation)
	}
	if _, ok := call.Children[1].(ast.TokenChild); !ok {
		t.Fatalf("method_invocation child 1 = %T, want a bare token", call.Children[1])
	}
	if call.Token(1).Lexeme != "m" {
		t.Errorf("method name = %q, want %q", call.Token(1).Lexeme, "m")
	}
}

func TestConstructorSynthesisInjectsObjSuperclass(t *testing.T) {
	program := parseAndRun(t, `class Lonely() { }`, "Main")
	clazz := program.Child(0)
	if super, ok := ast.ClazzSuper(clazz); !ok || super != "Obj" {
		t.Errorf("ClazzSuper = (%q, %v), want (Obj, true)", super, ok)
	}
}

func TestConstructorSynthesisCapturesFieldAssignments(t *testing.T) {
	program := parseAndRun(t, `
class Point(x: Int, y: Int) {
    this.x = x;
    this.y = y;
}
`, "Main")
	clazz := program.Child(0)
	ctor := findConstructor(t, program)
	if ast.MethodName(ctor) != "$constructor" {
		t.Fatalf("expected a $constructor method")
	}
	body := ast.MethodBody(ctor)
	if body.NumChildren() < 2 {
		t.Fatalf("constructor body has %d statements, want at least 2", body.NumChildren())
	}
	_ = clazz
}

func TestReturnInsertionAppendsNoneForPlainMethods(t *testing.T) {
	program := parseAndRun(t, `
class Greeter() {
    def greet() {
    }
}
`, "Main")
	clazz := program.Child(0)
	body := ast.ClazzBody(clazz)
	var greet *ast.Node
	for _, c := range body.Children {
		nc := c.(ast.NodeChild)
		if nc.Kind == ast.KindClassMethod && ast.MethodName(nc.Node) == "greet" {
			greet = nc.Node
		}
	}
	if greet == nil {
		t.Fatal("greet method not found after transform")
	}
	mbody := ast.MethodBody(greet)
	last := mbody.Child(mbody.NumChildren() - 1)
	if last.Kind != ast.KindReturnStatement {
		t.Fatalf("last statement Kind = %s, want %s", last.Kind, ast.KindReturnStatement)
	}
	retExpr := last.Child(0)
	if retExpr.Kind != ast.KindNothingLiteral {
		t.Errorf("appended return expr Kind = %s, want %s", retExpr.Kind, ast.KindNothingLiteral)
	}
}

func TestReturnInsertionAppendsThisForConstructor(t *testing.T) {
	program := parseAndRun(t, `class Empty() { }`, "Main")
	ctor := findConstructor(t, program)
	body := ast.MethodBody(ctor)
	last := body.Child(body.NumChildren() - 1)
	if last.Kind != ast.KindReturnStatement {
		t.Fatalf("last statement Kind = %s, want %s", last.Kind, ast.KindReturnStatement)
	}
	if last.Child(0).Kind != ast.KindThisPtr {
		t.Errorf("constructor return expr Kind = %s, want %s", last.Child(0).Kind, ast.KindThisPtr)
	}
}

func TestReturnInsertionRewritesNestedBareReturn(t *testing.T) {
	program := parseAndRun(t, `
class Switch() {
    def pick(flag: Int) {
        if flag.equal(1) {
            return;
        } elif flag.equal(2) {
            while flag.less(10) {
                return;
            }
        } else {
            return;
        }
    }
}
`, "Main")
	clazz := program.Child(0)
	body := ast.ClazzBody(clazz)
	var pick *ast.Node
	for _, c := range body.Children {
		nc := c.(ast.NodeChild)
		if nc.Kind == ast.KindClassMethod && ast.MethodName(nc.Node) == "pick" {
			pick = nc.Node
		}
	}
	if pick == nil {
		t.Fatal("pick method not found after transform")
	}

	var bareReturns int
	var checkAllReturns func(n *ast.Node)
	checkAllReturns = func(n *ast.Node) {
		if n == nil {
			return
		}
		if n.Kind == ast.KindReturnStatement {
			if n.NumChildren() == 0 {
				bareReturns++
			} else if n.Child(0).Kind != ast.KindNothingLiteral {
				t.Errorf("nested return expr Kind = %s, want %s", n.Child(0).Kind, ast.KindNothingLiteral)
			}
		}
		for _, c := range n.Children {
			if nn, ok := c.(ast.NodeChild); ok {
				checkAllReturns(nn.Node)
			}
		}
	}
	checkAllReturns(ast.MethodBody(pick))

	if bareReturns != 0 {
		t.Errorf("found %d bare return_statement nodes, want 0", bareReturns)
	}
}

func TestLooseStatementsCaptureIntoMainClass(t *testing.T) {
	program := parseAndRun(t, `x = 1;`, "Scratch")
	if program.NumChildren() != 1 {
		t.Fatalf("program has %d top-level classes, want 1", program.NumChildren())
	}
	clazz := program.Child(0)
	if ast.ClazzName(clazz) != "Scratch" {
		t.Errorf("ClazzName = %q, want %q", ast.ClazzName(clazz), "Scratch")
	}
}

func TestIdentifierFlatteningUnwrapsWrapperNodes(t *testing.T) {
	program := parseAndRun(t, `x = 1; y = x;`, "Main")
	ctor := findConstructor(t, program)
	body := ast.MethodBody(ctor)
	secondAssign := body.Child(1)
	rhs := secondAssign.Child(1)
	if rhs.Kind != ast.KindIdentifierRhand {
		t.Fatalf("rhs Kind = %s, want %s", rhs.Kind, ast.KindIdentifierRhand)
	}
	if _, ok := rhs.Children[0].(ast.TokenChild); !ok {
		t.Errorf("identifier_rhand's name slot is still a wrapped node, want a bare token")
	}
}

func TestStringCanonicalizationCollapsesLongStrings(t *testing.T) {
	program := parseAndRun(t, "x = \"\"\"a\nb\"\"\";", "Main")
	ctor := findConstructor(t, program)
	body := ast.MethodBody(ctor)
	rhs := body.Child(0).Child(1)
	if rhs.Kind != ast.KindStringLiteral {
		t.Fatalf("Kind = %s, want %s", rhs.Kind, ast.KindStringLiteral)
	}
	if rhs.Tok.Literal != `a\nb` {
		t.Errorf("Literal = %q, want %q", rhs.Tok.Literal, `a\nb`)
	}
}

func findConstructor(t *testing.T, program *ast.Node) *ast.Node {
	t.Helper()
	clazz := program.Child(0)
	body := ast.ClazzBody(clazz)
	for _, c := range body.Children {
		nc := c.(ast.NodeChild)
		if ast.MethodName(nc.Node) == "$constructor" {
			return nc.Node
		}
	}
	t.Fatal("no $constructor found")
	return nil
}
