package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/quack-lang/quackc/internal/compiler"
)

// runQuackc invokes the compiler driver in-process against a testdata
// fixture and returns the produced .asm listings keyed by class name, along
// with stderr. Grounded on the teacher's tests/functional_test.go, which
// runs real .lang files through the compiled binary and diffs the result —
// reworked to call compiler.Run directly rather than exec'ing a built
// binary, since quackc's own cmd/quackc/main.go is already the thinnest
// possible wrapper over it.
func runQuackc(t *testing.T, fixture string, extraArgs ...string) (map[string]string, string, error) {
	t.Helper()
	outDir := t.TempDir()
	args := append([]string{"-output-dir", outDir}, extraArgs...)
	args = append(args, filepath.Join("testdata", fixture))

	var stderr bytes.Buffer
	err := compiler.Run(args, &bytes.Buffer{}, &stderr)

	entries, readErr := os.ReadDir(outDir)
	if readErr != nil {
		return nil, stderr.String(), err
	}
	asm := make(map[string]string, len(entries))
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".asm")
		data, err := os.ReadFile(filepath.Join(outDir, e.Name()))
		if err != nil {
			t.Fatalf("reading %s: %v", e.Name(), err)
		}
		asm[name] = string(data)
	}
	return asm, stderr.String(), err
}

func TestCLIIntegerArithmeticOrder(t *testing.T) {
	asm, _, err := runQuackc(t, "arithmetic.quack", "-main-class", "Main")
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	want := []string{"const 3", "const 4", "const 2", "call Int:times", "call Int:plus", "store x"}
	assertContainsInOrder(t, asm["Main"], want)
}

func TestCLIStringConcatenation(t *testing.T) {
	asm, _, err := runQuackc(t, "concat.quack", "-main-class", "Main")
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	want := []string{`const "a"`, `const "b"`, "call String:plus", "store s"}
	assertContainsInOrder(t, asm["Main"], want)
}

func TestCLIIfElseShortCircuit(t *testing.T) {
	asm, _, err := runQuackc(t, "ifelse.quack", "-main-class", "Main")
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	listing := asm["Main"]
	for _, label := range []string{"ifbranch1_1:", "ifbranch2_1:", "ifend_1:"} {
		if !strings.Contains(listing, label) {
			t.Errorf("listing missing label %q:\n%s", label, listing)
		}
	}
	if n := strings.Count(listing, "ifbranch2_1:"); n != 1 {
		t.Errorf("label ifbranch2_1 must be defined exactly once, got %d:\n%s", n, listing)
	}
}

func TestCLIWhileLoop(t *testing.T) {
	asm, _, err := runQuackc(t, "whileloop.quack", "-main-class", "Main")
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	want := []string{"jump whilecond_1", "whileloop_1:", "whilecond_1:", "call Int:less", "jump_if whileloop_1"}
	assertContainsInOrder(t, asm["Main"], want)
}

func TestCLIClassWithFields(t *testing.T) {
	asm, _, err := runQuackc(t, "classfield.quack")
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	listing, ok := asm["Point"]
	if !ok {
		t.Fatalf("expected Point.asm in output dir, got classes: %v", keysOf(asm))
	}
	if !strings.HasPrefix(listing, ".class Point:Obj") {
		t.Errorf("listing does not start with .class Point:Obj:\n%s", listing)
	}
	if !strings.Contains(listing, ".field x") || !strings.Contains(listing, ".field y") {
		t.Errorf("listing missing field declarations:\n%s", listing)
	}
	if !strings.Contains(listing, ".args x,y") {
		t.Errorf("constructor missing .args x,y:\n%s", listing)
	}
}

func TestCLIInheritanceCycleFailsCompile(t *testing.T) {
	_, stderr, err := runQuackc(t, "cycle.quack")
	if err == nil {
		t.Fatal("expected a compile error for an inheritance cycle")
	}
	var usage *compiler.UsageError
	if errors.As(err, &usage) {
		t.Fatalf("cycle should be a compile error, not a CLI usage error: %v", err)
	}
	if !strings.Contains(stderr, "A003") || !strings.Contains(stderr, "inheritance cycle") {
		t.Errorf("stderr missing the expected diagnostic:\n%s", stderr)
	}
}

func assertContainsInOrder(t *testing.T, listing string, want []string) {
	t.Helper()
	pos := 0
	for _, w := range want {
		idx := strings.Index(listing[pos:], w)
		if idx < 0 {
			t.Fatalf("listing missing %q after position %d:\n%s", w, pos, listing)
		}
		pos += idx + len(w)
	}
}

func keysOf(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

