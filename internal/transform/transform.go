// Package transform runs the fixed sequence of desugaring passes that turn
// the parser's raw, pre-desugar tree into the canonical shape every later
// phase (identifier-usage, type inference, semantic checks, codegen)
// assumes: if/elif/else chains right-nested to 2 or 3 children, arithmetic
// and comparison operators lowered to method_invocation, string literals
// collapsed to one canonical form, identifier wrapper layers unwrapped,
// every class explicit about its superclass and carrying a $constructor,
// and every method body ending in a return_statement.
//
// Grounded on the reference compiler's Lark Transformer classes
// (original_source/hw4/parser.py): there each desugaring step was a method
// on a Transformer subclass invoked bottom-up by the parse tree visitor;
// here each step but CaptureLooseStatements (which rebuilds the program's
// child list directly) is a *ast.Walker pass over the tagged-variant tree,
// applied in the exact order spec.md's C3 section prescribes.
package transform

import "github.com/quack-lang/quackc/internal/ast"

// Run applies all seven passes in order and returns the now-canonical
// program node (mutated in place; the returned pointer is the same one
// passed in, kept as a return value for readability at call sites).
func Run(program *ast.Node, mainClassName string) *ast.Node {
	FlattenIfElse(program)
	LowerOperators(program)
	CanonicalizeStrings(program)
	FlattenIdentifiers(program)
	program = CaptureLooseStatements(program, mainClassName)
	SynthesizeConstructors(program)
	InsertReturns(program)
	return program
}
