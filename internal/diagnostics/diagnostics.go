// Package diagnostics defines the compiler's error type and error-code
// taxonomy, reconstructed from the call-site pattern used throughout this
// compiler's ancestor's analyzer package: every semantic-phase failure is
// a *DiagnosticError built with NewError(code, token, message) and
// accumulated into a slice rather than returned as the first failure.
// quackc's phases collect errors the same way, but its pipeline is
// fail-fast: it stops after the first failing phase and the driver prints
// only that phase's first error (see internal/pipeline's package doc for
// why). The error *shape* is kept identical so each phase reports
// the same (code, position, message) triple a language server would want.
package diagnostics

import (
	"fmt"

	"github.com/quack-lang/quackc/internal/token"
)

// ErrorCode identifies the category of a compile error, independent of its
// human-readable message, so tooling can match on it.
type ErrorCode string

const (
	// ErrA001 is a redefinition: a class, field, or method name collides
	// with one already declared in scope.
	ErrA001 ErrorCode = "A001"
	// ErrA002 is an unknown type name: a formal parameter, return type,
	// or extends clause names a class that was never defined.
	ErrA002 ErrorCode = "A002"
	// ErrA003 is a general semantic/type error: arity mismatch, subtype
	// violation, return-type conformance failure, inheritance cycle.
	ErrA003 ErrorCode = "A003"
	// ErrA004 is a use-before-definition: a local or field read before it
	// is known to be assigned on every reaching control-flow path.
	ErrA004 ErrorCode = "A004"
	// ErrA005 is a syntax error surfaced from internal/parser.
	ErrA005 ErrorCode = "A005"
	// ErrA006 is a malformed or unsupported type expression.
	ErrA006 ErrorCode = "A006"
	// ErrA007 is an internal invariant violation: an AST node kind a pass
	// didn't expect to see. Always a compiler bug, never user error.
	ErrA007 ErrorCode = "A007"
	// ErrA008 is a use of a language construct this compiler accepts
	// syntactically but does not implement semantics for (typecase).
	ErrA008 ErrorCode = "A008"
)

// DiagnosticError is a single compile error: a code for tooling, the
// source token it is anchored to, and a human-readable message.
type DiagnosticError struct {
	Code    ErrorCode
	Tok     token.Token
	Message string
}

// NewError builds a DiagnosticError. Named to match the call-site pattern
// diagnostics.NewError(code, tok, msg) used throughout every phase.
func NewError(code ErrorCode, tok token.Token, msg string) *DiagnosticError {
	return &DiagnosticError{Code: code, Tok: tok, Message: msg}
}

func (e *DiagnosticError) Error() string {
	return fmt.Sprintf("%d:%d: [%s] %s", e.Tok.Line, e.Tok.Column, e.Code, e.Message)
}

// ErrUnsupported reports a use of a syntactically-accepted but
// unimplemented construct (typecase).
func ErrUnsupported(tok token.Token, construct string) *DiagnosticError {
	return NewError(ErrA008, tok, construct+" is not supported by this compiler")
}
