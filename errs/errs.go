// Package errs defines the typed error taxonomy shared by the vm, asm and
// script packages. A single error kind crosses every component boundary of
// the toolchain so that callers can distinguish failure classes without
// depending on any one subsystem's internal error types.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a toolchain failure.
type Kind string

// The four error kinds of the toolchain.
const (
	// ExtensionError is raised when a source file's extension is not
	// recognised by the dispatcher (neither .man nor .script).
	ExtensionError Kind = "ExtensionError"
	// ParseError covers malformed assembly lines, unknown mnemonics, missing
	// operands, unresolved symbols, unsupported operators and unrecognised
	// statement shapes.
	ParseError Kind = "ParseError"
	// ExecuteError covers runtime faults: program counter out of range,
	// unknown instruction words, and out-of-range operands.
	ExecuteError Kind = "ExecuteError"
	// AssemblerError is reserved for internal invariant failures of the
	// symbolic linker (a JumpFlag surviving coalescing, for example).
	AssemblerError Kind = "AssemblerError"
)

// Error is the single error type used for every Kind. Reason is a short,
// machine-readable slug (e.g. "pc_out_of_range") naming the specific failure
// within its Kind; Msg is a human-readable description.
type Error struct {
	Kind   Kind
	Reason string
	Msg    string
	Cause  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s(%s): %s", e.Kind, e.Reason, e.Msg)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Cause }

// Format supports "%+v" to print the full cause chain, in keeping with
// github.com/pkg/errors conventions used throughout this toolchain.
func (e *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			fmt.Fprintf(s, "%s", e.Error())
			if e.Cause != nil {
				fmt.Fprintf(s, "\n%+v", e.Cause)
			}
			return
		}
		fallthrough
	default:
		fmt.Fprintf(s, "%s", e.Error())
	}
}

// New builds an Error with no wrapped cause.
func New(kind Kind, reason, msg string) *Error {
	return &Error{Kind: kind, Reason: reason, Msg: msg}
}

// Newf builds an Error with a formatted message and no wrapped cause.
func Newf(kind Kind, reason, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Reason: reason, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error that carries cause as its wrapped cause. The cause is
// first run through errors.WithStack if it does not already carry a stack
// trace, so that %+v on the returned Error reports where the failure
// originated.
func Wrap(kind Kind, reason string, cause error, msg string) *Error {
	if cause != nil {
		if _, ok := cause.(interface{ StackTrace() errors.StackTrace }); !ok {
			cause = errors.WithStack(cause)
		}
	}
	return &Error{Kind: kind, Reason: reason, Msg: msg, Cause: cause}
}

// Is reports whether err is an *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
