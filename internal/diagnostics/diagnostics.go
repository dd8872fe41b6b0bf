// Package diagnostics defines the two kinds of error the engine reports:
// user errors, which carry a code, a message key and a source location, and
// internal errors, which indicate a bug.
package diagnostics

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/funvibe/colexpr/internal/token"
)

type ErrorCode string

const (
	// Type checking
	ErrT001 ErrorCode = "T001" // type mismatch
	ErrT002 ErrorCode = "T002" // ambiguous type
	ErrT003 ErrorCode = "T003" // unknown name, column, function, type or tag
	ErrT004 ErrorCode = "T004" // no applicable overload
	ErrT005 ErrorCode = "T005" // unit error
	ErrT006 ErrorCode = "T006" // invalid construct

	// Evaluation
	ErrR001 ErrorCode = "R001" // no matching clause
	ErrR002 ErrorCode = "R002" // empty list
	ErrR003 ErrorCode = "R003" // index out of range
	ErrR004 ErrorCode = "R004" // arithmetic
	ErrR005 ErrorCode = "R005" // cell not ready
	ErrR006 ErrorCode = "R006" // parse failure

	// Syntax
	ErrP001 ErrorCode = "P001"
)

// DiagnosticError is an error caused by the expression or its data. Key is a
// message format registered in the catalogue; Args fill it in.
type DiagnosticError struct {
	Code  ErrorCode
	Key   string
	Args  []any
	Token token.Token
}

// UserError is the name used for DiagnosticError outside the checker.
type UserError = DiagnosticError

// NewError builds a user error located at tok.
func NewError(code ErrorCode, tok token.Token, key string, args ...any) *DiagnosticError {
	return &DiagnosticError{Code: code, Key: key, Args: args, Token: tok}
}

// Message renders the message in English without location.
func (e *DiagnosticError) Message() string {
	return e.MessageIn(language.English)
}

// MessageIn renders the message in the given language, falling back to English.
func (e *DiagnosticError) MessageIn(tag language.Tag) string {
	p := message.NewPrinter(tag, message.Catalog(msgCatalog))
	return p.Sprintf(e.Key, e.Args...)
}

func (e *DiagnosticError) Error() string {
	return e.Localize(language.English)
}

// Localize renders the full diagnostic, location included, in the given language.
func (e *DiagnosticError) Localize(tag language.Tag) string {
	if e.Token.Line > 0 {
		return fmt.Sprintf("[%s] %d:%d: %s", e.Code, e.Token.Line, e.Token.Column, e.MessageIn(tag))
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.MessageIn(tag))
}

// At returns a copy of e located at tok, unless e is already located.
func (e *DiagnosticError) At(tok token.Token) *DiagnosticError {
	if e.Token.Line > 0 {
		return e
	}
	c := *e
	c.Token = tok
	return &c
}

// InternalError signals a broken invariant of the engine itself.
type InternalError struct {
	Message string
	Cause   error
}

func NewInternalError(format string, args ...any) *InternalError {
	return &InternalError{Message: fmt.Sprintf(format, args...)}
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return "internal error: " + e.Message + ": " + e.Cause.Error()
	}
	return "internal error: " + e.Message
}

func (e *InternalError) Unwrap() error { return e.Cause }

// AsUserError extracts a user error from err's chain.
func AsUserError(err error) (*DiagnosticError, bool) {
	var de *DiagnosticError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// IsInternal reports whether err's chain holds an internal error.
func IsInternal(err error) bool {
	var ie *InternalError
	return errors.As(err, &ie)
}

// CodeOf returns the code of a user error, or "" for anything else.
func CodeOf(err error) ErrorCode {
	if de, ok := AsUserError(err); ok {
		return de.Code
	}
	return ""
}
