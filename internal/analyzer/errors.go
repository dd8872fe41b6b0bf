package analyzer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/funvibe/colexpr/internal/ast"
	"github.com/funvibe/colexpr/internal/diagnostics"
	"github.com/funvibe/colexpr/internal/functions"
	"github.com/funvibe/colexpr/internal/typesystem"
)

func typeError(code diagnostics.ErrorCode, node ast.Expression, key string, args ...any) error {
	return diagnostics.NewError(code, node.GetToken(), key, args...)
}

func invalid(node ast.Expression, format string, args ...any) error {
	return typeError(diagnostics.ErrT006, node, diagnostics.MsgInvalid, fmt.Sprintf(format, args...))
}

// located turns an error from the type system or the function catalogue
// into a user error positioned at node. Internal errors pass through.
func located(err error, node ast.Expression) error {
	if err == nil {
		return nil
	}
	tok := node.GetToken()

	var (
		internal   *diagnostics.InternalError
		diag       *diagnostics.DiagnosticError
		mismatch   *typesystem.MismatchError
		ambiguous  *typesystem.AmbiguousError
		unknown    *typesystem.UnknownTypeError
		noOverload *functions.NoOverloadError
		unitErr    *functions.UnitError
	)
	switch {
	case errors.As(err, &internal):
		return err
	case errors.As(err, &diag):
		return diag.At(tok)
	case errors.As(err, &mismatch):
		if mismatch.Detail != "" {
			return diagnostics.NewError(diagnostics.ErrT001, tok, diagnostics.MsgMismatchDetail, mismatch.Expected, mismatch.Actual, mismatch.Detail)
		}
		return diagnostics.NewError(diagnostics.ErrT001, tok, diagnostics.MsgMismatch, mismatch.Expected, mismatch.Actual)
	case errors.As(err, &ambiguous):
		return diagnostics.NewError(diagnostics.ErrT002, tok, diagnostics.MsgAmbiguous, ambiguous.Type)
	case errors.As(err, &unknown):
		return diagnostics.NewError(diagnostics.ErrT003, tok, diagnostics.MsgUnknownType, unknown.Name)
	case errors.As(err, &noOverload):
		return diagnostics.NewError(diagnostics.ErrT004, tok, diagnostics.MsgNoOverload, noOverload.Name, noOverload.Args, strings.Join(noOverload.Reasons, "\n"))
	case errors.As(err, &unitErr):
		return diagnostics.NewError(diagnostics.ErrT005, tok, diagnostics.MsgCannotConvert, unitErr.From, unitErr.To)
	}
	return diagnostics.NewError(diagnostics.ErrT006, tok, diagnostics.MsgInvalid, err.Error())
}
