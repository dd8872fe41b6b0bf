package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/colexpr/internal/diagnostics"
)

// expectCheckError asserts that checking input fails with the given code.
func expectCheckError(t *testing.T, input string, code diagnostics.ErrorCode) *diagnostics.DiagnosticError {
	t.Helper()
	_, err := checkSource(t, input)
	require.Error(t, err, input)
	de, ok := diagnostics.AsUserError(err)
	require.True(t, ok, "expected a user error, got %v", err)
	require.Equal(t, code, de.Code, "input: %s\nerror: %s", input, err)
	return de
}

func expectCheckErrorContains(t *testing.T, input string, code diagnostics.ErrorCode, substr string) {
	t.Helper()
	de := expectCheckError(t, input, code)
	if !strings.Contains(de.Message(), substr) {
		t.Errorf("expected error message to contain %q, got: %s", substr, de.Message())
	}
}

// ---------------------------------------------------------------------------
// T001 type mismatch

func TestMismatch(t *testing.T) {
	expectCheckErrorContains(t, `1 + "a"`, diagnostics.ErrT001, "expected Number but found Text")
	expectCheckError(t, "1{m} + 1{s}", diagnostics.ErrT001)
	expectCheckError(t, "@length + @score", diagnostics.ErrT001)
	expectCheckError(t, `if 1 then 2 else 3`, diagnostics.ErrT001)
	expectCheckError(t, `if true then 2 else "3"`, diagnostics.ErrT001)
	expectCheckError(t, "[1, true]", diagnostics.ErrT001)
	expectCheckError(t, "1 & true", diagnostics.ErrT001)
	expectCheckError(t, "2{m} ^ @score", diagnostics.ErrT001)
	expectCheckError(t, "2 ^ 2{m}", diagnostics.ErrT001)
	expectCheckError(t, "filter([1], fn(x) -> x + 1)", diagnostics.ErrT001)
	expectCheckError(t, `match 1 { "a" -> 1; _ -> 2 }`, diagnostics.ErrT001)
	expectCheckError(t, `match 1 { x -> 1; _ -> "2" }`, diagnostics.ErrT001)
	expectCheckError(t, `match 1 { x when x -> 1; _ -> 2 }`, diagnostics.ErrT001)
	expectCheckErrorContains(t, "match 1 { (a: x) -> x }", diagnostics.ErrT001, "a record")
	expectCheckError(t, "Optional:Is(1) = Optional:Is(true)", diagnostics.ErrT001)
}

func TestMismatchLocation(t *testing.T) {
	de := expectCheckError(t, `1 + "a"`, diagnostics.ErrT001)
	assert.Equal(t, 1, de.Token.Line)
	assert.Equal(t, 5, de.Token.Column)

	de = expectCheckError(t, "sum([1, 2]) + 1{m}", diagnostics.ErrT001)
	assert.Equal(t, 15, de.Token.Column)
}

func TestDeferredChecks(t *testing.T) {
	expectCheckErrorContains(t, "1 ++ 2", diagnostics.ErrT001, "Text or an array")
	expectCheckErrorContains(t, "(a: 1) ++ (a: 2)", diagnostics.ErrT001, "Text or an array")
}

// ---------------------------------------------------------------------------
// T002 ambiguous type

func TestAmbiguous(t *testing.T) {
	expectCheckErrorContains(t, "min([])", diagnostics.ErrT002, "as_type")
	expectCheckError(t, "Optional:None", diagnostics.ErrT002)
	expectCheckError(t, "[]", diagnostics.ErrT002)
	expectCheckError(t, "define f = [] in 1", diagnostics.ErrT002)
	expectCheckError(t, "match Optional:None { Optional:Is(x) -> x.a }", diagnostics.ErrT002)
}

// ---------------------------------------------------------------------------
// T003 unknown names

func TestUnknownNames(t *testing.T) {
	expectCheckErrorContains(t, "@nope", diagnostics.ErrT003, "unknown column nope")
	expectCheckErrorContains(t, "@entire nope", diagnostics.ErrT003, "unknown column nope")
	expectCheckErrorContains(t, "nope(1)", diagnostics.ErrT003, "unknown function nope")
	expectCheckErrorContains(t, "x + 1", diagnostics.ErrT003, "unknown name x")
	expectCheckErrorContains(t, "Optional:Maybe", diagnostics.ErrT003, "no tag Maybe")
	expectCheckErrorContains(t, "Colour:Red", diagnostics.ErrT003, "unknown type Colour")
	expectCheckErrorContains(t, "(a: 1).c", diagnostics.ErrT003, "no field c")
	expectCheckErrorContains(t, "as_type(type{Colour}, 1)", diagnostics.ErrT003, "unknown type Colour")
	expectCheckError(t, "match (a: 1) { (b: x) -> x }", diagnostics.ErrT003)
}

func TestBindingsDoNotLeak(t *testing.T) {
	expectCheckErrorContains(t, "match 1 { x when x > 0 -> 1; _ -> x }", diagnostics.ErrT003, "unknown name x")
	expectCheckErrorContains(t, "filter([1], fn(x) -> true) ++ [x]", diagnostics.ErrT003, "unknown name x")
	expectCheckError(t, "match 1 { [x, y] -> 1; _ -> 2 }", diagnostics.ErrT001)
	expectCheckErrorContains(t, "match [1] { [x, x] -> 1; _ -> 2 }", diagnostics.ErrT006, "bound twice")
}

// ---------------------------------------------------------------------------
// T004 no overload

func TestNoOverload(t *testing.T) {
	de := expectCheckError(t, "not(1)", diagnostics.ErrT004)
	assert.Contains(t, de.Message(), "no overload of not")
	expectCheckError(t, "count(1)", diagnostics.ErrT004)
	expectCheckError(t, "element([1], 1, 2)", diagnostics.ErrT004)
	expectCheckError(t, "filter([1], fn(x, y) -> true)", diagnostics.ErrT004)
}

// ---------------------------------------------------------------------------
// T005 unit errors

func TestUnitErrors(t *testing.T) {
	expectCheckErrorContains(t, "1{furlong}", diagnostics.ErrT005, "furlong")
	expectCheckErrorContains(t, "as(unit{furlong}, 1{m})", diagnostics.ErrT005, "furlong")
	expectCheckError(t, "as_type(type{Number{furlong}}, 1{m})", diagnostics.ErrT005)
	expectCheckErrorContains(t, "as(unit{kg}, @length)", diagnostics.ErrT005, "cannot convert m to kg")
}

// ---------------------------------------------------------------------------
// T006 invalid constructs

func TestInvalidConstructs(t *testing.T) {
	expectCheckErrorContains(t, "fn(x) -> x", diagnostics.ErrT006, "lambda")
	expectCheckErrorContains(t, "define f = fn(x) -> x in 1", diagnostics.ErrT006, "lambda")
	expectCheckErrorContains(t, "type{Number}", diagnostics.ErrT006, "type literal")
	expectCheckErrorContains(t, "unit{m}", diagnostics.ErrT006, "unit literal")
	expectCheckErrorContains(t, "_ + 1", diagnostics.ErrT006, "pattern")
	expectCheckError(t, "1 < 2 > 0", diagnostics.ErrT006)
	expectCheckError(t, "1 = 1 <> true", diagnostics.ErrT006)
	expectCheckErrorContains(t, "Optional:None(1)", diagnostics.ErrT006, "carries no value")
	expectCheckErrorContains(t, "Optional:Is", diagnostics.ErrT006, "needs a value")
	expectCheckErrorContains(t, "match 1 { x, y -> 1 }", diagnostics.ErrT006, "x vs y")
	expectCheckError(t, "match Optional:Is(1) { Optional:Is(x), Optional:None -> 1; _ -> 0 }", diagnostics.ErrT006)
}
