package diagnostics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"

	"github.com/funvibe/colexpr/internal/token"
)

func TestUserErrorRendering(t *testing.T) {
	tok := token.Token{Type: token.IDENT, Lexeme: "x", Line: 2, Column: 7}
	err := NewError(ErrT001, tok, MsgMismatch, "Number", "Text")

	assert.Equal(t, "[T001] 2:7: expected Number but found Text", err.Error())
	assert.Equal(t, "[T001] 2:7: Number erwartet, aber Text gefunden", err.Localize(language.German))
	assert.Equal(t, "expected Number but found Text", err.Message())
}

func TestUnlocatedError(t *testing.T) {
	err := NewError(ErrR002, token.Token{}, MsgEmptyList, "sum")
	assert.Equal(t, "[R002] sum of an empty list", err.Error())

	located := err.At(token.Token{Line: 1, Column: 3})
	assert.Equal(t, "[R002] 1:3: sum of an empty list", located.Error())
	assert.Equal(t, 0, err.Token.Line, "At copies")
	assert.Same(t, located, located.At(token.Token{Line: 9, Column: 9}))
}

func TestClassification(t *testing.T) {
	user := fmt.Errorf("row 3: %w", NewError(ErrR004, token.Token{}, MsgArithmetic, "division by zero"))
	de, ok := AsUserError(user)
	assert.True(t, ok)
	assert.Equal(t, ErrR004, de.Code)
	assert.Equal(t, ErrR004, CodeOf(user))
	assert.False(t, IsInternal(user))

	cause := errors.New("boom")
	internal := &InternalError{Message: "overlapping overloads", Cause: cause}
	assert.True(t, IsInternal(fmt.Errorf("wrapped: %w", internal)))
	assert.ErrorIs(t, internal, cause)
	assert.Equal(t, ErrorCode(""), CodeOf(internal))
	assert.Equal(t, "internal error: overlapping overloads: boom", internal.Error())
}
