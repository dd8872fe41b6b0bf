package lexer

import (
	"github.com/funvibe/colexpr/internal/diagnostics"
	"github.com/funvibe/colexpr/internal/pipeline"
	"github.com/funvibe/colexpr/internal/token"
)

// LexerProcessor fills ctx.TokenStream and reports ILLEGAL tokens as syntax errors.
type LexerProcessor struct{}

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	ctx.TokenStream = New(ctx.SourceCode).Tokenize()
	for _, tok := range ctx.TokenStream {
		if tok.Type != token.ILLEGAL {
			continue
		}
		msg := "unexpected character " + tok.Lexeme
		if s, ok := tok.Literal.(string); ok && s != tok.Lexeme {
			msg = s
		}
		ctx.Errors = append(ctx.Errors, diagnostics.NewError(diagnostics.ErrP001, tok, diagnostics.MsgSyntax, msg))
	}
	return ctx
}
