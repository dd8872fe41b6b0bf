package parser

import (
	"github.com/funvibe/colexpr/internal/diagnostics"
	"github.com/funvibe/colexpr/internal/pipeline"
	"github.com/funvibe/colexpr/internal/token"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.TokenStream == nil {
		err := diagnostics.NewError(diagnostics.ErrP001, token.Token{}, diagnostics.MsgSyntax, "parser: token stream is nil")
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	ctx.AstRoot = New(ctx.TokenStream, ctx).ParseExpression()
	return ctx
}
