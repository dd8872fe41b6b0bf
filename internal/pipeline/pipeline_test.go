package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/funvibe/colexpr/internal/diagnostics"
	"github.com/funvibe/colexpr/internal/token"
)

func TestRunStopsAfterFailingStage(t *testing.T) {
	var ran []string
	stage := func(name string, fail bool) Processor {
		return ProcessorFunc(func(ctx *PipelineContext) *PipelineContext {
			ran = append(ran, name)
			if fail {
				ctx.Errors = append(ctx.Errors, diagnostics.NewError(diagnostics.ErrP001, token.Token{}, diagnostics.MsgSyntax, name))
			}
			return ctx
		})
	}

	ctx := New(stage("a", false), stage("b", true), stage("c", false)).Run(NewPipelineContext("x"))
	assert.Equal(t, []string{"a", "b"}, ran)
	assert.EqualError(t, ctx.Err(), "[P001] b")
}

func TestErrNilWithoutErrors(t *testing.T) {
	ctx := New().Run(NewPipelineContext(""))
	assert.NoError(t, ctx.Err())
}
