package xmetrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type nilObserver struct{ NoopObserver }

//nolint:staticcheck // 故意返回 nil context，验证 Start 的兜底
func (nilObserver) Start(context.Context, SpanOptions) (context.Context, Span) {
	return nil, nil
}

func TestStart_NilObserver(t *testing.T) {
	//nolint:staticcheck // 验证 nil ctx 归一化
	ctx, span := Start(nil, nil, SpanOptions{})
	assert.NotNil(t, ctx)
	assert.IsType(t, NoopSpan{}, span)
	span.End(Result{})
}

func TestStart_ObserverReturnsNil(t *testing.T) {
	parent := context.Background()
	ctx, span := Start(parent, nilObserver{}, SpanOptions{})
	assert.Equal(t, parent, ctx)
	assert.IsType(t, NoopSpan{}, span)
}

func TestNoopObserver(t *testing.T) {
	//nolint:staticcheck // 验证 nil ctx 归一化
	ctx, span := NoopObserver{}.Start(nil, SpanOptions{})
	assert.NotNil(t, ctx)
	span.End(Result{Status: StatusCancelled})

	var obs Observer = NoopObserver{}
	obs.RetryScheduled(context.Background(), RetryEvent{Attempt: 1})
	obs.FailureCaptured(context.Background(), FailureEvent{Phase: "load"})
}
