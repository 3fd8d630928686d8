package xmetrics

import (
	"context"
	"strconv"
	"time"
)

// Kind 表示观测跨度类型。
type Kind int

const (
	// KindInternal 表示内部操作（加载尝试、边界重置）。
	KindInternal Kind = iota
	// KindServer 表示宿主 HTTP 处理。
	KindServer
	// KindClient 表示对外部数据源的调用。
	KindClient
)

// String 返回 Kind 的可读字符串表示。
func (k Kind) String() string {
	switch k {
	case KindInternal:
		return "Internal"
	case KindServer:
		return "Server"
	case KindClient:
		return "Client"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Status 表示观测结果状态。
type Status string

const (
	// StatusOK 表示成功。
	StatusOK Status = "ok"
	// StatusError 表示失败。
	StatusError Status = "error"
	// StatusCancelled 表示在结果到达前被拆除（卸载、重置或关闭）。
	StatusCancelled Status = "cancelled"
)

// Attr 表示只写入跨度的属性，不参与指标维度。
type Attr struct {
	Key   string
	Value any
}

// SpanOptions 定义观测跨度的创建参数。
//
// Boundary 与 Attempt 同时作为跨度属性与指标维度；
// 代际等无界取值放在 Attrs 中，只进入跨度。
type SpanOptions struct {
	Component string
	Operation string
	Kind      Kind
	Boundary  string
	// Attempt 加载尝试序号（从 1 开始），0 表示与尝试无关。
	Attempt int
	Attrs   []Attr
}

// Result 表示观测跨度结束时的结果。
type Result struct {
	// Status 为空时根据 Err 推导。
	Status Status
	Err    error
	Attrs  []Attr
}

// Span 表示一次观测跨度。
type Span interface {
	// End 结束观测并记录结果，多次调用只生效一次。
	End(result Result)
}

// RetryEvent 一次失败后登记的重试定时器。
type RetryEvent struct {
	Boundary  string
	LoaderGen uint64
	// Attempt 已失败的尝试次数，下一次尝试的序号为 Attempt+1。
	Attempt int
	Delay   time.Duration
}

// FailureEvent 一次对外可见的失败（重试耗尽或消费失败）。
type FailureEvent struct {
	Boundary  string
	Phase     string
	LoaderGen uint64
	MountGen  uint64
	Attempts  int
	Panic     bool
}

// Observer 边界的观测接口：跨度覆盖单次操作，事件覆盖重试与失败。
//
// 事件方法可能在调用方持锁时被调用，实现不得回调边界。
type Observer interface {
	Start(ctx context.Context, opts SpanOptions) (context.Context, Span)
	RetryScheduled(ctx context.Context, ev RetryEvent)
	FailureCaptured(ctx context.Context, ev FailureEvent)
}

// NoopObserver 是空实现。
type NoopObserver struct{}

// Start 返回 ctx 和空跨度。若 ctx 为 nil，返回 context.Background()。
func (NoopObserver) Start(ctx context.Context, _ SpanOptions) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx, NoopSpan{}
}

// RetryScheduled 空实现。
func (NoopObserver) RetryScheduled(context.Context, RetryEvent) {}

// FailureCaptured 空实现。
func (NoopObserver) FailureCaptured(context.Context, FailureEvent) {}

// NoopSpan 是空跨度实现。
type NoopSpan struct{}

// End 空实现。
func (NoopSpan) End(_ Result) {}

// Start 使用 observer 开始观测，nil observer 时返回空跨度。
//
// 保证返回非 nil 的 context 与 Span：nil ctx 归一化为 context.Background()，
// 自定义 Observer 返回的 nil 值会兜底为入参 ctx 与 [NoopSpan]。
func Start(ctx context.Context, observer Observer, opts SpanOptions) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	if observer == nil {
		return ctx, NoopSpan{}
	}
	retCtx, span := observer.Start(ctx, opts)
	if retCtx == nil {
		retCtx = ctx
	}
	if span == nil {
		span = NoopSpan{}
	}
	return retCtx, span
}
