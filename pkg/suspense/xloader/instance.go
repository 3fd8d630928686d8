package xloader

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/omeyang/xlazy/pkg/observability/xlog"
	"github.com/omeyang/xlazy/pkg/observability/xmetrics"
	"github.com/omeyang/xlazy/pkg/resilience/xretry"
	"github.com/omeyang/xlazy/pkg/suspense/xresource"
)

// Loader 异步产出资源的加载函数。ctx 在实例拆除时取消。
type Loader[T any] func(ctx context.Context) (T, error)

// Instance 一代加载器的重试状态机。
//
// 实例创建后立即发起第一次尝试；同一实例内的尝试严格顺序执行，
// 下一次尝试只由上一次失败后注册的定时器发起。
type Instance[T any] struct {
	gen     uint64
	loader  Loader[T]
	policy  xretry.Policy
	backoff xretry.BackoffPolicy
	opts    *options
	logger  xlog.Logger

	handle *xresource.Handle[T]
	settle xresource.Settler[T]

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	cancelled bool
	attempts  int
	timers    map[uint64]Timer
	nextTimer uint64
	span      xmetrics.Span // 正在执行的尝试
}

// Start 创建第 gen 代加载实例并发起第一次尝试。
//
// loader 为 nil 时句柄立即以 ErrNilLoader 拒绝。
func Start[T any](gen uint64, loader Loader[T], policy xretry.Policy, opts ...Option) *Instance[T] {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	ctx, cancel := context.WithCancel(o.parent)
	handle, settle := xresource.New[T]()
	inst := &Instance[T]{
		gen:     gen,
		loader:  loader,
		policy:  policy,
		backoff: policy.Backoff(),
		opts:    o,
		logger: o.logger.With(
			xlog.Boundary(o.name),
			xlog.Component("xloader"),
			slog.Uint64(xlog.KeyLoaderGen, gen),
		),
		handle: handle,
		settle: settle,
		ctx:    ctx,
		cancel: cancel,
		timers: make(map[uint64]Timer),
	}

	inst.logger.Info(ctx, "xlazy: instance created",
		slog.Int("max_attempts", policy.Limit()),
		xlog.Delay(policy.BaseDelay),
	)

	if loader == nil {
		settle.Reject(ErrNilLoader)
		return inst
	}

	inst.mu.Lock()
	inst.issueLocked()
	inst.mu.Unlock()
	return inst
}

// issueLocked 发起第 attempts+1 次尝试，调用方持有 mu。
func (i *Instance[T]) issueLocked() {
	index := i.attempts + 1
	ctx, span := xmetrics.Start(i.ctx, i.opts.observer, xmetrics.SpanOptions{
		Component: "xloader",
		Operation: "load_attempt",
		Boundary:  i.opts.name,
		Attempt:   index,
		Attrs:     []xmetrics.Attr{xmetrics.Uint64("loader_gen", i.gen)},
	})
	i.span = span
	go i.run(ctx, span)
}

func (i *Instance[T]) run(ctx context.Context, span xmetrics.Span) {
	v, err := i.invoke(ctx)
	i.complete(span, v, err)
}

// invoke 调用加载函数，panic 转为 *PanicError。
func (i *Instance[T]) invoke(ctx context.Context) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return i.loader(ctx)
}

// complete 处理一次尝试的结果。
func (i *Instance[T]) complete(span xmetrics.Span, v T, err error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	// 拆除后到达的结果：跨度已由 Teardown 结束，这里不产生任何效果
	if i.cancelled {
		return
	}
	i.span = nil

	if err == nil {
		span.End(xmetrics.Result{Status: xmetrics.StatusOK})
		i.settle.Resolve(v)
		i.logger.Info(i.ctx, "xlazy: attempt succeeded",
			xlog.Attempt(i.attempts+1),
		)
		return
	}

	i.attempts++
	span.End(xmetrics.Result{Err: err})

	if i.policy.Exhausted(i.attempts) || xretry.IsPermanent(err) {
		i.settle.Reject(err)
		i.logger.Warn(i.ctx, "xlazy: attempt failed, giving up",
			xlog.Attempt(i.attempts),
			xlog.Err(err),
		)
		return
	}

	delay := i.backoff.NextDelay(i.attempts)
	i.logger.Info(i.ctx, "xlazy: attempt failed, retry scheduled",
		xlog.Attempt(i.attempts),
		xlog.Delay(delay),
		xlog.Err(err),
	)
	id := i.nextTimer
	i.nextTimer++
	i.timers[id] = i.opts.scheduler.AfterFunc(delay, func() { i.fire(id) })
	i.opts.observer.RetryScheduled(i.ctx, xmetrics.RetryEvent{
		Boundary:  i.opts.name,
		LoaderGen: i.gen,
		Attempt:   i.attempts,
		Delay:     delay,
	})
}

// fire 定时器到期，发起下一次尝试。
func (i *Instance[T]) fire(id uint64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.cancelled {
		return
	}
	if _, ok := i.timers[id]; !ok {
		return
	}
	delete(i.timers, id)
	i.issueLocked()
}

// Teardown 同步拆除实例，幂等。
//
// 返回前完成：置取消标记、停止并清空定时器、取消加载 context、
// 以 cancelled 状态结束进行中的尝试跨度。之后不会再有结算、定时器或日志。
func (i *Instance[T]) Teardown() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.cancelled {
		return
	}
	i.cancelled = true
	for id, t := range i.timers {
		t.Stop()
		delete(i.timers, id)
	}
	i.cancel()
	if i.span != nil {
		i.span.End(xmetrics.Result{Status: xmetrics.StatusCancelled})
		i.span = nil
	}
	i.logger.Info(context.Background(), "xlazy: instance torn down",
		xlog.Attempt(i.attempts),
	)
}

// Handle 返回只读资源句柄。
func (i *Instance[T]) Handle() *xresource.Handle[T] {
	return i.handle
}

// Generation 返回实例所属的加载器代际。
func (i *Instance[T]) Generation() uint64 {
	return i.gen
}

// Policy 返回实例创建时固定的重试策略。
func (i *Instance[T]) Policy() xretry.Policy {
	return i.policy
}

// Attempts 返回已失败的尝试次数。
func (i *Instance[T]) Attempts() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.attempts
}

// PendingTimers 返回尚未触发的定时器数量。
func (i *Instance[T]) PendingTimers() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.timers)
}

// Cancelled 报告实例是否已拆除。
func (i *Instance[T]) Cancelled() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.cancelled
}

// String 用于调试输出。
func (i *Instance[T]) String() string {
	return fmt.Sprintf("xloader.Instance{gen=%d attempts=%d state=%s}",
		i.gen, i.Attempts(), i.handle.State())
}
