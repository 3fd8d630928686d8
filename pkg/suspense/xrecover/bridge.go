package xrecover

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"strconv"
	"sync"

	"github.com/omeyang/xlazy/pkg/observability/xlog"
	"github.com/omeyang/xlazy/pkg/observability/xmetrics"
	"github.com/omeyang/xlazy/pkg/suspense/xkeys"
	"github.com/omeyang/xlazy/pkg/suspense/xloader"
)

// ErrNilCapture 以 nil 错误调用 Capture 时记录的失败原因。
var ErrNilCapture = errors.New("xrecover: captured nil error")

// Phase 失败发生的阶段。
type Phase int

const (
	// PhaseLoad 重试耗尽后的加载失败。
	PhaseLoad Phase = iota
	// PhaseConsume 消费已加载资源时的失败。
	PhaseConsume
)

func (p Phase) String() string {
	switch p {
	case PhaseLoad:
		return "load"
	case PhaseConsume:
		return "consume"
	default:
		return "Phase(" + strconv.Itoa(int(p)) + ")"
	}
}

// Context 传给 OnError 的失败上下文。
type Context struct {
	Boundary    string
	Phase       Phase
	Generations xkeys.Generations
	// Attempts 失败时当前实例已失败的尝试次数，消费失败时为加载成功前的失败次数。
	Attempts int
	// Stack panic 时的调用栈，其余情况为空。
	Stack []byte
}

// Decision 一次失败捕获的结果。宿主据此渲染错误视图，Reset 是重置入口。
type Decision struct {
	Err   error
	Phase Phase
	Reset func()
}

// Boundary 宿主失败捕获协议的最小接口。
type Boundary interface {
	Capture(err error, phase Phase, at xkeys.Generations) (Decision, bool)
	Reset()
}

// Rekeyer 推进身份钥匙的能力，*xkeys.Keyring 满足。
type Rekeyer interface {
	Rekey() (xkeys.Generations, error)
	Generations() xkeys.Generations
}

var _ Boundary = (*Bridge)(nil)

// Bridge 的失败状态记录在捕获时的代际上，代际推进后自然失效。
type Bridge struct {
	keys     Rekeyer
	opts     *options
	logger   xlog.Logger
	resetMu  sync.Mutex // 串行化 Reset 与 Capture 的代际判断
	mu       sync.Mutex
	failed   *Decision
	failedAt xkeys.Generations
	visible  bool
}

// NewBridge 创建 Bridge。
func NewBridge(keys Rekeyer, opts ...Option) *Bridge {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return &Bridge{
		keys: keys,
		opts: o,
		logger: o.logger.With(
			xlog.Boundary(o.name),
			xlog.Component("xrecover"),
		),
	}
}

// Capture 捕获一次发生在代际 at 下的失败。
//
// at 是宿主开始渲染时与实例一起取得的代际快照。at 已不是当前代际时
// 失败来自被拆除的工作，直接丢弃：不调用 OnError，ok 为 false，宿主应按当前状态重新渲染。
// 首次捕获当前代际的失败时先调用 OnError，再把失败状态标记为可见。
// 同一代际的重复捕获（宿主重复渲染同一失败状态，可能来自并发请求）
// 直接返回已有决定，不再调用 OnError。
func (b *Bridge) Capture(err error, phase Phase, at xkeys.Generations) (Decision, bool) {
	if err == nil {
		err = ErrNilCapture
	}

	// 与 Reset 互斥：判断 at 是否过期与记录失败之间不会插入重置
	b.resetMu.Lock()
	if b.keys.Generations() != at {
		b.resetMu.Unlock()
		b.logger.Debug(context.Background(), "xlazy: stale failure dropped",
			xlog.Phase(phase.String()),
			xlog.Generation(at.Loader, at.Mount),
			xlog.Err(err),
		)
		return Decision{}, false
	}
	b.mu.Lock()
	if b.failed != nil && b.failedAt == at {
		d := *b.failed
		b.mu.Unlock()
		b.resetMu.Unlock()
		return d, true
	}
	d := Decision{Err: err, Phase: phase, Reset: b.Reset}
	b.failed = &d
	b.failedAt = at
	b.visible = false
	b.mu.Unlock()
	attempts := b.opts.attempts()
	b.resetMu.Unlock()

	fctx := Context{
		Boundary:    b.opts.name,
		Phase:       phase,
		Generations: at,
		Attempts:    attempts,
	}
	var pe *xloader.PanicError
	if errors.As(err, &pe) {
		fctx.Stack = pe.Stack
	}

	b.logger.Warn(context.Background(), "xlazy: failure captured",
		xlog.Phase(phase.String()),
		xlog.Generation(at.Loader, at.Mount),
		xlog.Attempt(fctx.Attempts),
		xlog.Err(err),
	)
	b.opts.observer.FailureCaptured(context.Background(), xmetrics.FailureEvent{
		Boundary:  b.opts.name,
		Phase:     phase.String(),
		LoaderGen: at.Loader,
		MountGen:  at.Mount,
		Attempts:  attempts,
		Panic:     pe != nil,
	})
	b.callOnError(err, fctx)

	b.mu.Lock()
	// OnError 期间可能已被重置
	if b.failed != nil && b.failedAt == at {
		b.visible = true
	}
	b.mu.Unlock()
	return d, true
}

// callOnError 调用观测回调，回调 panic 不影响边界状态。
func (b *Bridge) callOnError(err error, fctx Context) {
	if b.opts.onError == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error(context.Background(), "xlazy: onError callback panicked",
				slog.Any("panic", r))
		}
	}()
	b.opts.onError(err, fctx)
}

// Failed 返回当前代际下已可见的失败，没有时 ok 为 false。
func (b *Bridge) Failed() (Decision, bool) {
	gens := b.keys.Generations()
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failed == nil || !b.visible || b.failedAt != gens {
		return Decision{}, false
	}
	return *b.failed, true
}

// Reset 清除失败状态、推进代际并调用 OnRetry。
//
// 连续多次调用安全：每次调用都在构造新实例前完整拆除当前实例，
// 每次成功的重置对应一次 OnRetry。Keyring 已关闭时不做任何事。
func (b *Bridge) Reset() {
	if b.rekey() {
		b.callOnRetry()
	}
}

// rekey 在 resetMu 内完成清除与推进，OnRetry 在锁外调用，回调中可以安全地渲染或捕获。
func (b *Bridge) rekey() bool {
	b.resetMu.Lock()
	defer b.resetMu.Unlock()

	ctx, span := xmetrics.Start(context.Background(), b.opts.observer, xmetrics.SpanOptions{
		Component: "xrecover",
		Operation: "reset",
		Boundary:  b.opts.name,
	})

	b.mu.Lock()
	b.failed = nil
	b.visible = false
	b.mu.Unlock()

	gens, err := b.keys.Rekey()
	if err != nil {
		span.End(xmetrics.Result{Status: xmetrics.StatusCancelled, Err: err})
		return false
	}
	span.End(xmetrics.Result{Attrs: []xmetrics.Attr{
		xmetrics.Uint64("loader_gen", gens.Loader),
		xmetrics.Uint64("mount_gen", gens.Mount),
	}})

	b.logger.Info(ctx, "xlazy: reset", xlog.Generation(gens.Loader, gens.Mount))
	return true
}

func (b *Bridge) callOnRetry() {
	if b.opts.onRetry == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error(context.Background(), "xlazy: onRetry callback panicked",
				slog.Any("panic", r))
		}
	}()
	b.opts.onRetry()
}

// Guard 执行消费方渲染，panic 转为 *xloader.PanicError 返回。
func Guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &xloader.PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	if fn == nil {
		return nil
	}
	return fn()
}
