package xlazy

import (
	"bytes"
	"context"
	"io"
	"strconv"

	"github.com/google/uuid"

	"github.com/omeyang/xlazy/pkg/observability/xlog"
	"github.com/omeyang/xlazy/pkg/resilience/xretry"
	"github.com/omeyang/xlazy/pkg/suspense/xkeys"
	"github.com/omeyang/xlazy/pkg/suspense/xloader"
	"github.com/omeyang/xlazy/pkg/suspense/xrecover"
	"github.com/omeyang/xlazy/pkg/suspense/xresource"
	"github.com/omeyang/xlazy/pkg/suspense/xview"
)

// Loader 加载函数，见 xloader.Loader。
type Loader[T any] = xloader.Loader[T]

// Mount 消费方子树的一次挂载。挂载代际推进后 ID 随之更换，
// 消费方可据此丢弃与旧挂载绑定的状态。
type Mount struct {
	Generation uint64
	ID         string
}

// Consumer 渲染已加载的资源。返回错误或 panic 都按消费失败处理，不会重试。
type Consumer[T any] func(ctx context.Context, w io.Writer, v T, m Mount) error

// Status Render 输出的视图类别。
type Status int

const (
	// StatusLoading 资源未就绪，输出加载视图。
	StatusLoading Status = iota
	// StatusReady 输出消费方渲染结果。
	StatusReady
	// StatusFailed 输出错误视图。
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "Status(" + strconv.Itoa(int(s)) + ")"
	}
}

// Boundary 一个延迟加载边界，并发安全。
type Boundary[T any] struct {
	opts    *options
	logger  xlog.Logger
	loader  Loader[T]
	consume Consumer[T]

	keys    *xkeys.Keyring[T]
	bridge  *xrecover.Bridge
	mount   *xkeys.Mount[Mount]
	loading *xview.LoadingResolver
	errView *xview.ErrorResolver
}

// New 创建边界并立即发起第一次加载。
func New[T any](loader Loader[T], consume Consumer[T], opts ...Option) (*Boundary[T], error) {
	if loader == nil {
		return nil, ErrNilLoader
	}
	if consume == nil {
		return nil, ErrNilConsumer
	}
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	logger := o.diagnostics()
	b := &Boundary[T]{
		opts:    o,
		logger:  logger.With(xlog.Boundary(o.name), xlog.Component("xlazy")),
		loader:  loader,
		consume: consume,
		mount: xkeys.NewMount(func(gen uint64) Mount {
			return Mount{Generation: gen, ID: uuid.NewString()}
		}),
		loading: xview.NewLoadingResolver(o.loading),
		errView: xview.NewErrorResolver(o.errView),
	}
	b.keys = xkeys.NewKeyring(b.factory(o.policy()))
	b.bridge = xrecover.NewBridge(b.keys,
		xrecover.WithOnError(o.onError),
		xrecover.WithOnRetry(o.onRetry),
		xrecover.WithAttempts(func() int { return b.keys.Current().Attempts() }),
		xrecover.WithLogger(logger),
		xrecover.WithObserver(o.observer),
		xrecover.WithName(o.name),
	)
	return b, nil
}

func (b *Boundary[T]) factory(p xretry.Policy) xkeys.Factory[T] {
	o := b.opts
	return func(gen uint64) *xloader.Instance[T] {
		return xloader.Start(gen, b.loader, p,
			xloader.WithScheduler(o.scheduler),
			xloader.WithLogger(o.diagnostics()),
			xloader.WithObserver(o.observer),
			xloader.WithName(o.name),
		)
	}
}

// Render 按当前状态输出视图。
//
// 已有可见失败时输出错误视图；资源挂起时输出加载视图；
// 重试耗尽时捕获加载失败；资源就绪时以当前挂载调用消费方，
// 消费失败被捕获后输出错误视图，消费方的部分输出被丢弃。
// 返回的 error 只来自视图写出本身。
//
// 代际与实例在同一次快照中取得。渲染期间发生重置时，
// 旧代际的失败被丢弃，并按新代际重新渲染。
func (b *Boundary[T]) Render(ctx context.Context, w io.Writer) (Status, error) {
	for {
		if b.keys.Closed() {
			return StatusFailed, ErrClosed
		}
		if d, ok := b.bridge.Failed(); ok {
			return StatusFailed, b.renderError(ctx, w, d)
		}

		gens, inst := b.keys.Snapshot()
		v, err := inst.Handle().Read()
		if err != nil {
			if xresource.IsSuspended(err) {
				return StatusLoading, b.loading.Resolve().Render(ctx, w)
			}
			d, ok := b.bridge.Capture(err, xrecover.PhaseLoad, gens)
			if !ok {
				continue
			}
			return StatusFailed, b.renderError(ctx, w, d)
		}

		m := b.mount.Get(gens.Mount)
		var buf bytes.Buffer
		if err := xrecover.Guard(func() error { return b.consume(ctx, &buf, v, m) }); err != nil {
			d, ok := b.bridge.Capture(err, xrecover.PhaseConsume, gens)
			if !ok {
				continue
			}
			return StatusFailed, b.renderError(ctx, w, d)
		}
		_, err = buf.WriteTo(w)
		return StatusReady, err
	}
}

func (b *Boundary[T]) renderError(ctx context.Context, w io.Writer, d xrecover.Decision) error {
	return b.errView.Resolve(xview.ErrorProps{
		Err:       d.Err,
		Phase:     d.Phase.String(),
		Reset:     d.Reset,
		ResetPath: b.opts.resetPath,
	}).Render(ctx, w)
}

// Reset 清除失败、重建加载实例与消费方挂载，并调用 OnRetry。
// 边界关闭后不做任何事。
func (b *Boundary[T]) Reset() {
	b.bridge.Reset()
}

// Reconfigure 替换重试策略，只作用于下一代加载实例，当前实例保持原策略。
func (b *Boundary[T]) Reconfigure(p xretry.Policy) {
	b.keys.SetFactory(b.factory(p))
	b.logger.Info(context.Background(), "xlazy: policy reconfigured",
		xlog.Attempt(p.Limit()),
		xlog.Delay(p.BaseDelay),
	)
}

// Close 拆除当前加载实例，幂等。
func (b *Boundary[T]) Close() error {
	return b.keys.Close()
}

// Generations 返回当前代际。
func (b *Boundary[T]) Generations() xkeys.Generations {
	return b.keys.Generations()
}

// State 返回当前加载实例的句柄状态。
func (b *Boundary[T]) State() xresource.State {
	return b.keys.Current().Handle().State()
}

// Attempts 返回当前加载实例已失败的尝试次数。
func (b *Boundary[T]) Attempts() int {
	return b.keys.Current().Attempts()
}

// Policy 返回当前加载实例的重试策略。
func (b *Boundary[T]) Policy() xretry.Policy {
	return b.keys.Current().Policy()
}

// Failed 返回当前代际已可见的失败。
func (b *Boundary[T]) Failed() (xrecover.Decision, bool) {
	return b.bridge.Failed()
}

// Name 返回边界名称。
func (b *Boundary[T]) Name() string {
	return b.opts.name
}

// Wait 阻塞等待当前加载实例结算，供没有挂起协议的宿主使用。
//
// 等待期间的 Reset 会拆除被等待的实例，该实例不再结算，调用方应使用带超时的 ctx。
func (b *Boundary[T]) Wait(ctx context.Context) (T, error) {
	if b.keys.Closed() {
		var zero T
		return zero, ErrClosed
	}
	return b.keys.Current().Handle().Wait(ctx)
}
