package xlazy

import (
	"time"

	"github.com/omeyang/xlazy/pkg/observability/xlog"
	"github.com/omeyang/xlazy/pkg/observability/xmetrics"
	"github.com/omeyang/xlazy/pkg/resilience/xretry"
	"github.com/omeyang/xlazy/pkg/suspense/xloader"
	"github.com/omeyang/xlazy/pkg/suspense/xrecover"
	"github.com/omeyang/xlazy/pkg/suspense/xview"
)

// Option 配置 Boundary。
type Option func(*options)

type options struct {
	retries    int
	retryDelay time.Duration
	loading    xview.LoadingOverride
	errView    xview.ErrorOverride
	onError    func(error, xrecover.Context)
	onRetry    func()
	verbose    bool
	logger     xlog.Logger
	observer   xmetrics.Observer
	scheduler  xloader.Scheduler
	name       string
	resetPath  string
}

func defaultOptions() *options {
	return &options{
		retries:    xretry.DefaultMaxAttempts,
		retryDelay: xretry.DefaultBaseDelay,
		observer:   xmetrics.NoopObserver{},
		scheduler:  xloader.SystemScheduler{},
		name:       "default",
	}
}

func (o *options) policy() xretry.Policy {
	return xretry.NewPolicy(o.retries, o.retryDelay)
}

// diagnostics 返回诊断日志：verbose 关闭时丢弃全部输出。
func (o *options) diagnostics() xlog.Logger {
	if !o.verbose {
		return xlog.Discard()
	}
	if o.logger != nil {
		return o.logger
	}
	return xlog.Default()
}

// WithRetries 设置包含首次尝试在内的总尝试次数，默认 3。
// 负数按 0 处理，≤ 1 表示不重试。
func WithRetries(n int) Option {
	return func(o *options) { o.retries = n }
}

// WithRetryDelay 设置线性退避的基础延迟，默认 1s。
// 第 n 次失败后等待 d × n。
func WithRetryDelay(d time.Duration) Option {
	return func(o *options) { o.retryDelay = d }
}

// WithLoading 覆盖加载视图。
func WithLoading(v xview.LoadingOverride) Option {
	return func(o *options) { o.loading = v }
}

// WithError 覆盖错误视图。
func WithError(v xview.ErrorOverride) Option {
	return func(o *options) { o.errView = v }
}

// WithOnError 设置失败观测回调，重试耗尽或消费失败时恰好调用一次。
func WithOnError(fn func(error, xrecover.Context)) Option {
	return func(o *options) { o.onError = fn }
}

// WithOnRetry 设置重置观测回调，每次 Reset 恰好调用一次。
func WithOnRetry(fn func()) Option {
	return func(o *options) { o.onRetry = fn }
}

// WithVerbose 开启诊断日志，默认关闭。
func WithVerbose(v bool) Option {
	return func(o *options) { o.verbose = v }
}

// WithLogger 设置诊断日志输出，仅在 verbose 开启时生效，默认使用 xlog.Default()。
func WithLogger(l xlog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver 设置观测器。
func WithObserver(obs xmetrics.Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithScheduler 设置定时设施，测试中注入手动时钟。
func WithScheduler(s xloader.Scheduler) Option {
	return func(o *options) {
		if s != nil {
			o.scheduler = s
		}
	}
}

// WithName 设置边界名称，出现在日志与观测属性中。
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithResetPath 设置默认错误视图中重试表单的提交地址。
func WithResetPath(path string) Option {
	return func(o *options) { o.resetPath = path }
}
