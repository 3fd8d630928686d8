package xrecover

import (
	"github.com/omeyang/xlazy/pkg/observability/xlog"
	"github.com/omeyang/xlazy/pkg/observability/xmetrics"
)

// Option 配置 Bridge。
type Option func(*options)

type options struct {
	onError  func(error, Context)
	onRetry  func()
	attempts func() int
	logger   xlog.Logger
	observer xmetrics.Observer
	name     string
}

func defaultOptions() *options {
	return &options{
		attempts: func() int { return 0 },
		logger:   xlog.Discard(),
		observer: xmetrics.NoopObserver{},
		name:     "default",
	}
}

// WithOnError 设置失败观测回调，每次新捕获的失败恰好调用一次。
func WithOnError(fn func(error, Context)) Option {
	return func(o *options) { o.onError = fn }
}

// WithOnRetry 设置重置观测回调，每次重置恰好调用一次，内部自动重试不会触发。
func WithOnRetry(fn func()) Option {
	return func(o *options) { o.onRetry = fn }
}

// WithAttempts 设置读取当前实例失败次数的函数，用于填充 Context.Attempts。
func WithAttempts(fn func() int) Option {
	return func(o *options) {
		if fn != nil {
			o.attempts = fn
		}
	}
}

// WithLogger 设置诊断日志。
func WithLogger(l xlog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver 设置观测器，每次重置一个 reset 跨度。
func WithObserver(obs xmetrics.Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithName 设置边界名称。
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}
