package xloader

import (
	"context"

	"github.com/omeyang/xlazy/pkg/observability/xlog"
	"github.com/omeyang/xlazy/pkg/observability/xmetrics"
)

// Option 配置加载实例。
type Option func(*options)

type options struct {
	scheduler Scheduler
	logger    xlog.Logger
	observer  xmetrics.Observer
	parent    context.Context
	name      string
}

func defaultOptions() *options {
	return &options{
		scheduler: SystemScheduler{},
		logger:    xlog.Discard(),
		observer:  xmetrics.NoopObserver{},
		parent:    context.Background(),
		name:      "default",
	}
}

// WithScheduler 设置定时设施，默认 SystemScheduler。
func WithScheduler(s Scheduler) Option {
	return func(o *options) {
		if s != nil {
			o.scheduler = s
		}
	}
}

// WithLogger 设置诊断日志，默认不输出。
func WithLogger(l xlog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver 设置观测器，每次尝试一个 load_attempt 跨度。
func WithObserver(obs xmetrics.Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithContext 设置加载 context 的父级，父级取消会传递给正在执行的加载函数。
// 父级取消不等于拆除：实例仍按失败处理加载函数返回的错误。
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.parent = ctx
		}
	}
}

// WithName 设置边界名称，用于日志和观测属性。
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}
