package xsource

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/omeyang/xlazy/pkg/observability/xlog"
	"github.com/omeyang/xlazy/pkg/resilience/xretry"
	"github.com/omeyang/xlazy/pkg/suspense/xloader"
)

// 熔断默认值
const (
	DefaultFailureThreshold = 5
	DefaultOpenTimeout      = 30 * time.Second
	DefaultHalfOpenRequests = 1
)

// BreakerOption 熔断选项
type BreakerOption func(*breakerOptions)

type breakerOptions struct {
	threshold uint32
	timeout   time.Duration
	halfOpen  uint32
	logger    xlog.Logger
}

// WithFailureThreshold 设置触发熔断的连续失败次数，0 时忽略。
func WithFailureThreshold(n uint32) BreakerOption {
	return func(o *breakerOptions) {
		if n > 0 {
			o.threshold = n
		}
	}
}

// WithOpenTimeout 设置熔断打开后进入半开的等待时间。
func WithOpenTimeout(d time.Duration) BreakerOption {
	return func(o *breakerOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithBreakerLogger 记录熔断状态变化。
func WithBreakerLogger(l xlog.Logger) BreakerOption {
	return func(o *breakerOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// Breaker 用熔断器包装加载函数。熔断打开时直接返回
// gobreaker.ErrOpenState，按一次普通失败计入边界的尝试次数。
//
// 熔断器跨代际共享：重置边界不会重置熔断状态。
// 永久错误（如 404）与取消（边界重置或关闭拆除在途加载）不计入熔断失败。
func Breaker(name string, loader xloader.Loader[[]byte], opts ...BreakerOption) xloader.Loader[[]byte] {
	o := &breakerOptions{
		threshold: DefaultFailureThreshold,
		timeout:   DefaultOpenTimeout,
		halfOpen:  DefaultHalfOpenRequests,
		logger:    xlog.Discard(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	logger := o.logger.With(xlog.Component("xsource"), xlog.Operation("breaker"))

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: o.halfOpen,
		Timeout:     o.timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= o.threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || xretry.IsPermanent(err) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "xlazy: breaker state changed",
				xlog.Boundary(name),
				xlog.Phase(from.String()+"->"+to.String()),
			)
		},
	})

	return func(ctx context.Context) ([]byte, error) {
		if loader == nil {
			return nil, xloader.ErrNilLoader
		}
		return cb.Execute(func() ([]byte, error) {
			return loader(ctx)
		})
	}
}
