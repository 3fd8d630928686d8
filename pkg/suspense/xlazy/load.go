package xlazy

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/omeyang/xlazy/pkg/resilience/xretry"
	"github.com/omeyang/xlazy/pkg/suspense/xloader"
)

// Load 在调用方 goroutine 中同步加载，重试语义与 Boundary 相同：
// 最多 p.Limit() 次尝试，第 n 次失败后等待 BaseDelay × n，
// PermanentError 立即终止，panic 按普通失败处理。
//
// 返回最后一次尝试的错误；ctx 结束时返回 ctx 的错误。
func Load[T any](ctx context.Context, loader Loader[T], p xretry.Policy, onRetry ...func(attempt int, delay time.Duration, err error)) (T, error) {
	if loader == nil {
		var zero T
		return zero, ErrNilLoader
	}
	var opts []xretry.RetryerOption
	for _, fn := range onRetry {
		opts = append(opts, xretry.WithOnRetry(fn))
	}
	r := xretry.NewPolicyRetryer(p, opts...)
	return xretry.DoWithResult(ctx, r, func(ctx context.Context) (v T, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = &xloader.PanicError{Value: rec, Stack: debug.Stack()}
			}
		}()
		return loader(ctx)
	})
}
