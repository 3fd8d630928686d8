package xretry

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	retry "github.com/avast/retry-go/v5"
)

// safeIntToUint 将 int 安全转换为 uint。
// 负数返回 0，正数直接转换。
func safeIntToUint(n int) uint {
	if n <= 0 {
		return 0
	}
	return uint(n)
}

// safeUintToInt 将 uint 安全转换为 int。
// 超过 MaxInt 的值会被截断到 MaxInt。
func safeUintToInt(n uint) int {
	if n > uint(math.MaxInt) {
		return math.MaxInt
	}
	return int(n)
}

// 确保 *Retryer 实现 Executor 接口
var _ Executor = (*Retryer)(nil)

// Retryer 同步重试执行器
//
// Retryer 组合了 RetryPolicy（重试策略）和 BackoffPolicy（退避策略），
// 在调用方 goroutine 中阻塞执行，底层使用 avast/retry-go/v5。
// 适用于没有挂起协议的宿主；异步加载请使用 xloader。
type Retryer struct {
	retryPolicy   RetryPolicy
	backoffPolicy BackoffPolicy
	onRetry       func(attempt int, delay time.Duration, err error)
}

// RetryerOption 执行器配置选项
type RetryerOption func(*Retryer)

// WithRetryPolicy 设置重试策略
func WithRetryPolicy(p RetryPolicy) RetryerOption {
	return func(r *Retryer) {
		if p != nil {
			r.retryPolicy = p
		}
	}
}

// WithBackoffPolicy 设置退避策略
func WithBackoffPolicy(p BackoffPolicy) RetryerOption {
	return func(r *Retryer) {
		if p != nil {
			r.backoffPolicy = p
		}
	}
}

// WithOnRetry 设置重试回调，attempt 为已失败次数（从 1 开始），delay 为即将等待的时间。
// 传入 nil 会被静默忽略。
func WithOnRetry(f func(attempt int, delay time.Duration, err error)) RetryerOption {
	return func(r *Retryer) {
		if f != nil {
			r.onRetry = f
		}
	}
}

// NewRetryer 创建重试执行器
// 默认使用 DefaultPolicy 对应的 FixedRetry 与线性退避
func NewRetryer(opts ...RetryerOption) *Retryer {
	p := DefaultPolicy()
	r := &Retryer{
		retryPolicy:   p.RetryPolicy(),
		backoffPolicy: p.Backoff(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewPolicyRetryer 按 Policy 创建执行器，语义与异步编排器一致：
// 最多 p.Limit() 次尝试，第 n 次失败后等待 BaseDelay × n。
func NewPolicyRetryer(p Policy, opts ...RetryerOption) *Retryer {
	base := []RetryerOption{
		WithRetryPolicy(p.RetryPolicy()),
		WithBackoffPolicy(p.Backoff()),
	}
	return NewRetryer(append(base, opts...)...)
}

// Do 执行带重试的操作
// 如果接收者为 nil，返回 ErrNilRetryer。
func (r *Retryer) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if r == nil {
		return ErrNilRetryer
	}
	if ctx == nil {
		return ErrNilContext
	}
	if fn == nil {
		return ErrNilFunc
	}
	return retry.New(r.buildOptions(ctx)...).Do(func() error {
		return fn(ctx)
	})
}

// DoWithResult 执行带重试的操作（有返回值）
//
// 这是泛型函数，必须作为包级函数使用。
func DoWithResult[T any](ctx context.Context, r *Retryer, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if r == nil {
		return zero, ErrNilRetryer
	}
	if ctx == nil {
		return zero, ErrNilContext
	}
	if fn == nil {
		return zero, ErrNilFunc
	}
	return retry.NewWithData[T](r.buildOptions(ctx)...).Do(func() (T, error) {
		return fn(ctx)
	})
}

// buildOptions 构建 retry-go 的选项
func (r *Retryer) buildOptions(ctx context.Context) []retry.Option {
	opts := make([]retry.Option, 0, 6)
	opts = append(opts, retry.Context(ctx))

	// 防止零值 Retryer 使用时 panic
	retryPolicy := r.retryPolicy
	if retryPolicy == nil {
		retryPolicy = DefaultPolicy().RetryPolicy()
	}
	backoffPolicy := r.backoffPolicy
	if backoffPolicy == nil {
		backoffPolicy = DefaultPolicy().Backoff()
	}

	maxAttempts := retryPolicy.MaxAttempts()
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	opts = append(opts, retry.Attempts(safeIntToUint(maxAttempts)))

	// 设计决策: Attempts 为硬上限，ShouldRetry 可提前终止（如 PermanentError）。
	// attemptCount 为已失败次数（1-based），与 RetryPolicy.ShouldRetry 语义一致。
	var attemptCount atomic.Int64
	opts = append(opts, retry.RetryIf(func(err error) bool {
		count := int(attemptCount.Add(1))
		if !retry.IsRecoverable(err) {
			return false
		}
		return retryPolicy.ShouldRetry(ctx, count, err)
	}))

	// retry-go v5 中 DelayType 的 n 从 1 开始，与 BackoffPolicy.NextDelay 一致
	opts = append(opts, retry.DelayType(ToDelayType(backoffPolicy)))

	if r.onRetry != nil {
		onRetry := r.onRetry
		opts = append(opts, retry.OnRetry(func(n uint, err error) {
			// OnRetry 的 n 从 0 开始，+1 转为已失败次数
			attempt := safeUintToInt(n) + 1
			onRetry(attempt, backoffPolicy.NextDelay(attempt), err)
		}))
	}

	// 只返回最后一个错误，与异步编排器的终态错误一致
	opts = append(opts, retry.LastErrorOnly(true))

	return opts
}

// ToDelayType 将 BackoffPolicy 转换为 retry-go 的 DelayTypeFunc
func ToDelayType(policy BackoffPolicy) retry.DelayTypeFunc {
	if policy == nil {
		return func(_ uint, _ error, _ retry.DelayContext) time.Duration {
			return 0
		}
	}
	return func(n uint, _ error, _ retry.DelayContext) time.Duration {
		return policy.NextDelay(safeUintToInt(n))
	}
}

// RetryPolicy 返回当前重试策略。
// nil 接收者返回 nil。
func (r *Retryer) RetryPolicy() RetryPolicy {
	if r == nil {
		return nil
	}
	return r.retryPolicy
}

// BackoffPolicy 返回当前退避策略。
// nil 接收者返回 nil。
func (r *Retryer) BackoffPolicy() BackoffPolicy {
	if r == nil {
		return nil
	}
	return r.backoffPolicy
}
