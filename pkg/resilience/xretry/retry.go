package xretry

import (
	"context"
	"time"
)

// RetryPolicy 定义重试策略接口
// 判断是否应该继续重试
//
// 通过 Retryer 使用时：
//   - MaxAttempts() 设置 retry-go 的 Attempts 上限
//   - ShouldRetry() 在每次失败后被调用
type RetryPolicy interface {
	// MaxAttempts 返回最大尝试次数（包含首次尝试），最小为 1
	MaxAttempts() int

	// ShouldRetry 判断是否应该重试
	//
	// attempt: 已失败的尝试次数（从 1 开始）
	// err: 本次尝试的错误
	ShouldRetry(ctx context.Context, attempt int, err error) bool
}

// BackoffPolicy 定义退避策略接口
// 计算重试间隔时间
type BackoffPolicy interface {
	// NextDelay 返回第 attempt 次失败后的等待时间
	// attempt: 已失败的尝试次数（从 1 开始）
	NextDelay(attempt int) time.Duration
}

// Executor 同步重试执行器接口
//
// 设计决策: NewRetryer 返回 *Retryer 而非 Executor 接口，因为泛型函数
// DoWithResult 需要访问 *Retryer 的内部方法。调用方如需 mock 重试执行器，
// 可在自身代码中使用此接口作为函数参数类型。
type Executor interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
