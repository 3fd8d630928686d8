package xretry

import (
	"math"
	"time"
)

// 默认策略取值，对应配置项 retries / retry_delay 的缺省值。
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
)

// maxLinearDelay 线性退避的上限，仅用于防止溢出。
const maxLinearDelay = time.Duration(math.MaxInt64)

// Policy 一个加载实例的重试策略，创建后不可变。
//
// MaxAttempts 为包含首次尝试在内的总次数，≤ 1 表示不重试；
// BaseDelay 为线性退避的单位，第 n 次失败后等待 BaseDelay × n。
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultPolicy 返回默认策略：3 次尝试，基础延迟 1s。
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, BaseDelay: DefaultBaseDelay}
}

// NewPolicy 创建策略，负数被截断为 0。
func NewPolicy(maxAttempts int, baseDelay time.Duration) Policy {
	if maxAttempts < 0 {
		maxAttempts = 0
	}
	if baseDelay < 0 {
		baseDelay = 0
	}
	return Policy{MaxAttempts: maxAttempts, BaseDelay: baseDelay}
}

// Limit 返回实际生效的尝试上限（至少 1 次）。
func (p Policy) Limit() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Exhausted 判断已失败 attempts 次后是否已无重试余量。
func (p Policy) Exhausted(attempts int) bool {
	return attempts >= p.Limit()
}

// Backoff 返回与策略对应的线性退避：BaseDelay × attempt。BaseDelay 为 0 时不等待。
func (p Policy) Backoff() BackoffPolicy {
	if p.BaseDelay <= 0 {
		return NewNoBackoff()
	}
	return NewLinearBackoff(p.BaseDelay, p.BaseDelay, maxLinearDelay)
}

// Delay 返回第 attempts 次失败后的等待时间。
func (p Policy) Delay(attempts int) time.Duration {
	return p.Backoff().NextDelay(attempts)
}

// RetryPolicy 返回与策略对应的重试策略，只允许一次尝试时永不重试。
func (p Policy) RetryPolicy() RetryPolicy {
	if p.Limit() == 1 {
		return NewNeverRetry()
	}
	return NewFixedRetry(p.Limit())
}
