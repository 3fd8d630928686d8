// Package xretry 定义资源加载的重试策略与退避策略。
//
// # 核心概念
//
//   - Policy：每个加载实例不可变的 {MaxAttempts, BaseDelay}
//   - RetryPolicy：判断失败后是否继续尝试
//   - BackoffPolicy：计算下一次尝试前的延迟
//
// 加载重试使用线性退避：第 n 次失败后等待 BaseDelay × n，
// 而不是指数增长。MaxAttempts ≤ 1 表示首次失败即终止。
//
//	p := xretry.NewPolicy(3, time.Second)
//	p.Delay(1) // 1s
//	p.Delay(2) // 2s
//	p.Exhausted(3) // true
//
// # 两种执行方式
//
// 异步编排（xloader）只借用 Policy 的判定与延迟计算，
// 定时器由宿主的调度器注册，以便在拆除时同步清理。
//
// 同步执行（CLI、批处理等没有挂起协议的宿主）使用 Retryer，
// 底层为 [avast/retry-go/v5]：
//
//	r := xretry.NewPolicyRetryer(p)
//	data, err := xretry.DoWithResult(ctx, r, func(ctx context.Context) ([]byte, error) {
//	    return fetch(ctx)
//	})
//
// # 错误分类
//
//   - NewPermanentError(err)：不再重试，立即成为终态失败
//   - 其他错误一律视为临时失败，按策略重试
//
// [avast/retry-go/v5]: https://github.com/avast/retry-go
package xretry
