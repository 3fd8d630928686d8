// Package xmetrics 提供懒加载边界的统一观测接口（metrics + tracing）。
//
// 业务代码只依赖 Observer/Span；默认实现基于 OpenTelemetry。
//
//	obs, _ := xmetrics.NewOTelObserver()
//	ctx, span := xmetrics.Start(ctx, obs, xmetrics.SpanOptions{
//		Component: "xloader",
//		Operation: "load_attempt",
//		Boundary:  "profile",
//		Attempt:   1,
//	})
//	defer span.End(xmetrics.Result{Err: err})
//
// # 指标
//
//   - xlazy.operation.total / xlazy.operation.duration：
//     boundary / component / operation / status [/ attempt]
//   - xlazy.retry.scheduled：boundary / attempt
//   - xlazy.retry.delay：boundary
//   - xlazy.failure.captured：boundary / phase / panic
//
// status 取值 ok / error / cancelled。代际（loader_gen / mount_gen）无界，只写入跨度。
package xmetrics
