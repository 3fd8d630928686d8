// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xlog: 结构化日志，基于 log/slog 扩展，支持按大小轮转
//   - xmetrics: 统一观测接口，OpenTelemetry 实现（追踪 + 指标）
//
// 延迟加载边界的诊断日志统一以 "xlazy:" 为前缀，
// 每次加载尝试与每次重置各对应一个跨度。
package observability
