// Package xlog 基于 log/slog 的结构化日志库。
//
// # 核心功能
//
//   - Builder 模式配置（输出目标、级别、格式、轮转）
//   - 动态级别调整（运行时热更新）
//   - 按大小轮转的日志文件（lumberjack）
//   - 懒加载边界的标准字段（代际、尝试次数、等待时间）
//
// # 创建 Logger
//
// Builder 采用 first-error-wins：遇到第一个配置错误后，Build 返回该错误。
//
//	logger, cleanup, err := xlog.New().
//	    SetLevelString("debug").
//	    SetFormat("json").
//	    SetRotation("/var/log/xlazy.log").
//	    Build()
//	if err != nil {
//	    return err
//	}
//	defer cleanup()
//
// # 关闭诊断
//
// [Discard] 返回永不输出的 Logger，verbose 关闭时由调用方直接注入，无需判空。
//
// # 全局 Logger
//
// [Default]、[Info]、[Warn]、[Error] 面向命令行工具；库代码应显式持有 Logger。
package xlog
