package xlazy

import (
	"github.com/omeyang/xlazy/pkg/config/xconf"
	"github.com/omeyang/xlazy/pkg/observability/xlog"
	"github.com/omeyang/xlazy/pkg/resilience/xretry"
)

// FromConfig 把文件配置映射为 Boundary 选项。cfg 为 nil 时返回 nil。
func FromConfig(cfg *xconf.Boundary) []Option {
	if cfg == nil {
		return nil
	}
	return []Option{
		WithName(cfg.Name),
		WithRetries(cfg.Retries),
		WithRetryDelay(cfg.RetryDelay),
		WithVerbose(cfg.Verbose),
	}
}

// PolicyFromConfig 返回配置对应的重试策略，用于配置热更新后的 Reconfigure。
func PolicyFromConfig(cfg *xconf.Boundary) xretry.Policy {
	if cfg == nil {
		return xretry.DefaultPolicy()
	}
	return xretry.NewPolicy(cfg.Retries, cfg.RetryDelay)
}

// LoggerFromConfig 按日志配置构建 Logger，返回的清理函数关闭轮转文件。
func LoggerFromConfig(cfg xconf.Log) (xlog.LoggerWithLevel, func() error, error) {
	b := xlog.New().
		SetLevelString(cfg.Level).
		SetFormat(cfg.Format)
	if cfg.File != "" {
		b.SetRotation(cfg.File)
	}
	return b.Build()
}
