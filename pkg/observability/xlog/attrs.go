package xlog

import (
	"log/slog"
	"time"
)

// 日志字段的标准 key，保持各组件输出一致。
const (
	KeyError      = "error"
	KeyDuration   = "duration"
	KeyComponent  = "component"
	KeyOperation  = "operation"
	KeyAttempt    = "attempt"
	KeyDelay      = "delay"
	KeyLoaderGen  = "loader_gen"
	KeyMountGen   = "mount_gen"
	KeyBoundary   = "boundary"
	KeyPhase      = "phase"
	KeyStatusCode = "status_code"
)

// Err 创建错误属性
//
// 如果 err 为 nil，返回空属性（会被 slog 忽略）。
//
//	if err != nil {
//	    logger.Error(ctx, "load failed", xlog.Err(err))
//	}
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Duration 创建耗时属性
func Duration(d time.Duration) slog.Attr {
	return slog.String(KeyDuration, d.String())
}

// Component 创建组件名属性
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}

// Operation 创建操作名属性
func Operation(name string) slog.Attr {
	return slog.String(KeyOperation, name)
}

// Attempt 记录已失败的尝试次数
func Attempt(n int) slog.Attr {
	return slog.Int(KeyAttempt, n)
}

// Delay 记录下一次尝试前的等待时间，单位毫秒
func Delay(d time.Duration) slog.Attr {
	return slog.Int64(KeyDelay, d.Milliseconds())
}

// Generation 将加载器代际与挂载代际组合为一个分组属性
func Generation(loader, mount uint64) slog.Attr {
	return slog.Group("gen",
		slog.Uint64(KeyLoaderGen, loader),
		slog.Uint64(KeyMountGen, mount),
	)
}

// Boundary 创建边界名称属性
func Boundary(name string) slog.Attr {
	return slog.String(KeyBoundary, name)
}

// Phase 创建失败阶段属性（load / consume）
func Phase(p string) slog.Attr {
	return slog.String(KeyPhase, p)
}

// StatusCode 创建 HTTP 状态码属性
func StatusCode(code int) slog.Attr {
	return slog.Int(KeyStatusCode, code)
}
