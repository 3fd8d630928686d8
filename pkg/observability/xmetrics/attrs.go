package xmetrics

import (
	"fmt"
	"math"

	"go.opentelemetry.io/otel/attribute"
)

// 跨度属性与指标维度的键名，与 xlog 的字段名一致。
const (
	keyBoundary  = "boundary"
	keyComponent = "component"
	keyOperation = "operation"
	keyStatus    = "status"
	keyAttempt   = "attempt"
	keyLoaderGen = "loader_gen"
	keyMountGen  = "mount_gen"
	keyPhase     = "phase"
	keyPanic     = "panic"
	keyDelay     = "delay_ms"
)

// String 创建字符串属性。
func String(key, value string) Attr {
	return Attr{Key: key, Value: value}
}

// Int 创建整数属性。
func Int(key string, value int) Attr {
	return Attr{Key: key, Value: value}
}

// Uint64 创建 uint64 属性，用于代际。
func Uint64(key string, value uint64) Attr {
	return Attr{Key: key, Value: value}
}

func attrsToOTel(attrs []Attr) []attribute.KeyValue {
	if len(attrs) == 0 {
		return nil
	}
	converted := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if attr.Key == "" || attr.Value == nil {
			continue
		}
		converted = append(converted, toKeyValue(attr))
	}
	return converted
}

func toKeyValue(attr Attr) attribute.KeyValue {
	switch v := attr.Value.(type) {
	case string:
		return attribute.String(attr.Key, v)
	case int:
		return attribute.Int(attr.Key, v)
	case uint64:
		return generation(attr.Key, v)
	default:
		return attribute.String(attr.Key, fmt.Sprint(v))
	}
}

// generation 代际超出 int64 时退化为字符串。
func generation(key string, v uint64) attribute.KeyValue {
	if v <= math.MaxInt64 {
		return attribute.Int64(key, int64(v))
	}
	return attribute.String(key, fmt.Sprint(v))
}
