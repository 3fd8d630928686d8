package xsource

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound 表示资源不存在。
	ErrNotFound = errors.New("xsource: resource not found")

	// ErrNilClient 表示传入的客户端为 nil。
	ErrNilClient = errors.New("xsource: nil client")

	// ErrUnknownKind 表示配置中的数据源类型无法识别。
	ErrUnknownKind = errors.New("xsource: unknown source kind")

	// ErrUnsupportedValue 表示字段值类型无法转换为字节。
	ErrUnsupportedValue = errors.New("xsource: unsupported value type")

	// ErrBodyTooLarge 表示 HTTP 响应体超过读取上限。
	ErrBodyTooLarge = errors.New("xsource: response body too large")
)

// StatusError HTTP 源返回非 2xx 状态码。
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("xsource: GET %s: %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// Retryable 4xx 为永久错误，408 与 429 除外。
func (e *StatusError) Retryable() bool {
	switch {
	case e.Code == http.StatusRequestTimeout, e.Code == http.StatusTooManyRequests:
		return true
	case e.Code >= 400 && e.Code < 500:
		return false
	default:
		return true
	}
}

func notFound(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}
