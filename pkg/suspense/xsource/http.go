package xsource

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/omeyang/xlazy/pkg/resilience/xretry"
	"github.com/omeyang/xlazy/pkg/suspense/xloader"
)

// DefaultMaxBodyBytes HTTP 源读取响应体的上限。
const DefaultMaxBodyBytes = 16 << 20

// HTTPOption HTTP 源选项
type HTTPOption func(*httpOptions)

type httpOptions struct {
	maxBody int64
}

// WithMaxBodyBytes 设置响应体上限，≤ 0 时忽略。
func WithMaxBodyBytes(n int64) HTTPOption {
	return func(o *httpOptions) {
		if n > 0 {
			o.maxBody = n
		}
	}
}

// HTTP 对 url 发起一次 GET。client 为 nil 时使用 http.DefaultClient。
//
// 设计决策: 不做 HTTP 层重试，重试完全由边界的策略决定；
// 客户端错误（4xx）返回实现 Retryable() == false 的 *StatusError，边界据此立即放弃。
// 响应体超过上限时返回包装 ErrBodyTooLarge 的永久错误，不截断。
func HTTP(client *http.Client, url string, opts ...HTTPOption) xloader.Loader[[]byte] {
	if client == nil {
		client = http.DefaultClient
	}
	o := &httpOptions{maxBody: DefaultMaxBodyBytes}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("xsource: build request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			// 排空响应体以复用连接
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
			return nil, &StatusError{URL: url, Code: resp.StatusCode}
		}
		// 多读一个字节以区分恰好等于上限与超出上限
		data, err := io.ReadAll(io.LimitReader(resp.Body, o.maxBody+1))
		if err != nil {
			return nil, err
		}
		if int64(len(data)) > o.maxBody {
			return nil, xretry.NewPermanentError(
				fmt.Errorf("%w: GET %s exceeds %d bytes", ErrBodyTooLarge, url, o.maxBody))
		}
		return data, nil
	}
}
