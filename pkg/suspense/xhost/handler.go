package xhost

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/omeyang/xlazy/pkg/observability/xlog"
	"github.com/omeyang/xlazy/pkg/observability/xmetrics"
	"github.com/omeyang/xlazy/pkg/suspense/xlazy"
)

// HeaderRequestID 请求 ID 头，缺失时由 Handler 生成。
const HeaderRequestID = "X-Request-Id"

// Renderer 宿主需要的边界能力，*xlazy.Boundary[T] 满足。
type Renderer interface {
	Render(ctx context.Context, w io.Writer) (xlazy.Status, error)
	Reset()
	Name() string
}

// Handler 以 HTTP 暴露一个边界。
type Handler struct {
	b        Renderer
	path     string
	logger   xlog.Logger
	observer xmetrics.Observer
}

// Option 配置 Handler。
type Option func(*Handler)

// WithPath 设置边界挂载路径，默认 "/"。
func WithPath(p string) Option {
	return func(h *Handler) {
		if p != "" {
			h.path = "/" + strings.Trim(p, "/")
		}
	}
}

// WithLogger 设置访问日志。
func WithLogger(l xlog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithObserver 设置观测器，每个请求一个 render 或 reset 跨度。
func WithObserver(obs xmetrics.Observer) Option {
	return func(h *Handler) {
		if obs != nil {
			h.observer = obs
		}
	}
}

// ResetPath 返回挂载在 p 上的边界的重置地址。
func ResetPath(p string) string {
	base := strings.TrimRight("/"+strings.Trim(p, "/"), "/")
	return base + "/reset"
}

// New 创建 Handler。
func New(b Renderer, opts ...Option) *Handler {
	h := &Handler{
		b:        b,
		path:     "/",
		logger:   xlog.Discard(),
		observer: xmetrics.NoopObserver{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	h.logger = h.logger.With(xlog.Boundary(b.Name()), xlog.Component("xhost"))
	return h
}

// ServeHTTP 实现 http.Handler。
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID := r.Header.Get(HeaderRequestID)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	w.Header().Set(HeaderRequestID, reqID)

	switch strings.TrimRight(r.URL.Path, "/") {
	case strings.TrimRight(h.path, "/"):
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		h.render(w, r, reqID)
	case ResetPath(h.path):
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		h.reset(w, r, reqID)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, reqID string) {
	start := time.Now()
	ctx, span := xmetrics.Start(r.Context(), h.observer, xmetrics.SpanOptions{
		Component: "xhost",
		Operation: "render",
		Kind:      xmetrics.KindServer,
		Boundary:  h.b.Name(),
		Attrs:     []xmetrics.Attr{xmetrics.String("request_id", reqID)},
	})

	var buf bytes.Buffer
	status, err := h.b.Render(ctx, &buf)
	code := statusCode(status)
	if err != nil {
		code = http.StatusInternalServerError
		if errors.Is(err, xlazy.ErrClosed) {
			code = http.StatusServiceUnavailable
		}
		span.End(xmetrics.Result{Err: err, Attrs: []xmetrics.Attr{xmetrics.Int("status_code", code)}})
		h.logger.Error(ctx, "xlazy: render failed",
			slog.String("request_id", reqID),
			xlog.StatusCode(code),
			xlog.Err(err),
		)
		http.Error(w, http.StatusText(code), code)
		return
	}
	span.End(xmetrics.Result{Attrs: []xmetrics.Attr{
		xmetrics.String("view", status.String()),
		xmetrics.Int("status_code", code),
	}})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	if r.Method != http.MethodHead {
		_, _ = buf.WriteTo(w)
	}
	h.logger.Debug(ctx, "xlazy: rendered",
		slog.String("request_id", reqID),
		slog.String("view", status.String()),
		xlog.StatusCode(code),
		xlog.Duration(time.Since(start)),
	)
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request, reqID string) {
	ctx, span := xmetrics.Start(r.Context(), h.observer, xmetrics.SpanOptions{
		Component: "xhost",
		Operation: "reset",
		Kind:      xmetrics.KindServer,
		Boundary:  h.b.Name(),
		Attrs:     []xmetrics.Attr{xmetrics.String("request_id", reqID)},
	})
	h.b.Reset()
	span.End(xmetrics.Result{})
	h.logger.Info(ctx, "xlazy: reset requested", slog.String("request_id", reqID))
	http.Redirect(w, r, h.path, http.StatusSeeOther)
}

func statusCode(s xlazy.Status) int {
	switch s {
	case xlazy.StatusReady:
		return http.StatusOK
	case xlazy.StatusLoading:
		return http.StatusAccepted
	default:
		return http.StatusInternalServerError
	}
}
