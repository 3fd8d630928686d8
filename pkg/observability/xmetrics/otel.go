package xmetrics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultInstrumentationName = "github.com/omeyang/xlazy/xmetrics"
	unknown                    = "unknown"

	metricOperationTotal    = "xlazy.operation.total"
	metricOperationDuration = "xlazy.operation.duration"
	metricRetryScheduled    = "xlazy.retry.scheduled"
	metricRetryDelay        = "xlazy.retry.delay"
	metricFailureCaptured   = "xlazy.failure.captured"
)

// 创建 OTel 仪表失败时返回的错误。
var (
	ErrCreateCounter   = errors.New("xmetrics: create counter failed")
	ErrCreateHistogram = errors.New("xmetrics: create histogram failed")
)

type otelConfig struct {
	instrumentationName string
	tracerProvider      trace.TracerProvider
	meterProvider       metric.MeterProvider
}

// Option 定义 OTel Observer 的配置选项。
type Option func(*otelConfig)

// WithInstrumentationName 设置 OTel instrumentation 名称。
func WithInstrumentationName(name string) Option {
	return func(cfg *otelConfig) {
		if name != "" {
			cfg.instrumentationName = name
		}
	}
}

// WithTracerProvider 设置 TracerProvider。
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(cfg *otelConfig) {
		if provider != nil {
			cfg.tracerProvider = provider
		}
	}
}

// WithMeterProvider 设置 MeterProvider。
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(cfg *otelConfig) {
		if provider != nil {
			cfg.meterProvider = provider
		}
	}
}

type otelObserver struct {
	tracer trace.Tracer

	opTotal    metric.Int64Counter
	opDuration metric.Float64Histogram
	retries    metric.Int64Counter
	retryDelay metric.Float64Histogram
	failures   metric.Int64Counter
}

// NewOTelObserver 创建基于 OpenTelemetry 的 Observer。
//
// 指标维度只取有界值（boundary / component / operation / status / attempt / phase），
// 代际只写入跨度属性。
func NewOTelObserver(opts ...Option) (Observer, error) {
	cfg := &otelConfig{
		instrumentationName: defaultInstrumentationName,
		tracerProvider:      otel.GetTracerProvider(),
		meterProvider:       otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	meter := cfg.meterProvider.Meter(cfg.instrumentationName)

	o := &otelObserver{tracer: cfg.tracerProvider.Tracer(cfg.instrumentationName)}
	var err error
	counter := func(name, desc string) metric.Int64Counter {
		if err != nil {
			return nil
		}
		c, cerr := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit("1"))
		if cerr != nil {
			err = fmt.Errorf("%w: %s: %w", ErrCreateCounter, name, cerr)
		}
		return c
	}
	histogram := func(name, desc string) metric.Float64Histogram {
		if err != nil {
			return nil
		}
		h, herr := meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
		if herr != nil {
			err = fmt.Errorf("%w: %s: %w", ErrCreateHistogram, name, herr)
		}
		return h
	}

	o.opTotal = counter(metricOperationTotal, "boundary operations (load attempts, resets, renders)")
	o.opDuration = histogram(metricOperationDuration, "boundary operation duration")
	o.retries = counter(metricRetryScheduled, "retry timers registered after a failed attempt")
	o.retryDelay = histogram(metricRetryDelay, "linear backoff delay before the next attempt")
	o.failures = counter(metricFailureCaptured, "failures made visible through the error view")
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Start 开始一次观测跨度，span 名称为 component.operation。
func (o *otelObserver) Start(ctx context.Context, opts SpanOptions) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Component == "" {
		opts.Component = unknown
	}
	if opts.Operation == "" {
		opts.Operation = unknown
	}

	dims := spanDims(opts)
	attrs := append(append([]attribute.KeyValue(nil), dims...), attrsToOTel(opts.Attrs)...)
	ctx, span := o.tracer.Start(ctx,
		opts.Component+"."+opts.Operation,
		trace.WithSpanKind(mapSpanKind(opts.Kind)),
		trace.WithAttributes(attrs...),
	)
	return ctx, &otelSpan{
		span:     span,
		observer: o,
		ctx:      ctx,
		dims:     dims,
		start:    time.Now(),
	}
}

// RetryScheduled 计数并记录退避延迟。
func (o *otelObserver) RetryScheduled(ctx context.Context, ev RetryEvent) {
	ctx = detach(ctx)
	o.retries.Add(ctx, 1, metric.WithAttributes(
		attribute.String(keyBoundary, orUnknown(ev.Boundary)),
		attribute.Int(keyAttempt, ev.Attempt),
	))
	o.retryDelay.Record(ctx, ev.Delay.Seconds(), metric.WithAttributes(
		attribute.String(keyBoundary, orUnknown(ev.Boundary)),
	))
	trace.SpanFromContext(ctx).AddEvent("retry_scheduled", trace.WithAttributes(
		generation(keyLoaderGen, ev.LoaderGen),
		attribute.Int(keyAttempt, ev.Attempt),
		attribute.Int64(keyDelay, ev.Delay.Milliseconds()),
	))
}

// FailureCaptured 按阶段计数可见失败。
func (o *otelObserver) FailureCaptured(ctx context.Context, ev FailureEvent) {
	ctx = detach(ctx)
	o.failures.Add(ctx, 1, metric.WithAttributes(
		attribute.String(keyBoundary, orUnknown(ev.Boundary)),
		attribute.String(keyPhase, orUnknown(ev.Phase)),
		attribute.Bool(keyPanic, ev.Panic),
	))
	trace.SpanFromContext(ctx).AddEvent("failure_captured", trace.WithAttributes(
		attribute.String(keyPhase, orUnknown(ev.Phase)),
		generation(keyLoaderGen, ev.LoaderGen),
		generation(keyMountGen, ev.MountGen),
		attribute.Int(keyAttempt, ev.Attempts),
	))
}

type otelSpan struct {
	span     trace.Span
	observer *otelObserver
	ctx      context.Context
	dims     []attribute.KeyValue
	start    time.Time
	endOnce  sync.Once
}

// End 结束观测并记录结果，幂等。
func (s *otelSpan) End(result Result) {
	if s == nil {
		return
	}
	s.endOnce.Do(func() {
		status := resolveStatus(result)
		switch status {
		case StatusError:
			msg := "operation failed"
			if result.Err != nil {
				s.span.RecordError(result.Err)
				msg = result.Err.Error()
			}
			s.span.SetStatus(codes.Error, msg)
		case StatusCancelled:
			// 拆除不是失败：保持 Unset，仅打标记
			s.span.SetAttributes(attribute.Bool("cancelled", true))
		default:
			s.span.SetStatus(codes.Ok, "")
		}
		if len(result.Attrs) > 0 {
			s.span.SetAttributes(attrsToOTel(result.Attrs)...)
		}
		s.span.End()

		// 拆除时加载 context 已取消，指标仍需落盘
		ctx := detach(s.ctx)
		dims := metric.WithAttributes(append(append([]attribute.KeyValue(nil), s.dims...),
			attribute.String(keyStatus, string(status)))...)
		s.observer.opTotal.Add(ctx, 1, dims)
		s.observer.opDuration.Record(ctx, time.Since(s.start).Seconds(), dims)
	})
}

// spanDims 返回同时用作跨度属性与指标维度的有界属性。
func spanDims(opts SpanOptions) []attribute.KeyValue {
	dims := make([]attribute.KeyValue, 0, 4)
	dims = append(dims,
		attribute.String(keyBoundary, orUnknown(opts.Boundary)),
		attribute.String(keyComponent, opts.Component),
		attribute.String(keyOperation, opts.Operation),
	)
	if opts.Attempt > 0 {
		dims = append(dims, attribute.Int(keyAttempt, opts.Attempt))
	}
	return dims
}

func resolveStatus(result Result) Status {
	if result.Status != "" {
		return result.Status
	}
	if result.Err != nil {
		return StatusError
	}
	return StatusOK
}

func mapSpanKind(kind Kind) trace.SpanKind {
	switch kind {
	case KindServer:
		return trace.SpanKindServer
	case KindClient:
		return trace.SpanKindClient
	default:
		return trace.SpanKindInternal
	}
}

func detach(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return context.WithoutCancel(ctx)
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}
