package observability

import (
	"context"
	"io"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Tracer implements every hook interface on top of an OpenTelemetry
// tracer. Each session stage and each HTTP request becomes a span. Surface,
// style and cache events become span events on the span active in ctx, or
// zero-length spans of their own when ctx carries none.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) *Tracer {
	return &Tracer{tracer: t}
}

var (
	_ SessionHooks  = (*Tracer)(nil)
	_ PipelineHooks = (*Tracer)(nil)
	_ CacheHooks    = (*Tracer)(nil)
	_ HTTPHooks     = (*Tracer)(nil)
)

// NewStdoutProvider returns a tracer provider that writes finished spans
// to w as JSON. The caller must Shutdown the provider to flush spans.
func NewStdoutProvider(w io.Writer) (*sdktrace.TracerProvider, error) {
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exp),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	), nil
}

func (t *Tracer) OnStage(ctx context.Context, sessionID, stage string) func(error) {
	_, span := t.tracer.Start(ctx, "session."+stage,
		trace.WithAttributes(attribute.String("session.id", sessionID)))
	return func(err error) {
		finish(span, err)
	}
}

func (t *Tracer) OnSurfaceAcquired(ctx context.Context, sessionID string) {
	t.event(ctx, "surface.acquired", attribute.String("session.id", sessionID))
}

func (t *Tracer) OnSurfaceReleased(ctx context.Context, sessionID string) {
	t.event(ctx, "surface.released", attribute.String("session.id", sessionID))
}

func (t *Tracer) OnStyleWarning(ctx context.Context, sessionID, directive, reason string) {
	t.event(ctx, "style.warning",
		attribute.String("session.id", sessionID),
		attribute.String("directive", directive),
		attribute.String("reason", reason))
}

func (t *Tracer) OnRenderStart(ctx context.Context, chart string, formats []string) {
	t.event(ctx, "render.start", attribute.String("chart", chart), attribute.StringSlice("formats", formats))
}

func (t *Tracer) OnRenderComplete(ctx context.Context, chart string, formats []string, d time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("chart", chart),
		attribute.StringSlice("formats", formats),
		attribute.Int64("duration_ms", d.Milliseconds()),
	}
	if err != nil {
		attrs = append(attrs, attribute.String("error", err.Error()))
	}
	t.event(ctx, "render.complete", attrs...)
}

func (t *Tracer) OnCacheHit(ctx context.Context, keyType string) {
	t.event(ctx, "cache.hit", attribute.String("key_type", keyType))
}

func (t *Tracer) OnCacheMiss(ctx context.Context, keyType string) {
	t.event(ctx, "cache.miss", attribute.String("key_type", keyType))
}

func (t *Tracer) OnCacheSet(ctx context.Context, keyType string, size int) {
	t.event(ctx, "cache.set", attribute.String("key_type", keyType), attribute.Int("size", size))
}

func (t *Tracer) OnRequest(ctx context.Context, method, path string) {
	t.event(ctx, "http.request", attribute.String("http.method", method), attribute.String("http.path", path))
}

// OnResponse records the request as a span ending now and starting
// duration earlier.
func (t *Tracer) OnResponse(ctx context.Context, method, path string, status int, duration time.Duration) {
	end := time.Now()
	_, span := t.tracer.Start(ctx, method+" "+path,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithTimestamp(end.Add(-duration)),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.path", path),
			attribute.Int("http.status_code", status),
		))
	if status >= 500 {
		span.SetStatus(codes.Error, "server error")
	}
	span.End(trace.WithTimestamp(end))
}

func (t *Tracer) event(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.AddEvent(name, trace.WithAttributes(attrs...))
		return
	}
	_, span := t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	span.End()
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
