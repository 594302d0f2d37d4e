package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	s := NoopSessionHooks{}
	end := s.OnStage(ctx, "id", "validate")
	end(nil)
	s.OnSurfaceAcquired(ctx, "id")
	s.OnSurfaceReleased(ctx, "id")
	s.OnStyleWarning(ctx, "id", "grid", "requires whitegrid")

	p := NoopPipelineHooks{}
	p.OnRenderStart(ctx, "box", []string{"svg"})
	p.OnRenderComplete(ctx, "box", []string{"svg"}, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "artifact")
	c.OnCacheMiss(ctx, "artifact")
	c.OnCacheSet(ctx, "artifact", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/v1/render")
	h.OnResponse(ctx, "POST", "/v1/render", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Session().(NoopSessionHooks); !ok {
		t.Error("Session() should return NoopSessionHooks by default")
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customSession := &testSessionHooks{}
	SetSessionHooks(customSession)
	if Session() != customSession {
		t.Error("SetSessionHooks should set custom hooks")
	}
	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}
	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}
	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Session().(NoopSessionHooks); !ok {
		t.Error("Reset() should restore NoopSessionHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	custom := &testSessionHooks{}
	SetSessionHooks(custom)
	SetSessionHooks(nil)
	if Session() != custom {
		t.Error("SetSessionHooks(nil) should be ignored")
	}
}

func TestTracerStages(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	tr := NewTracer(tp.Tracer("test"))
	ctx := context.Background()

	tr.OnStage(ctx, "abc", "validate")(nil)
	tr.OnStage(ctx, "abc", "render")(errors.New("boom"))

	spans := rec.Ended()
	if len(spans) != 2 {
		t.Fatalf("ended spans = %d, want 2", len(spans))
	}
	if spans[0].Name() != "session.validate" || spans[0].Status().Code != codes.Ok {
		t.Errorf("span 0 = %s %v", spans[0].Name(), spans[0].Status())
	}
	if spans[1].Name() != "session.render" || spans[1].Status().Code != codes.Error {
		t.Errorf("span 1 = %s %v", spans[1].Name(), spans[1].Status())
	}
	found := false
	for _, kv := range spans[0].Attributes() {
		found = found || (kv.Key == "session.id" && kv.Value.AsString() == "abc")
	}
	if !found {
		t.Errorf("session.id attribute missing: %v", spans[0].Attributes())
	}
}

func TestTracerEventsAttachToActiveSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	tr := NewTracer(tp.Tracer("test"))

	ctx, span := tp.Tracer("test").Start(context.Background(), "request")
	tr.OnSurfaceAcquired(ctx, "abc")
	tr.OnStyleWarning(ctx, "abc", "grid", "requires whitegrid")
	tr.OnCacheMiss(ctx, "artifact")
	tr.OnSurfaceReleased(ctx, "abc")
	span.End()

	var names []string
	for _, ev := range rec.Ended()[0].Events() {
		names = append(names, ev.Name)
	}
	want := "surface.acquired,style.warning,cache.miss,surface.released"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("events = %s, want %s", got, want)
	}
}

func TestTracerEventsWithoutSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	tr := NewTracer(tp.Tracer("test"))

	tr.OnCacheHit(context.Background(), "artifact")
	spans := rec.Ended()
	if len(spans) != 1 || spans[0].Name() != "cache.hit" {
		t.Fatalf("spans = %v, want one cache.hit span", spans)
	}
}

func TestTracerHTTPResponse(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	tr := NewTracer(tp.Tracer("test"))

	tr.OnResponse(context.Background(), "POST", "/v1/render", 500, 250*time.Millisecond)
	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}
	sp := spans[0]
	if sp.Name() != "POST /v1/render" || sp.Status().Code != codes.Error {
		t.Errorf("span = %s %v", sp.Name(), sp.Status())
	}
	if d := sp.EndTime().Sub(sp.StartTime()); d != 250*time.Millisecond {
		t.Errorf("span duration = %v, want 250ms", d)
	}
}

func TestStdoutProvider(t *testing.T) {
	var buf bytes.Buffer
	tp, err := NewStdoutProvider(&buf)
	if err != nil {
		t.Fatal(err)
	}
	NewTracer(tp.Tracer("test")).OnStage(context.Background(), "abc", "save")(nil)
	if err := tp.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "session.save") {
		t.Errorf("stdout exporter output missing span: %s", buf.String())
	}
}

type testSessionHooks struct{ NoopSessionHooks }
type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
