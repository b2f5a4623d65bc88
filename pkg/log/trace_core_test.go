package log

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func spanContext(t *testing.T) context.Context {
	t.Helper()
	tid, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	if err != nil {
		t.Fatal(err)
	}
	sid, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	if err != nil {
		t.Fatal(err)
	}
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    tid,
		SpanID:     sid,
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func TestTraceCore_StampsIDs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	zl := zap.New(wrapCoreWithTrace(core)).Sugar()

	zl.Infow("vote pushed", Trace(spanContext(t)), "ideaId", 7)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["trace_id"] != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("unexpected trace_id %v", fields["trace_id"])
	}
	if fields["span_id"] != "00f067aa0ba902b7" {
		t.Errorf("unexpected span_id %v", fields["span_id"])
	}
	if fields["ideaId"] != int64(7) {
		t.Errorf("unexpected ideaId %v", fields["ideaId"])
	}
	if _, ok := fields[traceFieldKey]; ok {
		t.Errorf("marker field leaked into the entry")
	}
}

func TestTraceCore_WithCarriesIDs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	zl := zap.New(wrapCoreWithTrace(core)).With(Trace(spanContext(t)))

	zl.Info("first")
	zl.Info("second")

	for _, e := range logs.All() {
		if e.ContextMap()["trace_id"] != "4bf92f3577b34da6a3ce929d0e0e4736" {
			t.Errorf("%s: missing trace_id", e.Message)
		}
	}
}

func TestTraceCore_NoSpanLeavesEntryAlone(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	zl := zap.New(wrapCoreWithTrace(core)).Sugar()

	zl.Infow("no span", Trace(context.Background()), "k", "v")
	zl.Infow("no marker", "k", "v")

	for _, e := range logs.All() {
		fields := e.ContextMap()
		if _, ok := fields["trace_id"]; ok {
			t.Errorf("%s: unexpected trace_id", e.Message)
		}
		if fields["k"] != "v" {
			t.Errorf("%s: lost field k", e.Message)
		}
	}
}
