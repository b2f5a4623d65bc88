package inject_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/go-arcade/ideaflow/pkg/trace/inject"
	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	oteltrace "go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
	return recorder
}

func spanAttrs(span sdktrace.ReadOnlySpan) map[string]any {
	attrs := map[string]any{}
	for _, kv := range span.Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	return attrs
}

type tracedRow struct {
	ID    uint64 `gorm:"primaryKey"`
	Title string
}

func TestGormPlugin_SpansFollowCaller(t *testing.T) {
	recorder := installRecorder(t)

	db, err := gorm.Open(sqlite.Open("file:gorm_plugin?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&tracedRow{}))
	require.NoError(t, inject.RegisterGormPlugin(db, true))

	ctx, parent := otel.Tracer("test").Start(context.Background(), "handler")
	require.NoError(t, db.WithContext(ctx).Create(&tracedRow{ID: 1, Title: "solar roof"}).Error)
	var missing tracedRow
	err = db.WithContext(ctx).First(&missing, 99).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	parent.End()

	var gormSpans []sdktrace.ReadOnlySpan
	for _, s := range recorder.Ended() {
		if s.Name() == "gorm.create" || s.Name() == "gorm.query" {
			gormSpans = append(gormSpans, s)
		}
	}
	require.Len(t, gormSpans, 2)
	for _, s := range gormSpans {
		assert.Equal(t, parent.SpanContext().TraceID(), s.SpanContext().TraceID())
		assert.Equal(t, parent.SpanContext().SpanID(), s.Parent().SpanID())
		assert.Equal(t, oteltrace.SpanKindClient, s.SpanKind())
		assert.NotEqual(t, codes.Error, s.Status().Code, s.Name())
		attrs := spanAttrs(s)
		assert.Equal(t, "sqlite", attrs["db.system"])
		assert.Equal(t, "traced_rows", attrs["db.sql.table"])
		assert.NotEmpty(t, attrs["db.statement"])
	}
}

func TestInstrumentResty_InjectsTraceparent(t *testing.T) {
	recorder := installRecorder(t)

	received := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- r.Header.Get("traceparent")
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	client := inject.InstrumentResty(resty.New().SetBaseURL(srv.URL), "directory")
	ctx, parent := otel.Tracer("test").Start(context.Background(), "handler")
	resp, err := client.R().SetContext(ctx).Get("/users/1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode())
	parent.End()

	var clientSpan sdktrace.ReadOnlySpan
	for _, s := range recorder.Ended() {
		if s.SpanKind() == oteltrace.SpanKindClient {
			clientSpan = s
		}
	}
	require.NotNil(t, clientSpan)
	assert.Equal(t, "HTTP GET directory", clientSpan.Name())
	assert.Equal(t, codes.Error, clientSpan.Status().Code)
	assert.Equal(t, int64(http.StatusServiceUnavailable), spanAttrs(clientSpan)["http.status_code"])

	got := <-received
	require.NotEmpty(t, got)
	sc := otel.GetTextMapPropagator().Extract(context.Background(), propagation.HeaderCarrier{"Traceparent": []string{got}})
	remote := oteltrace.SpanContextFromContext(sc)
	assert.Equal(t, parent.SpanContext().TraceID(), remote.TraceID())
	assert.Equal(t, clientSpan.SpanContext().SpanID(), remote.SpanID())
}

func TestBroker_ConsumeContinuesPublishTrace(t *testing.T) {
	recorder := installRecorder(t)

	headers := map[string]string{}
	_, pub := inject.StartPublish(context.Background(), "kafka", "ideaflow.notifications", headers)
	pub.End()
	require.Contains(t, headers, "traceparent")

	ctx, consume := inject.StartConsume(context.Background(), "kafka", "ideaflow.notifications", headers)
	consume.End()

	assert.Equal(t, pub.SpanContext().TraceID(), oteltrace.SpanContextFromContext(ctx).TraceID())
	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, oteltrace.SpanKindProducer, spans[0].SpanKind())
	assert.Equal(t, oteltrace.SpanKindConsumer, spans[1].SpanKind())
	assert.Equal(t, spans[0].SpanContext().SpanID(), spans[1].Parent().SpanID())
}

func TestBroker_ConsumeWithoutHeadersStartsRoot(t *testing.T) {
	recorder := installRecorder(t)

	_, span := inject.StartConsume(context.Background(), "memory", "t", nil)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.False(t, spans[0].Parent().IsValid())
}
