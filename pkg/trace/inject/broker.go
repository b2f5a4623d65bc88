package inject

import (
	"context"

	"github.com/go-arcade/ideaflow/pkg/trace"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const brokerComponent = "pkg/trace/inject/broker"

// StartPublish starts a producer span for topic and writes its context into
// headers, which must be non-nil.
func StartPublish(ctx context.Context, system, topic string, headers map[string]string) (context.Context, oteltrace.Span) {
	ctx, span := trace.StartSpan(ctx, brokerComponent, topic+" publish",
		oteltrace.WithSpanKind(oteltrace.SpanKindProducer),
		oteltrace.WithAttributes(
			attribute.String("messaging.system", system),
			attribute.String("messaging.destination.name", topic),
		),
	)
	otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(headers))
	return ctx, span
}

// StartConsume continues the trace found in headers with a consumer span.
func StartConsume(ctx context.Context, system, topic string, headers map[string]string) (context.Context, oteltrace.Span) {
	if headers != nil {
		ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(headers))
	}
	return trace.StartSpan(ctx, brokerComponent, topic+" process",
		oteltrace.WithSpanKind(oteltrace.SpanKindConsumer),
		oteltrace.WithAttributes(
			attribute.String("messaging.system", system),
			attribute.String("messaging.destination.name", topic),
		),
	)
}
