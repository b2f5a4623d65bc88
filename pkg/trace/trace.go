package trace

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const instrumentationPrefix = "github.com/go-arcade/ideaflow/"

// Tracer returns a tracer named after the instrumented package, e.g.
// Tracer("pkg/http").
func Tracer(component string) oteltrace.Tracer {
	return otel.Tracer(instrumentationPrefix + component)
}

// StartSpan starts an internal span on the component's tracer.
func StartSpan(ctx context.Context, component, name string, opts ...oteltrace.SpanStartOption) (context.Context, oteltrace.Span) {
	return Tracer(component).Start(ctx, name, opts...)
}

// End records err on span, sets its status and ends it.
func End(span oteltrace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// IDs returns the hex trace and span id of the span in ctx, or empty
// strings when ctx carries none.
func IDs(ctx context.Context) (traceID, spanID string) {
	sc := oteltrace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return "", ""
	}
	return sc.TraceID().String(), sc.SpanID().String()
}
