package inject

import (
	"context"

	"github.com/go-arcade/ideaflow/pkg/trace"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const httpComponent = "pkg/trace/inject/http"

type restySpanKey struct{}

// InstrumentResty wraps each request of client in a client span named
// after peer and injects the trace context into the request headers.
func InstrumentResty(client *resty.Client, peer string) *resty.Client {
	return client.
		OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			ctx, span := trace.StartSpan(req.Context(), httpComponent, "HTTP "+req.Method+" "+peer,
				oteltrace.WithSpanKind(oteltrace.SpanKindClient),
				oteltrace.WithAttributes(
					attribute.String("http.method", req.Method),
					attribute.String("http.url", req.URL),
					attribute.String("peer.service", peer),
				),
			)
			otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
			req.SetContext(context.WithValue(ctx, restySpanKey{}, span))
			return nil
		}).
		OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
			span, ok := resp.Request.Context().Value(restySpanKey{}).(oteltrace.Span)
			if !ok {
				return nil
			}
			span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode()))
			if resp.StatusCode() >= 500 {
				span.SetStatus(codes.Error, resp.Status())
			}
			span.End()
			return nil
		}).
		OnError(func(req *resty.Request, err error) {
			if span, ok := req.Context().Value(restySpanKey{}).(oteltrace.Span); ok {
				trace.End(span, err)
			}
		})
}
