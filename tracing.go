package adminapi

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/mostafamerzk/admin-client-sub001"

// NewTracingMiddleware emits one client span per logical call. The span is
// started in the request phase and ended in whichever of the response or
// error phases runs; retries happen inside the span. Pass nil to use the
// globally registered tracer provider.
func NewTracingMiddleware(tp trace.TracerProvider) *Middleware {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	tracer := tp.Tracer(tracerName)

	return &Middleware{
		Name: "tracing",
		OnRequest: func(ctx context.Context, req *Request) (context.Context, error) {
			ctx, _ = tracer.Start(ctx, req.Method+" "+req.Path,
				trace.WithSpanKind(trace.SpanKindClient),
				trace.WithAttributes(
					attribute.String("http.request.method", req.Method),
					attribute.String("url.path", req.Path),
				),
			)
			return ctx, nil
		},
		OnResponse: func(ctx context.Context, res *Result) error {
			span := trace.SpanFromContext(ctx)
			span.SetAttributes(attribute.Int("http.response.status_code", res.Status))
			span.End()
			return nil
		},
		OnError: func(ctx context.Context, err *APIError) {
			span := trace.SpanFromContext(ctx)
			if err.StatusCode > 0 {
				span.SetAttributes(attribute.Int("http.response.status_code", err.StatusCode))
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Message)
			span.End()
		},
	}
}
