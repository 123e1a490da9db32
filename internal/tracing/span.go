package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Attribute keys shared by host and request spans.
const (
	AttrHost     = attribute.Key("hostbench.host")
	AttrAttempt  = attribute.Key("hostbench.attempt")
	AttrCount    = attribute.Key("hostbench.count")
	AttrSuccess  = attribute.Key("hostbench.success")
	AttrFailed   = attribute.Key("hostbench.failed")
	AttrErrors   = attribute.Key("hostbench.errors")
	AttrStatus   = attribute.Key("http.response.status_code")
	AttrMethod   = attribute.Key("http.request.method")
	AttrURL      = attribute.Key("url.full")
	AttrBatchID  = attribute.Key("hostbench.batch_id")
	AttrHostMode = attribute.Key("hostbench.mode")
)

func start(ctx context.Context, tracer trace.Tracer, name string, kind trace.SpanKind, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(instrumentationName)
	}
	return tracer.Start(ctx, name, trace.WithSpanKind(kind), trace.WithAttributes(attrs...))
}

// StartBatchSpan opens the root span of a run; host spans nest under it.
func StartBatchSpan(ctx context.Context, tracer trace.Tracer, batchID, mode string, hosts int) (context.Context, trace.Span) {
	return start(ctx, tracer, "batch", trace.SpanKindInternal,
		AttrBatchID.String(batchID), AttrHostMode.String(mode), AttrCount.Int(hosts))
}

func StartHostSpan(ctx context.Context, tracer trace.Tracer, host string, count int) (context.Context, trace.Span) {
	return start(ctx, tracer, "host "+host, trace.SpanKindInternal, AttrHost.String(host), AttrCount.Int(count))
}

// StartRequestSpan opens the client span of one GET. A nil tracer yields a
// non-recording span.
func StartRequestSpan(ctx context.Context, tracer trace.Tracer, url string) (context.Context, trace.Span) {
	return start(ctx, tracer, http.MethodGet, trace.SpanKindClient, AttrMethod.String(http.MethodGet), AttrURL.String(url))
}

// EndSpan attaches attrs, sets the span status from err and ends it.
func EndSpan(span trace.Span, err error, attrs ...attribute.KeyValue) {
	span.SetAttributes(attrs...)
	defer span.End()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}

// InjectHTTPHeaders writes the traceparent (and baggage) of ctx into headers.
func InjectHTTPHeaders(ctx context.Context, headers http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(headers))
}
