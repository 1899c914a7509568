package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the default tracer name for the meetsched package.
const TracerName = "github.com/teemow/meetsched"

// Span attribute keys for operations.
const (
	// SpanAttrOperation is the engine operation attribute.
	SpanAttrOperation = "scheduler.operation"

	// SpanAttrDate is the requested date attribute.
	SpanAttrDate = "scheduler.date"

	// SpanAttrResult is the operation outcome attribute.
	SpanAttrResult = "scheduler.result"
)

// StartSpan starts a span using the global tracer provider. It is a thin
// wrapper so call sites don't depend on the otel API directly.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records the error state on the span and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
