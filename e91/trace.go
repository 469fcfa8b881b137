package e91

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span names for the phases of a run.
const (
	SpanRun     = "e91.run"
	SpanMeasure = "e91.measure"
	SpanSift    = "e91.sift"
	SpanCHSH    = "e91.chsh"
)

const instrumentationName = "github.com/alan-christopher/e91"

// startSpan starts a span on the global tracer provider. The returned function
// ends it, recording err when non-nil.
func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(err error)) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}
