package pipeline

import (
	"context"

	"dagger.io/dagger/telemetry"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const InstrumentationLibrary = "github.com/jt-f/dagger-experiments/internal/pipeline"

func Tracer(ctx context.Context) trace.Tracer {
	return telemetry.Tracer(ctx, InstrumentationLibrary)
}

// endSpan records the outcome of *errp on span and ends it. The error itself
// is left untouched.
func endSpan(span trace.Span, errp *error) {
	if err := *errp; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
