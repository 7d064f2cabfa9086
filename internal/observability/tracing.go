package observability

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/rl1809/stock-ledger/internal/core/domain"
)

const tracerName = "github.com/rl1809/stock-ledger"

func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// InitTracerProvider installs a global SDK tracer provider and the W3C
// propagators. Spans are sampled but not exported; their ids feed the logs.
func InitTracerProvider(service, env string, opts ...sdktrace.TracerProviderOption) *sdktrace.TracerProvider {
	res := resource.NewSchemaless(
		attribute.String("service.name", service),
		attribute.String("deployment.environment", env),
	)
	opts = append([]sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	}, opts...)

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp
}

// EndSpan records err on span and ends it. Domain errors are tagged with
// their code; only unclassified failures mark the span as failed.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		kind, _, known := domain.Classify(err)
		span.SetAttributes(attribute.String("error.code", kind.Code()))
		if !known {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}
	span.End()
}
