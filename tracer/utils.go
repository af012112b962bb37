package tracer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// spanImpl adapts an OpenTelemetry span to Span.
type spanImpl struct {
	span oteltrace.Span
}

func (s *spanImpl) End() {
	s.span.End()
}

// SetAttributes converts string, int, int64, float64 and bool values to
// typed attributes; anything else is recorded with fmt.Sprint.
func (s *spanImpl) SetAttributes(attrs map[string]interface{}) {
	if len(attrs) == 0 {
		return
	}

	kvs := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		switch val := v.(type) {
		case string:
			kvs = append(kvs, attribute.String(k, val))
		case int:
			kvs = append(kvs, attribute.Int(k, val))
		case int64:
			kvs = append(kvs, attribute.Int64(k, val))
		case float64:
			kvs = append(kvs, attribute.Float64(k, val))
		case bool:
			kvs = append(kvs, attribute.Bool(k, val))
		default:
			kvs = append(kvs, attribute.String(k, fmt.Sprint(val)))
		}
	}
	s.span.SetAttributes(kvs...)
}

// RecordError adds an error event and marks the span failed.
func (s *spanImpl) RecordError(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// StartSpan starts a span as a child of the span in ctx, if any.
//
//	ctx, span := tr.StartSpan(ctx, "kafka.publish")
//	defer span.End()
func (t *TracerClient) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	ctx, span := t.provider.Tracer(instrumentationName).Start(ctx, name)
	return ctx, &spanImpl{span: span}
}

// GetCarrier returns the trace context of ctx as header values
// ("traceparent", and "tracestate"/"baggage" when present). The map is
// empty when ctx carries no valid span.
func (t *TracerClient) GetCarrier(ctx context.Context) map[string]string {
	carrier := propagation.MapCarrier{}
	propagator.Inject(ctx, carrier)
	return carrier
}

// SetCarrierOnContext restores trace context read from record headers.
func (t *TracerClient) SetCarrierOnContext(ctx context.Context, carrier map[string]string) context.Context {
	return propagator.Extract(ctx, propagation.MapCarrier(carrier))
}
