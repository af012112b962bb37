package tracer

import (
	"context"
)

// Tracer creates spans and propagates trace context through message
// headers. *TracerClient implements it.
type Tracer interface {
	// StartSpan starts a span named name under the span in ctx, if any.
	// The caller must End the returned span.
	StartSpan(ctx context.Context, name string) (context.Context, Span)

	// GetCarrier returns the trace context of ctx as header key/values for
	// an outgoing record.
	GetCarrier(ctx context.Context) map[string]string

	// SetCarrierOnContext returns ctx continuing the trace found in carrier.
	SetCarrierOnContext(ctx context.Context, carrier map[string]string) context.Context
}

// Span is one traced operation.
type Span interface {
	// End finishes the span. Nothing may be recorded afterwards.
	End()

	// SetAttributes adds attributes to the span.
	//
	//	span.SetAttributes(map[string]interface{}{
	//	    "messaging.batch.size": len(msgs),
	//	    "kafka.transactional_id": id,
	//	})
	SetAttributes(attrs map[string]interface{})

	// RecordError records err and marks the span failed. A nil err is
	// ignored.
	RecordError(err error)
}
