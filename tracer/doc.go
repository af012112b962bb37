// Package tracer wraps OpenTelemetry tracing for connector processes.
//
// A connector usually traces one span per published batch. The producer
// copies the trace context of that span into the headers of every record
// it writes, so downstream consumers can continue the trace:
//
//	tr, err := tracer.NewClient(tracer.Config{ServiceName: "nakji-ethereum", Env: "dev"})
//	if err != nil {
//	    return err
//	}
//	defer tr.Shutdown(ctx)
//
//	ctx, span := tr.StartSpan(ctx, "kafka.publish")
//	defer span.End()
//	headers := tr.GetCarrier(ctx) // {"traceparent": "00-..."}
//
// On the consuming side SetCarrierOnContext restores the context from the
// same headers.
//
// # Export
//
// With EnableExport set, spans are batched to an OTLP/HTTP collector at
// Endpoint. Otherwise they stay in-process, which still gives valid trace
// ids for header propagation and log correlation.
//
// # FX
//
//	app := fx.New(
//	    fx.Supply(tracer.Config{ServiceName: "nakji-ethereum"}),
//	    tracer.FXModule,
//	)
//
// The module provides *TracerClient and the Tracer interface and shuts the
// provider down on stop.
package tracer
