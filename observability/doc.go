// Package observability defines the hook every connector package uses to
// report the operations it performs.
//
// Packages such as kafka and schema_registry accept an optional Observer and
// call it once per completed operation with an OperationContext. The
// embedding program decides what to do with those events: the metrics
// package turns them into Prometheus series, tests record them, and a nil
// observer simply disables reporting.
//
// # Wiring
//
//	obs := metrics.NewObserver(m)
//	producer, _ := kafka.NewTransactionalProducer(cfg)
//	producer.WithObserver(obs)
//
// Several observers can be combined with Multi:
//
//	producer.WithObserver(observability.Multi(metricsObs, auditObs))
//
// # OperationContext fields
//
//   - Component: reporting package ("kafka", "schema_registry")
//   - Operation: what was done ("init", "commit", "produce", "register")
//   - Resource: primary resource (wire topic, registry host)
//   - SubResource: secondary resource (message key, record count)
//   - Duration: wall time of the operation
//   - Error: nil on success
//   - Size: bytes or items involved
//   - Metadata: anything else worth keeping (attempt number, status code)
package observability
