// Package metrics exposes connector metrics to Prometheus.
//
// Two endpoints are served. The system endpoint (default :9090) carries Go
// runtime, process and build info collectors. The application endpoint
// (default :9091) carries the connector's own metrics. Every series has a
// constant "service" label set from Config.ServiceName.
//
// Application metrics are created through MetricsCollector and prefixed
// with Config.Namespace:
//
//	m := metrics.NewMetrics(metrics.Config{ServiceName: "nakji-ethereum"})
//	blocks := m.CreateCounter("blocks_seen_total", "Blocks read from the chain.", []string{"chain"})
//	blocks.WithLabelValues("ethereum").Inc()
//
// # Operation metrics
//
// NewObserver turns the observability events emitted by the kafka and
// schema_registry packages into operation counters, duration histograms
// and last-success gauges labeled by component and operation. Inside an
// FX application FXModule provides it as the observability.Observer, so
// the producer and registry client pick it up without extra wiring.
package metrics
