package metrics

// MetricsCollector creates metrics on the application registry.
// *Metrics implements it.
type MetricsCollector interface {
	// CreateCounter registers a counter.
	//
	//   c := m.CreateCounter("records_published_total", "Records published", []string{"topic"})
	//   c.WithLabelValues("prod.fct.nakji.ethereum.0_1_0.evm_Block").Inc()
	CreateCounter(name, help string, labels []string) Counter

	// CreateHistogram registers a histogram. Nil buckets use the
	// configured duration buckets.
	CreateHistogram(name, help string, labels []string, buckets []float64) Histogram

	// CreateGauge registers a gauge.
	CreateGauge(name, help string, labels []string) Gauge
}
