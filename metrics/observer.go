package metrics

import (
	"github.com/nakji-network/connector-go/observability"
)

// Operation status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// OperationObserver records observability events as Prometheus metrics:
//
//	nakji_operations_total{component, operation, status}
//	nakji_operation_duration_seconds{component, operation}
//	nakji_operation_bytes_total{component, operation}
//	nakji_operation_last_success_timestamp_seconds{component, operation}
//
// Resource and SubResource are not used as labels; topics and keys would
// make the series count unbounded.
type OperationObserver struct {
	total       Counter
	duration    Histogram
	bytes       Counter
	lastSuccess Gauge
}

var _ observability.Observer = (*OperationObserver)(nil)

// NewObserver registers the operation metrics on collector.
//
//	obs := metrics.NewObserver(m)
//	producer.WithObserver(obs)
func NewObserver(collector MetricsCollector) *OperationObserver {
	labels := []string{"component", "operation"}
	return &OperationObserver{
		total: collector.CreateCounter("operations_total",
			"Completed operations by component, operation and status.",
			[]string{"component", "operation", "status"}),
		duration: collector.CreateHistogram("operation_duration_seconds",
			"Duration of completed operations.", labels, nil),
		bytes: collector.CreateCounter("operation_bytes_total",
			"Bytes or records handled by successful operations.", labels),
		lastSuccess: collector.CreateGauge("operation_last_success_timestamp_seconds",
			"Unix time of the last successful operation.", labels),
	}
}

// ObserveOperation implements observability.Observer.
func (o *OperationObserver) ObserveOperation(ctx observability.OperationContext) {
	status := StatusSuccess
	if ctx.Error != nil {
		status = StatusError
	}

	o.total.WithLabelValues(ctx.Component, ctx.Operation, status).Inc()
	o.duration.WithLabelValues(ctx.Component, ctx.Operation).Observe(ctx.Duration.Seconds())

	if ctx.Error != nil {
		return
	}
	if ctx.Size > 0 {
		o.bytes.WithLabelValues(ctx.Component, ctx.Operation).Add(float64(ctx.Size))
	}
	o.lastSuccess.WithLabelValues(ctx.Component, ctx.Operation).SetToCurrentTime()
}
