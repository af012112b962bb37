package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the system and application registries and the HTTP servers
// exposing them.
type Metrics struct {
	// SystemServer serves SystemRegistry on /metrics. Nil when disabled.
	SystemServer *http.Server

	// ApplicationServer serves ApplicationRegistry on /metrics. Nil when
	// disabled.
	ApplicationServer *http.Server

	// SystemRegistry holds Go runtime, process and build info collectors.
	// Nil when the system endpoint is disabled.
	SystemRegistry *prometheus.Registry

	// ApplicationRegistry holds every metric created through Create*.
	ApplicationRegistry *prometheus.Registry

	namespace       string
	durationBuckets []float64

	// registerer adds the constant service label.
	registerer prometheus.Registerer
}

// NewMetrics builds the registries and servers for cfg. The servers are not
// started; FXModule starts them, or call ListenAndServe yourself:
//
//	m := metrics.NewMetrics(metrics.Config{ServiceName: "nakji-ethereum"})
//	go m.ApplicationServer.ListenAndServe()
func NewMetrics(cfg Config) *Metrics {
	m := &Metrics{
		namespace:       cfg.Namespace,
		durationBuckets: cfg.DurationBuckets,
	}
	if m.namespace == "" {
		m.namespace = DefaultNamespace
	}
	if len(m.durationBuckets) == 0 {
		m.durationBuckets = DefaultDurationBuckets
	}
	serviceLabel := prometheus.Labels{"service": cfg.ServiceName}

	if addr := address(cfg.SystemMetricsAddress, DefaultSystemMetricsAddress); addr != "" {
		m.SystemRegistry = prometheus.NewRegistry()
		prometheus.WrapRegistererWith(serviceLabel, m.SystemRegistry).MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
		m.SystemServer = newServer(addr, m.SystemRegistry)
	}

	m.ApplicationRegistry = prometheus.NewRegistry()
	m.registerer = prometheus.WrapRegistererWith(serviceLabel, m.ApplicationRegistry)
	if addr := address(cfg.ApplicationMetricsAddress, DefaultApplicationMetricsAddress); addr != "" {
		m.ApplicationServer = newServer(addr, m.ApplicationRegistry)
	}

	return m
}

func newServer(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return &http.Server{Addr: addr, Handler: mux}
}

// CreateCounter implements MetricsCollector. It panics if name is already
// registered, like prometheus.MustRegister.
func (m *Metrics) CreateCounter(name, help string, labels []string) Counter {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      name,
		Help:      help,
	}, labels)
	m.registerer.MustRegister(vec)
	return &counterVec{vec: vec}
}

// CreateHistogram implements MetricsCollector.
func (m *Metrics) CreateHistogram(name, help string, labels []string, buckets []float64) Histogram {
	if len(buckets) == 0 {
		buckets = m.durationBuckets
	}
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)
	m.registerer.MustRegister(vec)
	return &histogramVec{vec: vec}
}

// CreateGauge implements MetricsCollector.
func (m *Metrics) CreateGauge(name, help string, labels []string) Gauge {
	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      name,
		Help:      help,
	}, labels)
	m.registerer.MustRegister(vec)
	return &gaugeVec{vec: vec}
}
