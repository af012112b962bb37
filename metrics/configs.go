package metrics

// Default addresses for the metrics servers.
const (
	DefaultSystemMetricsAddress      = ":9090"
	DefaultApplicationMetricsAddress = ":9091"
	DefaultNamespace                 = "nakji"
)

// DefaultDurationBuckets suit broker round trips, from a local produce to a
// commit that waits on the transaction coordinator.
var DefaultDurationBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// Config configures the two Prometheus endpoints of a connector process.
//
// The system endpoint exposes Go runtime, process and build info metrics.
// The application endpoint exposes the connector's own metrics, such as
// the operation counters recorded by Observer.
type Config struct {
	// SystemMetricsAddress is the listen address of the system endpoint.
	// nil uses DefaultSystemMetricsAddress; a pointer to "" disables it.
	SystemMetricsAddress *string `yaml:"system_metrics_address"`

	// ApplicationMetricsAddress is the listen address of the application
	// endpoint. nil uses DefaultApplicationMetricsAddress; a pointer to ""
	// disables the server, while metrics are still collected in
	// ApplicationRegistry.
	ApplicationMetricsAddress *string `yaml:"application_metrics_address"`

	// ServiceName is added as a constant "service" label to every metric.
	ServiceName string `yaml:"service_name"`

	// Namespace prefixes application metric names.
	// Default: "nakji"
	Namespace string `yaml:"namespace"`

	// DurationBuckets are the histogram buckets of operation durations, in
	// seconds.
	// Default: DefaultDurationBuckets
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// Ptr returns a pointer to s. Ptr("") disables an endpoint.
//
//	cfg := metrics.Config{SystemMetricsAddress: metrics.Ptr("")}
func Ptr(s string) *string {
	return &s
}

func address(addr *string, fallback string) string {
	if addr == nil {
		return fallback
	}
	return *addr
}
