package tracer

import "time"

// Config configures the OpenTelemetry tracer of a connector process.
type Config struct {
	// ServiceName identifies the process in traces, e.g. "nakji-ethereum".
	ServiceName string `yaml:"service_name"`

	// ServiceVersion is the connector version from its manifest.
	ServiceVersion string `yaml:"service_version"`

	// Env is the deployment environment ("dev", "staging", "prod"). It is
	// set as the deployment.environment resource attribute.
	Env string `yaml:"env"`

	// EnableExport turns on the OTLP/HTTP exporter. Without it spans are
	// still created, so trace context keeps propagating into record
	// headers, but nothing leaves the process.
	EnableExport bool `yaml:"enable_export"`

	// Endpoint is the collector host:port. Empty falls back to the
	// OTEL_EXPORTER_OTLP_* environment variables.
	Endpoint string `yaml:"endpoint"`

	// Insecure sends spans over plain HTTP.
	Insecure bool `yaml:"insecure"`

	// SampleRatio is the fraction of root traces sampled, in [0, 1].
	// Default: 1
	SampleRatio float64 `yaml:"sample_ratio"`

	// ExportTimeout bounds one export call.
	// Default: 10s
	ExportTimeout time.Duration `yaml:"export_timeout"`
}

// Default values for configuration
const (
	DefaultSampleRatio   = 1.0
	DefaultExportTimeout = 10 * time.Second
)

func (cfg Config) withDefaults() Config {
	if cfg.SampleRatio <= 0 || cfg.SampleRatio > 1 {
		cfg.SampleRatio = DefaultSampleRatio
	}
	if cfg.ExportTimeout == 0 {
		cfg.ExportTimeout = DefaultExportTimeout
	}
	return cfg
}
