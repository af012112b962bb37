package logger

// Log levels accepted by Config.Level.
const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

// Config controls the logger.
type Config struct {
	// Level is the minimum level emitted: "debug", "info", "warning" or "error".
	// Unknown values fall back to "info".
	Level string `yaml:"level"`

	// EnableTracing adds trace_id and span_id to *WithContext entries when the
	// context carries a recording span.
	EnableTracing bool `yaml:"enable_tracing"`

	// ServiceName populates the "service" field of every entry.
	ServiceName string `yaml:"service_name"`

	// CallerSkip is the number of wrapper frames between the caller and zap.
	// Zero means 1, which is right for direct calls.
	CallerSkip int `yaml:"caller_skip"`
}
