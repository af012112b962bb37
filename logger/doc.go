// Package logger provides the structured logger used across the connector
// packages.
//
// LoggerClient wraps a zap JSON logger. Every entry carries the process id
// and the service name (the connector's transactional identity when built
// through the connector package). When tracing is enabled, the *WithContext
// methods add trace_id and span_id from the active OpenTelemetry span, so a
// publish log line can be matched to its producer span.
//
// Other packages never import this package directly. They declare a small
// Logger interface of their own with the three *WithContext methods they
// need, and LoggerClient satisfies all of them.
//
//	log := logger.NewLoggerClient(logger.Config{Level: logger.Info, ServiceName: "nakji-ethereum-0.1.0-dev"})
//	producer.WithLogger(log)
//
// The level and tracing switch can live in the `logger` section of
// config.yaml:
//
//	logger:
//	  level: debug
//	  enable_tracing: true
package logger
