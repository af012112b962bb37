package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerClient is a thin wrapper around a zap.Logger. It implements Logger.
type LoggerClient struct {
	// Zap is the underlying logger, exposed for zap-specific needs.
	Zap *zap.Logger

	tracingEnabled bool
}

// NewLoggerClient builds a JSON logger writing to stderr.
//
// Entries use ISO8601 timestamps, capitalized levels, full caller paths and
// carry "pid" and "service" fields.
func NewLoggerClient(cfg Config) (*LoggerClient, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderCfg.EncodeCaller = zapcore.FullCallerEncoder
	encoderCfg.EncodeDuration = zapcore.MillisDurationEncoder

	callerSkip := cfg.CallerSkip
	if callerSkip <= 0 {
		callerSkip = 1
	}

	zapCfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(parseLevel(cfg.Level)),
		Encoding:         "json",
		EncoderConfig:    encoderCfg,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		InitialFields: map[string]interface{}{
			"pid":     os.Getpid(),
			"service": cfg.ServiceName,
		},
	}

	z, err := zapCfg.Build(zap.AddCaller(), zap.AddCallerSkip(callerSkip))
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}

	return NewFromZap(z, cfg.EnableTracing), nil
}

// NewFromZap wraps an existing zap logger, e.g. one built on a
// zaptest/observer core.
func NewFromZap(z *zap.Logger, tracingEnabled bool) *LoggerClient {
	return &LoggerClient{Zap: z, tracingEnabled: tracingEnabled}
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case Debug:
		return zap.DebugLevel
	case Warning:
		return zap.WarnLevel
	case Error:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}
