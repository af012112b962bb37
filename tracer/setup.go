package tracer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// instrumentationName names the tracer spans are created with.
const instrumentationName = "github.com/nakji-network/connector-go"

// propagator carries W3C trace context and baggage in record headers.
var propagator = propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})

// TracerClient creates spans and moves trace context in and out of message
// headers. It is safe for concurrent use and implements Tracer.
type TracerClient struct {
	provider *trace.TracerProvider
}

// NewClient builds a tracer provider for cfg and installs it as the global
// provider and propagator.
//
//	tr, err := tracer.NewClient(tracer.Config{
//	    ServiceName:  "nakji-ethereum",
//	    Env:          "dev",
//	    EnableExport: true,
//	    Endpoint:     "otel-collector:4318",
//	})
func NewClient(cfg Config) (*TracerClient, error) {
	return newClient(context.Background(), cfg)
}

func newClient(ctx context.Context, cfg Config) (*TracerClient, error) {
	cfg = cfg.withDefaults()

	options := []trace.TracerProviderOption{
		trace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Env),
			attribute.String("environment", cfg.Env),
		)),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(cfg.SampleRatio))),
	}

	if cfg.EnableExport {
		exporter, err := otlptrace.New(ctx, otlptracehttp.NewClient(exporterOptions(cfg)...))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OTLP exporter: %w", err)
		}
		options = append(options, trace.WithBatcher(exporter))
	}

	tp := trace.NewTracerProvider(options...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagator)

	return &TracerClient{provider: tp}, nil
}

func exporterOptions(cfg Config) []otlptracehttp.Option {
	opts := []otlptracehttp.Option{otlptracehttp.WithTimeout(cfg.ExportTimeout)}
	if cfg.Endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(cfg.Endpoint))
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return opts
}

// NewFromProvider wraps an existing provider without touching the globals.
// Tests use it with an in-memory exporter.
func NewFromProvider(tp *trace.TracerProvider) *TracerClient {
	return &TracerClient{provider: tp}
}

// Shutdown flushes pending spans and stops the provider.
func (t *TracerClient) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}
