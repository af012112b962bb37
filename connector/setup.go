package connector

import (
	"context"
	"fmt"

	"github.com/nakji-network/connector-go/config"
	"github.com/nakji-network/connector-go/kafka"
	"github.com/nakji-network/connector-go/logger"
	"github.com/nakji-network/connector-go/metrics"
	"github.com/nakji-network/connector-go/observability"
	"github.com/nakji-network/connector-go/schema_registry"
	"github.com/nakji-network/connector-go/tracer"
)

// Sections of config.yaml read besides kafka.url, kafka.env and
// protoregistry.host.
const (
	SectionKafka         = "kafka"
	SectionProtoRegistry = "protoregistry"
	SectionLogger        = "logger"
	SectionTracing       = "tracing"
	SectionMetrics       = "metrics"
)

type options struct {
	manifest *config.Manifest
	config   *config.Config
	broker   kafka.BrokerProducer
	resolver schema_registry.DescriptorResolver
	logger   Logger
	observer observability.Observer
	tracer   tracer.Tracer
}

// Option customizes New.
type Option func(*options)

// WithManifest uses m instead of reading manifest.yaml.
func WithManifest(m *config.Manifest) Option {
	return func(o *options) { o.manifest = m }
}

// WithConfig uses cfg instead of searching for config.yaml.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.config = cfg }
}

// WithBroker replaces the confluent client under the producer.
func WithBroker(b kafka.BrokerProducer) Option {
	return func(o *options) { o.broker = b }
}

// WithResolver replaces the descriptor resolver chosen in config.yaml.
func WithResolver(r schema_registry.DescriptorResolver) Option {
	return func(o *options) { o.resolver = r }
}

// WithLogger sets the logger handed to the connector, the producer
// and the registry client.
func WithLogger(l Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithObserver sets the observer handed to the producer and the registry client.
func WithObserver(obs observability.Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithTracer sets the tracer the producer uses for publish spans and
// trace-context headers.
func WithTracer(t tracer.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// New loads manifest.yaml and config.yaml, unless given as options, and
// builds the producer and the registry client from them. The producer
// initializes transactions on the first Publish.
func New(ctx context.Context, opts ...Option) (*Connector, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	manifest := o.manifest
	if manifest == nil {
		var err error
		if manifest, err = config.LoadManifest(); err != nil {
			return nil, err
		}
	}
	cfg := o.config
	if cfg == nil {
		var err error
		if cfg, err = config.Load(); err != nil {
			return nil, err
		}
	}

	pcfg, err := ProducerConfig(manifest, cfg)
	if err != nil {
		return nil, err
	}
	rcfg, err := RegistryConfig(cfg)
	if err != nil {
		return nil, err
	}

	registry, err := schema_registry.NewClient(rcfg)
	if err != nil {
		return nil, err
	}
	if o.resolver != nil {
		registry.WithResolver(o.resolver)
	}

	var producer *kafka.TransactionalProducer
	if o.broker != nil {
		producer = kafka.NewTransactionalProducerWithBroker(pcfg, o.broker)
	} else if producer, err = kafka.NewTransactionalProducer(pcfg); err != nil {
		return nil, err
	}

	if o.logger != nil {
		producer.WithLogger(o.logger)
		registry.WithLogger(o.logger)
	}
	if o.observer != nil {
		producer.WithObserver(o.observer)
		registry.WithObserver(o.observer)
	}
	if o.tracer != nil {
		producer.WithTracer(o.tracer)
	}

	c := NewWithDeps(manifest, cfg, producer, registry).WithLogger(o.logger)
	c.logInfo(ctx, "Connector initialized", map[string]interface{}{
		"env":         cfg.Kafka.Env.String(),
		"brokers":     pcfg.Brokers,
		"config_path": cfg.Path(),
	})
	return c, nil
}

// ProducerConfig reads the kafka section into a producer config and fills
// in the brokers from kafka.url and the transactional id from the manifest.
func ProducerConfig(m *config.Manifest, cfg *config.Config) (kafka.Config, error) {
	var pcfg kafka.Config
	if err := cfg.Decode(SectionKafka, &pcfg); err != nil {
		return kafka.Config{}, fmt.Errorf("%s section: %w", SectionKafka, err)
	}
	pcfg.Brokers = cfg.Kafka.Brokers()
	pcfg.TransactionalID = TransactionalID(m, cfg.Kafka.Env)
	return pcfg, nil
}

// RegistryConfig reads the protoregistry section.
func RegistryConfig(cfg *config.Config) (schema_registry.Config, error) {
	var rcfg schema_registry.Config
	if err := cfg.Decode(SectionProtoRegistry, &rcfg); err != nil {
		return schema_registry.Config{}, fmt.Errorf("%s section: %w", SectionProtoRegistry, err)
	}
	return rcfg, nil
}

// LoggerConfig reads the logger section. The service name defaults to
// author-name.
func LoggerConfig(m *config.Manifest, cfg *config.Config) (logger.Config, error) {
	lcfg := logger.Config{Level: logger.Info}
	if err := cfg.Decode(SectionLogger, &lcfg); err != nil {
		return logger.Config{}, fmt.Errorf("%s section: %w", SectionLogger, err)
	}
	if lcfg.ServiceName == "" {
		lcfg.ServiceName = serviceName(m)
	}
	return lcfg, nil
}

// TracerConfig reads the tracing section. Service name, version and
// environment default to the manifest and kafka.env.
func TracerConfig(m *config.Manifest, cfg *config.Config) (tracer.Config, error) {
	var tcfg tracer.Config
	if err := cfg.Decode(SectionTracing, &tcfg); err != nil {
		return tracer.Config{}, fmt.Errorf("%s section: %w", SectionTracing, err)
	}
	if tcfg.ServiceName == "" {
		tcfg.ServiceName = serviceName(m)
	}
	if tcfg.ServiceVersion == "" {
		tcfg.ServiceVersion = m.Version.String()
	}
	if tcfg.Env == "" {
		tcfg.Env = cfg.Kafka.Env.String()
	}
	return tcfg, nil
}

// MetricsConfig reads the metrics section. The service label defaults to
// author-name.
func MetricsConfig(m *config.Manifest, cfg *config.Config) (metrics.Config, error) {
	var mcfg metrics.Config
	if err := cfg.Decode(SectionMetrics, &mcfg); err != nil {
		return metrics.Config{}, fmt.Errorf("%s section: %w", SectionMetrics, err)
	}
	if mcfg.ServiceName == "" {
		mcfg.ServiceName = serviceName(m)
	}
	return mcfg, nil
}

func serviceName(m *config.Manifest) string {
	return m.Author + "-" + m.Name
}
