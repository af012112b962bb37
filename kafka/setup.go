package kafka

import (
	"context"
	"fmt"
	"strings"
	"sync"

	ckafka "github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/nakji-network/connector-go/observability"
	"github.com/nakji-network/connector-go/tracer"
)

// TransactionalProducer publishes message batches atomically. It owns the
// broker client and the transaction state; Publish calls are serialized.
//
// TransactionalProducer implements the Publisher interface.
type TransactionalProducer struct {
	cfg    Config
	broker BrokerProducer

	serializer Serializer

	// hooksMu guards observer, logger and tracer, which the event loop
	// reads concurrently with the With* setters.
	hooksMu  sync.RWMutex
	observer observability.Observer
	logger   Logger
	tracer   tracer.Tracer

	// mu serializes transactions and guards state.
	mu    sync.Mutex
	state txnState

	closeOnce  sync.Once
	closeErr   error
	eventsDone chan struct{}
}

// NewTransactionalProducer creates the broker client for cfg. Transactions
// are initialized lazily by the first Publish.
//
//	p, err := kafka.NewTransactionalProducer(kafka.Config{
//	    Brokers:         []string{"localhost:9092"},
//	    TransactionalID: "nakji-ethereum-0.1.0-dev",
//	})
//	if err != nil {
//	    return err
//	}
//	defer p.Close(ctx)
func NewTransactionalProducer(cfg Config) (*TransactionalProducer, error) {
	cfg = cfg.withDefaults()

	configMap, err := buildConfigMap(cfg)
	if err != nil {
		return nil, err
	}

	broker, err := ckafka.NewProducer(configMap)
	if err != nil {
		return nil, fmt.Errorf("%w: create producer: %w", ErrInvalidConfig, err)
	}

	return NewTransactionalProducerWithBroker(cfg, broker), nil
}

// NewTransactionalProducerWithBroker wraps an existing broker client. It
// starts draining the client's event channel right away.
func NewTransactionalProducerWithBroker(cfg Config, broker BrokerProducer) *TransactionalProducer {
	p := &TransactionalProducer{
		cfg:        cfg.withDefaults(),
		broker:     broker,
		serializer: ProtoSerializer{},
		eventsDone: make(chan struct{}),
	}
	go p.handleEvents()
	return p
}

// buildConfigMap translates cfg into client properties.
func buildConfigMap(cfg Config) (*ckafka.ConfigMap, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("%w: no brokers", ErrInvalidConfig)
	}
	if cfg.TransactionalID == "" {
		return nil, fmt.Errorf("%w: empty transactional id", ErrInvalidConfig)
	}

	cm := ckafka.ConfigMap{
		"bootstrap.servers":      strings.Join(cfg.Brokers, ","),
		"transactional.id":       cfg.TransactionalID,
		"enable.idempotence":     true,
		"linger.ms":              int(cfg.Linger.Milliseconds()),
		"request.timeout.ms":     int(cfg.RequestTimeout.Milliseconds()),
		"transaction.timeout.ms": int(cfg.TransactionTimeout.Milliseconds()),
		"compression.codec":      cfg.CompressionCodec,
	}
	if cfg.Debug != "" {
		cm["debug"] = cfg.Debug
	}

	protocol := "plaintext"
	if cfg.TLS.Enabled {
		protocol = "ssl"
		setIfNotEmpty(cm, "ssl.ca.location", cfg.TLS.CACertPath)
		setIfNotEmpty(cm, "ssl.certificate.location", cfg.TLS.ClientCertPath)
		setIfNotEmpty(cm, "ssl.key.location", cfg.TLS.ClientKeyPath)
		if cfg.TLS.InsecureSkipVerify {
			cm["enable.ssl.certificate.verification"] = false
		}
	}

	if cfg.SASL.Enabled {
		switch strings.ToUpper(cfg.SASL.Mechanism) {
		case "PLAIN", "SCRAM-SHA-256", "SCRAM-SHA-512":
		default:
			return nil, fmt.Errorf("%w: unsupported SASL mechanism %q", ErrInvalidConfig, cfg.SASL.Mechanism)
		}
		protocol = "sasl_" + protocol
		cm["sasl.mechanisms"] = strings.ToUpper(cfg.SASL.Mechanism)
		cm["sasl.username"] = cfg.SASL.Username
		cm["sasl.password"] = cfg.SASL.Password
	}
	cm["security.protocol"] = protocol

	for k, v := range cfg.Properties {
		cm[k] = v
	}
	return &cm, nil
}

func setIfNotEmpty(cm ckafka.ConfigMap, key, value string) {
	if value != "" {
		cm[key] = value
	}
}

// WithSerializer replaces the protobuf serializer.
func (p *TransactionalProducer) WithSerializer(s Serializer) *TransactionalProducer {
	p.serializer = s
	return p
}

// WithObserver sets the observer for producer operations.
//
//	p := p.WithObserver(obs).WithLogger(log)
func (p *TransactionalProducer) WithObserver(observer observability.Observer) *TransactionalProducer {
	p.hooksMu.Lock()
	p.observer = observer
	p.hooksMu.Unlock()
	return p
}

// WithLogger sets the logger for producer operations.
func (p *TransactionalProducer) WithLogger(logger Logger) *TransactionalProducer {
	p.hooksMu.Lock()
	p.logger = logger
	p.hooksMu.Unlock()
	return p
}

// WithTracer enables a span per publish and trace-context headers on every
// record.
func (p *TransactionalProducer) WithTracer(t tracer.Tracer) *TransactionalProducer {
	p.hooksMu.Lock()
	p.tracer = t
	p.hooksMu.Unlock()
	return p
}

func (p *TransactionalProducer) hooks() (observability.Observer, Logger, tracer.Tracer) {
	p.hooksMu.RLock()
	defer p.hooksMu.RUnlock()
	return p.observer, p.logger, p.tracer
}

// TransactionalID returns the id this producer was configured with.
func (p *TransactionalProducer) TransactionalID() string {
	return p.cfg.TransactionalID
}

// logInfo logs an informational message if a logger is configured
func (p *TransactionalProducer) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if _, logger, _ := p.hooks(); logger != nil {
		logger.InfoWithContext(ctx, msg, nil, p.withID(fields))
	}
}

// logWarn logs a warning message if a logger is configured
func (p *TransactionalProducer) logWarn(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if _, logger, _ := p.hooks(); logger != nil {
		logger.WarnWithContext(ctx, msg, err, p.withID(fields))
	}
}

// logError logs an error message if a logger is configured
func (p *TransactionalProducer) logError(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if _, logger, _ := p.hooks(); logger != nil {
		logger.ErrorWithContext(ctx, msg, err, p.withID(fields))
	}
}

func (p *TransactionalProducer) withID(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["transactional_id"] = p.cfg.TransactionalID
	return out
}
