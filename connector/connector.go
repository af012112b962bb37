package connector

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/protobuf/proto"

	"github.com/nakji-network/connector-go/config"
	"github.com/nakji-network/connector-go/kafka"
	"github.com/nakji-network/connector-go/schema_registry"
)

// ErrDuplicateTopic is returned by RegisterEventTypes when two different
// message types map to the same topic.
var ErrDuplicateTopic = errors.New("connector: message types share a topic")

// Logger is the logging surface the connector needs. *logger.LoggerClient
// satisfies it.
type Logger interface {
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// Connector binds a manifest and a configuration to a transactional
// producer and a schema registry client. It derives every topic it
// publishes to from the manifest and the message type.
type Connector struct {
	manifest *config.Manifest
	config   *config.Config
	producer kafka.Publisher
	registry schema_registry.Registrar
	id       string

	logger Logger
}

// TransactionalID returns the producer identity of a connector:
// author-name-version-env, with env in its lowercase wire form.
//
// The broker fences producers by this id. An instance still running under
// a capitalized env segment ("nakji-ethereum-0.1.0-Prod") is a different
// producer and is not fenced by this one, so stop it before starting a
// connector that uses this form.
func TransactionalID(m *config.Manifest, env kafka.Env) string {
	return fmt.Sprintf("%s-%s-%s-%s", m.Author, m.Name, m.Version.String(), env)
}

// NewWithDeps assembles a connector from already built parts.
func NewWithDeps(manifest *config.Manifest, cfg *config.Config, producer kafka.Publisher, registry schema_registry.Registrar) *Connector {
	return &Connector{
		manifest: manifest,
		config:   cfg,
		producer: producer,
		registry: registry,
		id:       TransactionalID(manifest, cfg.Kafka.Env),
	}
}

// WithLogger sets a logger for context-aware logging
func (c *Connector) WithLogger(logger Logger) *Connector {
	c.logger = logger
	return c
}

// Manifest returns the manifest the connector was built from.
func (c *Connector) Manifest() *config.Manifest { return c.manifest }

// Config returns the shared configuration.
func (c *Connector) Config() *config.Config { return c.config }

// Env returns the environment the connector publishes to.
func (c *Connector) Env() kafka.Env { return c.config.Kafka.Env }

// TransactionalID returns the producer identity, author-name-version-env.
func (c *Connector) TransactionalID() string { return c.id }

// TopicFor returns the topic msg is published to under msgType.
func (c *Connector) TopicFor(msgType kafka.MessageType, msg proto.Message) (kafka.Topic, error) {
	return kafka.NewTopicForMessage(c.Env(), msgType, c.manifest.Author, c.manifest.Name, c.manifest.Version, msg)
}

// NewMessage wraps payload in a message addressed to its topic.
func (c *Connector) NewMessage(msgType kafka.MessageType, key kafka.Key, payload proto.Message) (kafka.Message, error) {
	topic, err := c.TopicFor(msgType, payload)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.NewMessage(topic, key, payload), nil
}

// RegisterEventTypes registers the schema of every message type with the
// registry. It is a no-op in the dev environment. Call it once at start,
// before the first Publish.
func (c *Connector) RegisterEventTypes(ctx context.Context, msgType kafka.MessageType, msgs ...proto.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	topics := make(map[kafka.Topic]proto.Message, len(msgs))
	for _, msg := range msgs {
		topic, err := c.TopicFor(msgType, msg)
		if err != nil {
			return err
		}
		if prev, ok := topics[topic]; ok {
			prevName := prev.ProtoReflect().Descriptor().FullName()
			name := msg.ProtoReflect().Descriptor().FullName()
			if prevName != name {
				return fmt.Errorf("%w: %s and %s both map to %s", ErrDuplicateTopic, prevName, name, topic)
			}
		}
		topics[topic] = msg
	}

	if err := c.registry.RegisterSchemas(ctx, c.Env(), msgType, topics); err != nil {
		return fmt.Errorf("register %d %s event types: %w", len(topics), msgType, err)
	}
	c.logInfo(ctx, "Event types registered", map[string]interface{}{
		"msg_type": msgType.String(),
		"count":    len(topics),
	})
	return nil
}

// Publish sends msgs in one transaction. See kafka.TransactionalProducer.
func (c *Connector) Publish(ctx context.Context, msgs ...kafka.Message) error {
	return c.producer.Publish(ctx, msgs...)
}

// Close closes the producer.
func (c *Connector) Close(ctx context.Context) error {
	return c.producer.Close(ctx)
}

func (c *Connector) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.InfoWithContext(ctx, msg, nil, c.withID(fields))
	}
}

func (c *Connector) withID(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["transactional_id"] = c.id
	return out
}
