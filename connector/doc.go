// Package connector is the entry point of a nakji connector. It ties the
// connector's identity from manifest.yaml and its settings from config.yaml
// to a transactional Kafka producer and a protoregistry client.
//
// A connector publishes every message type to a topic derived from its
// manifest:
//
//	{env}.{msg_type}.{author}.{name}.{major}_{minor}_{patch}.{pkg}_{Message}
//
// and uses author-name-version-env as its transactional id, so two
// instances of the same connector in one environment fence each other.
//
// # Usage
//
//	c, err := connector.New(ctx, connector.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	defer c.Close(ctx)
//
//	if err := c.RegisterEventTypes(ctx, kafka.MsgTypeFact, &evm.Block{}, &evm.Transaction{}); err != nil {
//	    return err
//	}
//
//	msg, err := c.NewMessage(kafka.MsgTypeFact, kafka.NewKey("ethereum", "block"), block)
//	if err != nil {
//	    return err
//	}
//	if err := c.Publish(ctx, msg); err != nil {
//	    if kafka.IsFatal(err) {
//	        // another instance took over the transactional id
//	    }
//	    return err
//	}
//
// # Configuration sections
//
// Besides kafka.url, kafka.env and protoregistry.host, config.yaml may
// carry:
//
//	kafka:          producer tuning, see kafka.Config
//	protoregistry:  timeout, resolver, proto_root, see schema_registry.Config
//	logger:         see logger.Config
//	tracing:        see tracer.Config
//	metrics:        see metrics.Config
//
// Those sections are only read by FXModule, except kafka and protoregistry
// which New reads too.
package connector
