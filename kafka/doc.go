// Package kafka publishes connector events to Kafka in transactions.
//
// # Identity
//
// A Topic names a stream from the connector's identity and the event's
// protobuf type:
//
//	v := semver.MustParse("0.1.0")
//	topic, _ := kafka.NewTopicForMessage(kafka.EnvProd, kafka.MsgTypeFact, "nakji", "ethereum", *v, &evm.Block{})
//	topic.Schema() // nakji.ethereum.0_1_0.evm_Block
//	topic.String() // prod.fct.nakji.ethereum.0_1_0.evm_Block
//
// A Key routes a record within its topic and travels as "namespace.subject".
// ParseKey treats empty input as an empty key rather than an error.
//
// # Publishing
//
// TransactionalProducer wraps a confluent-kafka-go producer configured with a
// transactional id. Every Publish call is one transaction: the records are
// queued in order and the call returns nil only after the commit succeeded.
//
//	p, err := kafka.NewTransactionalProducer(kafka.Config{
//	    Brokers:         []string{"localhost:9092"},
//	    TransactionalID: "nakji-ethereum-0.1.0-prod",
//	})
//	if err != nil {
//	    return err
//	}
//	defer p.Close(ctx)
//
//	err = p.Publish(ctx,
//	    kafka.NewMessage(blockTopic, kafka.NewKey("ethereum", "Block"), block),
//	    kafka.NewMessage(txTopic, kafka.NewKey("ethereum", "Transaction"), tx),
//	)
//
// # Failure handling
//
// Retriable commit errors are retried with exponential backoff, up to
// Config.MaxCommitAttempts. A fenced producer (another instance took over
// the transactional id) flushes, aborts and returns a *FatalError; from then
// on Publish returns ErrProducerClosed. Use IsFatal to decide when the
// embedding program should stop:
//
//	if err := p.Publish(ctx, msgs...); kafka.IsFatal(err) {
//	    return err // shut down
//	} else if err != nil {
//	    log.Warn("batch not committed", err)
//	}
//
// ErrCommitAbandoned signals a commit the broker refused for an invalid
// transaction timeout. Nothing was aborted and delivery is unconfirmed.
package kafka
