package kafka

import (
	"context"

	ckafka "github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// Publisher publishes batches of messages, each batch in one transaction.
//
// This interface is implemented by *TransactionalProducer.
type Publisher interface {
	// Publish sends msgs in order inside a single transaction and returns
	// nil only once that transaction is committed.
	Publish(ctx context.Context, msgs ...Message) error

	// Close flushes and releases the broker client.
	Close(ctx context.Context) error
}

// BrokerProducer is the subset of the confluent producer the transactional
// producer drives. *ckafka.Producer satisfies it.
type BrokerProducer interface {
	InitTransactions(ctx context.Context) error
	BeginTransaction() error
	Produce(msg *ckafka.Message, deliveryChan chan ckafka.Event) error
	CommitTransaction(ctx context.Context) error
	AbortTransaction(ctx context.Context) error
	Flush(timeoutMs int) int
	Events() chan ckafka.Event
	Close()
}

var _ BrokerProducer = (*ckafka.Producer)(nil)
