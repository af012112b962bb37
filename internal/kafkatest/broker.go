// Package kafkatest provides an in-memory kafka.BrokerProducer for tests
// outside the kafka package.
package kafkatest

import (
	"context"
	"sync"

	ckafka "github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// Broker accepts every transaction and records what was produced.
type Broker struct {
	mu        sync.Mutex
	calls     []string
	produced  []*ckafka.Message
	commitErr error

	events    chan ckafka.Event
	closeOnce sync.Once
}

// NewBroker returns an empty Broker.
func NewBroker() *Broker {
	return &Broker{events: make(chan ckafka.Event, 16)}
}

// FailCommits makes every later commit return err.
func (b *Broker) FailCommits(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.commitErr = err
}

func (b *Broker) record(call string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, call)
}

func (b *Broker) InitTransactions(context.Context) error { b.record("init"); return nil }
func (b *Broker) BeginTransaction() error                { b.record("begin"); return nil }
func (b *Broker) Flush(int) int                          { b.record("flush"); return 0 }
func (b *Broker) Events() chan ckafka.Event              { return b.events }

func (b *Broker) Produce(msg *ckafka.Message, _ chan ckafka.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, "produce")
	b.produced = append(b.produced, msg)
	return nil
}

func (b *Broker) CommitTransaction(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, "commit")
	return b.commitErr
}

func (b *Broker) AbortTransaction(context.Context) error {
	b.record("abort")
	return nil
}

func (b *Broker) Close() {
	b.record("close")
	b.closeOnce.Do(func() { close(b.events) })
}

// Calls returns the broker methods invoked so far, in order.
func (b *Broker) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

// Produced returns every message handed to Produce.
func (b *Broker) Produced() []*ckafka.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*ckafka.Message(nil), b.produced...)
}
