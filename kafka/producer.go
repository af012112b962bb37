package kafka

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v5"
	ckafka "github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/oklog/ulid/v2"

	"github.com/nakji-network/connector-go/tracer"
)

// HeaderBatchID carries the id shared by every record of one Publish call.
const HeaderBatchID = "nakji-batch-id"

type txnState int

const (
	stateUninitialized txnState = iota
	stateIdle
	stateOpen
	stateClosed
)

func (s txnState) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateIdle:
		return "idle"
	case stateOpen:
		return "transaction_open"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// commitOutcome classifies a failed commit.
type commitOutcome int

const (
	outcomeRetry commitOutcome = iota
	outcomeFenced
	outcomeAbandon
	outcomeAbort
)

func classifyCommitError(err error) commitOutcome {
	if IsFenced(err) {
		return outcomeFenced
	}
	if be, ok := asBrokerError(err); ok {
		switch {
		case be.IsFatal():
			return outcomeFenced
		case be.Code() == ckafka.ErrInvalidTransactionTimeout:
			return outcomeAbandon
		case be.IsRetriable():
			return outcomeRetry
		}
	}
	return outcomeAbort
}

// Publish sends msgs in order inside one transaction.
//
// The first call initializes transactions. Each message is serialized and
// queued; a serialize or send failure returns at once with the transaction
// left open, and the next Publish aborts it before starting over.
//
// The commit is retried with exponential backoff while the broker reports
// retriable errors. Other outcomes:
//   - fenced: buffered records are flushed, the transaction is aborted and a
//     *FatalError is returned; the producer accepts no further work
//   - invalid transaction timeout: ErrCommitAbandoned, nothing is aborted
//   - anything else: one abort, then a *ProducerError; if the abort fails
//     too the producer is closed and a *FatalError is returned
func (p *TransactionalProducer) Publish(ctx context.Context, msgs ...Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var span tracer.Span
	if _, _, t := p.hooks(); t != nil {
		ctx, span = t.StartSpan(ctx, "kafka.publish")
		defer span.End()
		span.SetAttributes(map[string]interface{}{
			"messaging.system":       "kafka",
			"messaging.batch.size":   len(msgs),
			"kafka.transactional_id": p.cfg.TransactionalID,
		})
	}

	start := time.Now()
	err := p.publish(ctx, msgs)
	p.observeOperation("publish", p.cfg.TransactionalID, "", time.Since(start), err, int64(len(msgs)), nil)
	if err != nil && span != nil {
		span.RecordError(err)
	}
	return err
}

func (p *TransactionalProducer) publish(ctx context.Context, msgs []Message) error {
	switch p.state {
	case stateClosed:
		return ErrProducerClosed
	case stateUninitialized:
		if err := p.initTransactions(ctx); err != nil {
			return err
		}
	case stateOpen:
		p.logWarn(ctx, "Aborting transaction left open by a failed publish", nil, nil)
		if err := p.abort(ctx); err != nil {
			return p.closeWithError(ctx, &ProducerError{Op: OpAbort, Err: TranslateError(err)})
		}
	}

	if err := p.begin(ctx); err != nil {
		return err
	}

	headers := p.batchHeaders(ctx)
	for _, m := range msgs {
		if err := p.produce(m, headers); err != nil {
			return err
		}
	}

	return p.commit(ctx)
}

func (p *TransactionalProducer) initTransactions(ctx context.Context) error {
	initCtx, cancel := context.WithTimeout(ctx, p.cfg.InitTimeout)
	defer cancel()

	start := time.Now()
	err := p.broker.InitTransactions(initCtx)
	p.observeOperation("init", p.cfg.TransactionalID, "", time.Since(start), err, 0, nil)
	if err != nil {
		p.logError(ctx, "Failed to initialize transactions", err, nil)
		return &ProducerError{Op: OpInit, Err: TranslateError(err)}
	}

	p.state = stateIdle
	p.logInfo(ctx, "Transactions initialized", nil)
	return nil
}

func (p *TransactionalProducer) begin(ctx context.Context) error {
	start := time.Now()
	err := p.broker.BeginTransaction()
	p.observeOperation("begin", p.cfg.TransactionalID, "", time.Since(start), err, 0, nil)
	if err != nil {
		return &ProducerError{Op: OpBegin, Err: TranslateError(err)}
	}
	p.state = stateOpen
	return nil
}

func (p *TransactionalProducer) produce(m Message, batch []ckafka.Header) error {
	topic := m.Topic.String()

	payload, err := p.serializer.Serialize(m.Payload)
	if err != nil {
		return &ProducerError{Op: OpSerialize, Topic: topic, Err: err}
	}

	headers := make([]ckafka.Header, 0, len(batch)+len(m.Headers))
	headers = append(headers, batch...)
	headers = append(headers, sortedHeaders(m.Headers)...)

	record := &ckafka.Message{
		TopicPartition: ckafka.TopicPartition{Topic: &topic, Partition: ckafka.PartitionAny},
		Key:            m.Key.Bytes(),
		Value:          payload,
		Headers:        headers,
	}

	start := time.Now()
	err = p.broker.Produce(record, nil)
	p.observeOperation("produce", topic, m.Key.String(), time.Since(start), err, int64(len(payload)), nil)
	if err != nil {
		return &ProducerError{Op: OpSend, Topic: topic, Err: TranslateError(err)}
	}
	return nil
}

// commit drives the commit state machine for the open transaction.
func (p *TransactionalProducer) commit(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.cfg.CommitRetryInterval
	b.MaxInterval = p.cfg.CommitRetryMaxInterval

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		err := p.commitOnce(ctx, attempt)
		if err == nil {
			return struct{}{}, nil
		}
		if classifyCommitError(err) != outcomeRetry {
			return struct{}{}, backoff.Permanent(err)
		}
		p.logWarn(ctx, "Retriable commit error", err, map[string]interface{}{"attempt": attempt})
		return struct{}{}, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(p.cfg.MaxCommitAttempts)),
		backoff.WithMaxElapsedTime(p.cfg.MaxCommitElapsed),
	)
	if err == nil {
		p.state = stateIdle
		return nil
	}

	switch classifyCommitError(err) {
	case outcomeFenced:
		return p.fatalShutdown(ctx, err)

	case outcomeAbandon:
		p.state = stateIdle
		p.logError(ctx, "Commit abandoned, delivery unconfirmed", err, nil)
		return fmt.Errorf("%w: %w", ErrCommitAbandoned, err)

	case outcomeRetry:
		err = fmt.Errorf("%w after %d attempts: %w", ErrCommitRetriesExhausted, attempt, TranslateError(err))

	default:
		err = TranslateError(err)
	}

	p.logError(ctx, "Commit failed, aborting transaction", err, map[string]interface{}{"attempts": attempt})
	if abortErr := p.abort(ctx); abortErr != nil {
		return p.closeWithError(ctx, &ProducerError{
			Op:  OpAbort,
			Err: errors.Join(TranslateError(abortErr), err),
		})
	}
	return &ProducerError{Op: OpCommit, Err: err}
}

func (p *TransactionalProducer) commitOnce(ctx context.Context, attempt int) error {
	commitCtx, cancel := context.WithTimeout(ctx, p.cfg.CommitTimeout)
	defer cancel()

	start := time.Now()
	err := p.broker.CommitTransaction(commitCtx)
	p.observeOperation("commit", p.cfg.TransactionalID, "", time.Since(start), err, 0, map[string]interface{}{
		"attempt": attempt,
	})
	return err
}

func (p *TransactionalProducer) abort(ctx context.Context) error {
	abortCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.cfg.AbortTimeout)
	defer cancel()

	start := time.Now()
	err := p.broker.AbortTransaction(abortCtx)
	p.observeOperation("abort", p.cfg.TransactionalID, "", time.Since(start), err, 0, nil)
	if err != nil {
		return err
	}
	p.state = stateIdle
	return nil
}

// fatalShutdown handles a fenced producer: another instance owns the
// transactional id, so nothing may be committed from here on.
func (p *TransactionalProducer) fatalShutdown(ctx context.Context, cause error) error {
	p.logError(ctx, "Producer fenced, shutting down", cause, nil)

	if remaining := p.broker.Flush(int(p.cfg.FlushTimeout.Milliseconds())); remaining > 0 {
		p.logWarn(ctx, "Flush timed out during fatal shutdown", nil, map[string]interface{}{"remaining": remaining})
	}
	if err := p.abort(ctx); err != nil {
		p.logError(ctx, "Abort failed during fatal shutdown", err, nil)
	}

	return p.closeWithError(ctx, fmt.Errorf("%w: %w", ErrProducerFenced, cause))
}

// closeWithError marks the producer terminal and wraps err in a FatalError.
func (p *TransactionalProducer) closeWithError(ctx context.Context, err error) error {
	p.state = stateClosed
	fatal := &FatalError{Err: err}
	p.logError(ctx, "Producer closed after fatal error", fatal, nil)
	return fatal
}

// batchHeaders returns the headers shared by every record of one publish.
func (p *TransactionalProducer) batchHeaders(ctx context.Context) []ckafka.Header {
	headers := []ckafka.Header{{Key: HeaderBatchID, Value: []byte(ulid.Make().String())}}
	if _, _, t := p.hooks(); t != nil {
		headers = append(headers, sortedHeaders(t.GetCarrier(ctx))...)
	}
	return headers
}

func sortedHeaders(m map[string]string) []ckafka.Header {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	headers := make([]ckafka.Header, 0, len(keys))
	for _, k := range keys {
		headers = append(headers, ckafka.Header{Key: k, Value: []byte(m[k])})
	}
	return headers
}

// handleEvents drains delivery reports until the broker client is closed.
func (p *TransactionalProducer) handleEvents() {
	defer close(p.eventsDone)

	for ev := range p.broker.Events() {
		switch e := ev.(type) {
		case *ckafka.Message:
			if e.TopicPartition.Error == nil {
				continue
			}
			topic := ""
			if e.TopicPartition.Topic != nil {
				topic = *e.TopicPartition.Topic
			}
			p.observeOperation("delivery", topic, string(e.Key), 0, e.TopicPartition.Error, int64(len(e.Value)), nil)
			p.logError(context.Background(), "Delivery failed", e.TopicPartition.Error, map[string]interface{}{
				"topic": topic,
				"key":   string(e.Key),
			})
		case ckafka.Error:
			p.logWarn(context.Background(), "Broker client error", e, map[string]interface{}{
				"code":  e.Code().String(),
				"fatal": e.IsFatal(),
			})
		}
	}
}

// Close aborts an open transaction, flushes pending records and closes the
// broker client. It is safe to call more than once.
func (p *TransactionalProducer) Close(ctx context.Context) error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		defer p.mu.Unlock()

		p.logInfo(ctx, "Closing producer", map[string]interface{}{"state": p.state.String()})

		if p.state == stateOpen {
			if err := p.abort(ctx); err != nil {
				p.logWarn(ctx, "Failed to abort open transaction on close", err, nil)
				p.closeErr = &ProducerError{Op: OpAbort, Err: TranslateError(err)}
			}
		}

		if remaining := p.broker.Flush(int(p.cfg.FlushTimeout.Milliseconds())); remaining > 0 {
			p.logWarn(ctx, "Records left unflushed on close", nil, map[string]interface{}{"remaining": remaining})
		}
		p.broker.Close()
		p.state = stateClosed
	})

	select {
	case <-p.eventsDone:
	case <-ctx.Done():
		return ctx.Err()
	}
	return p.closeErr
}
