package kafka

import (
	"context"
	"errors"
	"fmt"

	ckafka "github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// Identity errors.
var (
	// ErrMalformedTypeName is returned when a type name has fewer than two
	// dot-separated segments.
	ErrMalformedTypeName = errors.New("kafka: malformed type name")

	// ErrMalformedTopic is returned by ParseTopic.
	ErrMalformedTopic = errors.New("kafka: malformed topic")

	// ErrUnknownEnv is returned for an environment outside test, dev, staging, prod.
	ErrUnknownEnv = errors.New("kafka: unknown environment")

	// ErrUnknownMessageType is returned for a message type outside fct, bf, cdc, cmd, sys.
	ErrUnknownMessageType = errors.New("kafka: unknown message type")

	// ErrKeyWrongFormat is returned when a key does not have exactly two segments.
	ErrKeyWrongFormat = errors.New("wrong format")

	// ErrKeyInvalidEncoding is returned when a key is not valid UTF-8.
	ErrKeyInvalidEncoding = errors.New("invalid encoding")

	// ErrNilPayload is returned when a message has no payload.
	ErrNilPayload = errors.New("kafka: nil payload")
)

// Producer errors.
var (
	// ErrInvalidConfig is returned when the producer configuration is unusable.
	ErrInvalidConfig = errors.New("kafka: invalid config")

	// ErrProducerClosed is returned by Publish once the producer was closed,
	// either explicitly or after a fatal error.
	ErrProducerClosed = errors.New("kafka: producer closed")

	// ErrCommitAbandoned is returned when the broker rejected the commit for
	// an invalid transaction timeout. The transaction was neither committed
	// nor aborted, so delivery is unconfirmed.
	ErrCommitAbandoned = errors.New("kafka: commit abandoned, delivery unconfirmed")

	// ErrCommitRetriesExhausted is returned when a retriable commit error
	// persisted past the retry budget. The transaction was aborted.
	ErrCommitRetriesExhausted = errors.New("kafka: commit retries exhausted")
)

// Broker errors, the result of TranslateError.
var (
	ErrBrokerNotAvailable           = errors.New("kafka: broker not available")
	ErrAuthenticationFailed         = errors.New("kafka: authentication failed")
	ErrAuthorizationFailed          = errors.New("kafka: authorization failed")
	ErrTopicNotFound                = errors.New("kafka: topic not found")
	ErrMessageTooLarge              = errors.New("kafka: message too large")
	ErrQueueFull                    = errors.New("kafka: producer queue full")
	ErrRequestTimedOut              = errors.New("kafka: request timed out")
	ErrProducerFenced               = errors.New("kafka: producer fenced")
	ErrInvalidProducerEpoch         = errors.New("kafka: invalid producer epoch")
	ErrInvalidTransactionTimeout    = errors.New("kafka: invalid transaction timeout")
	ErrInvalidTransactionState      = errors.New("kafka: invalid transaction state")
	ErrTransactionCoordinatorFenced = errors.New("kafka: transaction coordinator fenced")
	ErrTransactionalIDAuthorization = errors.New("kafka: transactional id authorization failed")
)

// Op names the producer step that failed.
type Op string

// Producer steps.
const (
	OpInit      Op = "init"
	OpBegin     Op = "begin"
	OpSerialize Op = "serialize"
	OpSend      Op = "send"
	OpCommit    Op = "commit"
	OpAbort     Op = "abort"
)

// ProducerError reports a failed producer step. Topic is set for serialize
// and send failures.
type ProducerError struct {
	Op    Op
	Topic string
	Err   error
}

func (e *ProducerError) Error() string {
	if e.Topic != "" {
		return fmt.Sprintf("kafka: %s %s: %v", e.Op, e.Topic, e.Err)
	}
	return fmt.Sprintf("kafka: %s: %v", e.Op, e.Err)
}

func (e *ProducerError) Unwrap() error { return e.Err }

// FatalError means the producer can no longer be used. It has already
// flushed and aborted what it could; the embedding program should stop
// publishing and shut down.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("kafka: fatal, producer closed: %v", e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// IsFatal reports whether err leaves the producer unusable.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal) || errors.Is(err, ErrProducerClosed)
}

// brokerError is the part of ckafka.Error the producer relies on.
type brokerError interface {
	error
	Code() ckafka.ErrorCode
	IsFatal() bool
	IsRetriable() bool
}

func asBrokerError(err error) (brokerError, bool) {
	var be brokerError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// IsRetryable reports whether the broker flagged err as retriable.
func IsRetryable(err error) bool {
	if be, ok := asBrokerError(err); ok {
		return be.IsRetriable()
	}
	return errors.Is(err, ErrRequestTimedOut) || errors.Is(err, ErrBrokerNotAvailable)
}

// IsFenced reports whether err means another producer instance took over
// the transactional id.
func IsFenced(err error) bool {
	if be, ok := asBrokerError(err); ok {
		switch be.Code() {
		case ckafka.ErrFenced, ckafka.ErrProducerFenced, ckafka.ErrInvalidProducerEpoch:
			return true
		}
	}
	return errors.Is(err, ErrProducerFenced) || errors.Is(err, ErrInvalidProducerEpoch)
}

// TranslateError wraps a broker error with the matching package sentinel so
// callers can use errors.Is without importing the client library. The
// original error stays reachable through errors.As.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrRequestTimedOut, err)
	}

	be, ok := asBrokerError(err)
	if !ok {
		return err
	}

	var sentinel error
	switch be.Code() {
	case ckafka.ErrAllBrokersDown, ckafka.ErrBrokerNotAvailable, ckafka.ErrTransport,
		ckafka.ErrCoordinatorNotAvailable, ckafka.ErrNotCoordinator:
		sentinel = ErrBrokerNotAvailable
	case ckafka.ErrAuthentication, ckafka.ErrSaslAuthenticationFailed:
		sentinel = ErrAuthenticationFailed
	case ckafka.ErrTopicAuthorizationFailed, ckafka.ErrClusterAuthorizationFailed:
		sentinel = ErrAuthorizationFailed
	case ckafka.ErrTransactionalIDAuthorizationFailed:
		sentinel = ErrTransactionalIDAuthorization
	case ckafka.ErrUnknownTopicOrPart, ckafka.ErrUnknownTopic:
		sentinel = ErrTopicNotFound
	case ckafka.ErrMsgSizeTooLarge, ckafka.ErrInvalidMsgSize:
		sentinel = ErrMessageTooLarge
	case ckafka.ErrQueueFull:
		sentinel = ErrQueueFull
	case ckafka.ErrTimedOut, ckafka.ErrRequestTimedOut, ckafka.ErrTimedOutQueue:
		sentinel = ErrRequestTimedOut
	case ckafka.ErrFenced, ckafka.ErrProducerFenced:
		sentinel = ErrProducerFenced
	case ckafka.ErrInvalidProducerEpoch:
		sentinel = ErrInvalidProducerEpoch
	case ckafka.ErrInvalidTransactionTimeout:
		sentinel = ErrInvalidTransactionTimeout
	case ckafka.ErrInvalidTxnState, ckafka.ErrState:
		sentinel = ErrInvalidTransactionState
	case ckafka.ErrTransactionCoordinatorFenced:
		sentinel = ErrTransactionCoordinatorFenced
	default:
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
