package kafka

import (
	"fmt"

	"google.golang.org/protobuf/proto"
)

// Message is one record of a publish batch.
type Message struct {
	Topic   Topic
	Key     Key
	Payload proto.Message

	// Headers are attached to the record in addition to the batch headers
	// the producer adds.
	Headers map[string]string
}

// NewMessage builds a Message without extra headers.
func NewMessage(topic Topic, key Key, payload proto.Message) Message {
	return Message{Topic: topic, Key: key, Payload: payload}
}

// Serializer turns a payload into the bytes written to the broker.
type Serializer interface {
	Serialize(msg proto.Message) ([]byte, error)
}

// ProtoSerializer encodes payloads in protobuf binary format.
type ProtoSerializer struct {
	// Deterministic makes map fields serialize in a stable order.
	Deterministic bool
}

// Serialize implements Serializer.
func (s ProtoSerializer) Serialize(msg proto.Message) ([]byte, error) {
	if msg == nil {
		return nil, ErrNilPayload
	}
	b, err := proto.MarshalOptions{Deterministic: s.Deterministic}.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", msg.ProtoReflect().Descriptor().FullName(), err)
	}
	return b, nil
}
