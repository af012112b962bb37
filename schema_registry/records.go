package schema_registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"google.golang.org/protobuf/proto"

	"github.com/nakji-network/connector-go/kafka"
)

// Record is one entry of a register request: a topic schema bound to the
// protobuf message carried on it.
type Record struct {
	MsgType    kafka.MessageType
	Topic      string // Topic.Schema(), without env and message type
	ProtoMsg   string // fully qualified message name
	Descriptor []byte // serialized FileDescriptorSet
}

// recordJSON is the wire shape. The registry reads descriptor as an array
// of byte values, not the base64 string encoding/json uses for []byte.
type recordJSON struct {
	MsgType    kafka.MessageType `json:"msg_type"`
	Topic      string            `json:"topic"`
	ProtoMsg   string            `json:"proto_msg"`
	Descriptor []int             `json:"descriptor"`
}

// MarshalJSON implements json.Marshaler.
func (r Record) MarshalJSON() ([]byte, error) {
	desc := make([]int, len(r.Descriptor))
	for i, b := range r.Descriptor {
		desc[i] = int(b)
	}
	return json.Marshal(recordJSON{
		MsgType:    r.MsgType,
		Topic:      r.Topic,
		ProtoMsg:   r.ProtoMsg,
		Descriptor: desc,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Record) UnmarshalJSON(data []byte) error {
	var w recordJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	desc := make([]byte, len(w.Descriptor))
	for i, v := range w.Descriptor {
		if v < 0 || v > 255 {
			return fmt.Errorf("schema_registry: descriptor byte %d out of range: %d", i, v)
		}
		desc[i] = byte(v)
	}
	*r = Record{MsgType: w.MsgType, Topic: w.Topic, ProtoMsg: w.ProtoMsg, Descriptor: desc}
	return nil
}

// BuildRecords turns a topic to message mapping into register records,
// resolving each message's descriptor set. Records are sorted by topic so
// the request body is deterministic.
func BuildRecords(ctx context.Context, msgType kafka.MessageType, topics map[kafka.Topic]proto.Message, resolver DescriptorResolver) ([]Record, error) {
	records := make([]Record, 0, len(topics))
	for topic, msg := range topics {
		desc := msg.ProtoReflect().Descriptor()
		b, err := resolver.Resolve(ctx, desc)
		if err != nil {
			return nil, fmt.Errorf("resolve %s for %s: %w", desc.FullName(), topic.Schema(), err)
		}
		records = append(records, Record{
			MsgType:    msgType,
			Topic:      topic.Schema(),
			ProtoMsg:   string(desc.FullName()),
			Descriptor: b,
		})
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Topic != records[j].Topic {
			return records[i].Topic < records[j].Topic
		}
		return records[i].ProtoMsg < records[j].ProtoMsg
	})
	return records, nil
}
