package schema_registry

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/nakji-network/connector-go/internal/testproto"
	"github.com/nakji-network/connector-go/kafka"
)

// staticResolver returns the message name as the descriptor, or err.
type staticResolver struct {
	err error
}

func (r staticResolver) Resolve(_ context.Context, desc protoreflect.MessageDescriptor) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return []byte(desc.FullName()), nil
}

func chainTopics(t *testing.T, env kafka.Env) map[kafka.Topic]proto.Message {
	t.Helper()
	topics := make(map[kafka.Topic]proto.Message)
	for _, msg := range []proto.Message{
		testproto.Transaction(testproto.ChainFile()),
		testproto.Block(testproto.ChainFile()),
	} {
		topic, err := kafka.NewTopicForMessage(env, kafka.MsgTypeCommand, "nakji", "ethereum", *semver.MustParse("0.0.0"), msg)
		require.NoError(t, err)
		topics[topic] = msg
	}
	return topics
}

func TestRecord_MarshalJSON(t *testing.T) {
	r := Record{
		MsgType:    kafka.MsgTypeCommand,
		Topic:      "nakji.ethereum.0_0_0.chain_Block",
		ProtoMsg:   "nakji.chain.Block",
		Descriptor: []byte{0, 10, 255},
	}

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"msg_type": "cmd",
		"topic": "nakji.ethereum.0_0_0.chain_Block",
		"proto_msg": "nakji.chain.Block",
		"descriptor": [0, 10, 255]
	}`, string(b))

	var back Record
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, r, back)
}

func TestRecord_MarshalJSON_EmptyDescriptor(t *testing.T) {
	b, err := json.Marshal(Record{MsgType: kafka.MsgTypeFact})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"descriptor":[]`)
}

func TestRecord_UnmarshalJSON_Invalid(t *testing.T) {
	var r Record
	err := json.Unmarshal([]byte(`{"msg_type":"cmd","descriptor":[1,256]}`), &r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")

	err = json.Unmarshal([]byte(`{"msg_type":"nope","descriptor":[]}`), &r)
	assert.ErrorIs(t, err, kafka.ErrUnknownMessageType)
}

func TestBuildRecords(t *testing.T) {
	records, err := BuildRecords(context.Background(), kafka.MsgTypeCommand, chainTopics(t, kafka.EnvProd), staticResolver{})
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, Record{
		MsgType:    kafka.MsgTypeCommand,
		Topic:      "nakji.ethereum.0_0_0.chain_Block",
		ProtoMsg:   "nakji.chain.Block",
		Descriptor: []byte("nakji.chain.Block"),
	}, records[0])
	assert.Equal(t, "nakji.ethereum.0_0_0.chain_Transaction", records[1].Topic)
	assert.Equal(t, "nakji.chain.Transaction", records[1].ProtoMsg)
}

func TestBuildRecords_Empty(t *testing.T) {
	records, err := BuildRecords(context.Background(), kafka.MsgTypeFact, nil, staticResolver{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestBuildRecords_ResolverError(t *testing.T) {
	boom := errors.New("boom")
	_, err := BuildRecords(context.Background(), kafka.MsgTypeCommand, chainTopics(t, kafka.EnvProd), staticResolver{err: boom})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "nakji.chain.")
}
