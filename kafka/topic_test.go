package kafka

import (
	"encoding/json"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nakji-network/connector-go/internal/testproto"
)

func version(t *testing.T, v string) semver.Version {
	t.Helper()
	parsed, err := semver.NewVersion(v)
	require.NoError(t, err)
	return *parsed
}

func TestTopicSchema(t *testing.T) {
	topic := NewTopic(EnvDev, MsgTypeFact, "nakji", "ethereum", version(t, "0.1.0"), "evm_Block")
	assert.Equal(t, "nakji.ethereum.0_1_0.evm_Block", topic.Schema())
}

func TestTopicString(t *testing.T) {
	tests := []struct {
		name  string
		topic Topic
		want  string
	}{
		{
			name:  "dev fact",
			topic: NewTopic(EnvDev, MsgTypeFact, "nakji", "ethereum", version(t, "0.1.0"), "evm_Block"),
			want:  "dev.fct.nakji.ethereum.0_1_0.evm_Block",
		},
		{
			name:  "multi digit version",
			topic: NewTopic(EnvDev, MsgTypeFact, "nakji", "ethereum", version(t, "3.2.1"), "chain_Block"),
			want:  "dev.fct.nakji.ethereum.3_2_1.chain_Block",
		},
		{
			name:  "prod system",
			topic: NewTopic(EnvProd, MsgTypeSystem, "nakji", "protoregistry", version(t, "0.0.0"), "chain_Block"),
			want:  "prod.sys.nakji.protoregistry.0_0_0.chain_Block",
		},
		{
			name:  "prerelease is dropped",
			topic: NewTopic(EnvStaging, MsgTypeCDC, "acme", "uniswap", version(t, "1.10.0-rc.1"), "dex_Swap"),
			want:  "staging.cdc.acme.uniswap.1_10_0.dex_Swap",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.topic.String())
		})
	}
}

func TestEventName(t *testing.T) {
	tests := []struct {
		fullName string
		want     string
		wantErr  bool
	}{
		{fullName: "nakji.evm.Block", want: "evm_Block"},
		{fullName: "evm.Block", want: "evm_Block"},
		{fullName: "a.b.c.d.Transaction", want: "d_Transaction"},
		{fullName: "Block", wantErr: true},
		{fullName: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.fullName, func(t *testing.T) {
			got, err := EventName(tt.fullName)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedTypeName)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewTopicForMessage(t *testing.T) {
	topic, err := NewTopicForMessage(EnvTest, MsgTypeCommand, "nakji", "ethereum", version(t, "0.0.0"), testproto.Block(testproto.ChainFile()))
	require.NoError(t, err)

	assert.Equal(t, "chain_Block", topic.EventName)
	assert.Equal(t, "nakji.ethereum.0_0_0.chain_Block", topic.Schema())
	assert.Equal(t, "test.cmd.nakji.ethereum.0_0_0.chain_Block", topic.String())
}

func TestTopicIsComparable(t *testing.T) {
	a := NewTopic(EnvDev, MsgTypeFact, "nakji", "ethereum", version(t, "0.1.0"), "evm_Block")
	b := NewTopic(EnvDev, MsgTypeFact, "nakji", "ethereum", version(t, "0.1.0"), "evm_Block")

	seen := map[Topic]bool{a: true}
	assert.True(t, seen[b])
}

func TestParseTopic(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		topic := NewTopic(EnvProd, MsgTypeBackfill, "nakji", "ethereum", version(t, "3.2.1"), "evm_Transaction")
		parsed, err := ParseTopic(topic.String())
		require.NoError(t, err)
		assert.Equal(t, topic, parsed)
	})

	for _, in := range []string{
		"dev.fct.nakji.ethereum.0_1_0",
		"dev.fct.nakji.ethereum.0_1_0.evm.Block",
		"qa.fct.nakji.ethereum.0_1_0.evm_Block",
		"dev.log.nakji.ethereum.0_1_0.evm_Block",
		"dev.fct.nakji.ethereum.0_1.evm_Block",
		"dev.fct.nakji.ethereum.a_b_c.evm_Block",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseTopic(in)
			assert.ErrorIs(t, err, ErrMalformedTopic)
		})
	}
}

func TestParseEnv(t *testing.T) {
	for in, want := range map[string]Env{"test": EnvTest, "Dev": EnvDev, "STAGING": EnvStaging, " prod ": EnvProd} {
		got, err := ParseEnv(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseEnv("production")
	assert.ErrorIs(t, err, ErrUnknownEnv)
}

func TestParseMessageType(t *testing.T) {
	for in, want := range map[string]MessageType{"fct": MsgTypeFact, "BF": MsgTypeBackfill, "cdc": MsgTypeCDC, "Cmd": MsgTypeCommand, "sys": MsgTypeSystem} {
		got, err := ParseMessageType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseMessageType("fact")
	assert.ErrorIs(t, err, ErrUnknownMessageType)
}

func TestEnvAndMessageTypeText(t *testing.T) {
	var decoded struct {
		Env     Env         `json:"env"`
		MsgType MessageType `json:"msg_type"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"env":"Staging","msg_type":"CMD"}`), &decoded))
	assert.Equal(t, EnvStaging, decoded.Env)
	assert.Equal(t, MsgTypeCommand, decoded.MsgType)

	out, err := json.Marshal(decoded)
	require.NoError(t, err)
	assert.JSONEq(t, `{"env":"staging","msg_type":"cmd"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"env":"qa"}`), &decoded))
}
