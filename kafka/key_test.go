package kafka

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyBytes(t *testing.T) {
	key := NewKey("ethereum", "Transaction")
	assert.Equal(t, []byte("ethereum.Transaction"), key.Bytes())
	assert.Equal(t, "ethereum.Transaction", key.String())
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    Key
		wantErr error
	}{
		{name: "namespace and subject", input: []byte("ethereum.Transaction"), want: NewKey("ethereum", "Transaction")},
		{name: "empty input", input: []byte{}, want: Key{}},
		{name: "nil input", input: nil, want: Key{}},
		{name: "only separator", input: []byte("."), want: Key{}},
		{name: "invalid utf8", input: []byte{0, 159}, wantErr: ErrKeyInvalidEncoding},
		{name: "no separator", input: []byte("ethereumTransaction"), wantErr: ErrKeyWrongFormat},
		{name: "three segments", input: []byte("ethereum.Transaction.v2"), wantErr: ErrKeyWrongFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKey(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				var parseErr *ParseKeyError
				require.True(t, errors.As(err, &parseErr))
				assert.Equal(t, string(tt.input), parseErr.Key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseKeyRoundTrip(t *testing.T) {
	for _, key := range []Key{
		NewKey("ethereum", "Block"),
		NewKey("0xabc", "Transfer"),
		NewKey("", "subject"),
		NewKey("namespace", ""),
		NewKey("ünïcode", "主题"),
	} {
		got, err := ParseKey(key.Bytes())
		require.NoError(t, err, key.String())
		assert.Equal(t, key, got)
	}
}

func TestParseKeyErrorMessage(t *testing.T) {
	_, err := ParseKey([]byte("ethereumTransaction"))
	assert.EqualError(t, err, `kafka: parse key "ethereumTransaction": wrong format`)
}

func TestParseKeyInvalidEncodingOffset(t *testing.T) {
	tests := []struct {
		input []byte
		want  string
	}{
		{input: []byte{0, 159}, want: "invalid UTF-8 at byte 1"},
		{input: []byte("eth\xffereum.Block"), want: "invalid UTF-8 at byte 3"},
		{input: []byte("ethereum.Blo\xe2\x82"), want: "invalid UTF-8 at byte 12"},
	}

	for _, tt := range tests {
		_, err := ParseKey(tt.input)
		require.ErrorIs(t, err, ErrKeyInvalidEncoding)
		assert.ErrorContains(t, err, tt.want)
	}
}
