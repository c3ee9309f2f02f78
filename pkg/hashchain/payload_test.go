package hashchain_test

import (
	"testing"

	"github.com/morphcodes/morphd/pkg/hashchain"
	"github.com/stretchr/testify/require"
)

func TestPayloadRoundTrip(t *testing.T) {
	t.Parallel()

	encoded, err := hashchain.EncodePayload(
		"chain-123", "deadbeef", "https://codes.example.com/",
	)
	require.NoError(t, err)

	decoded, err := hashchain.DecodePayload(encoded)
	require.NoError(t, err)
	require.Equal(t, "chain-123", decoded.ChainID)
	require.Equal(t, "deadbeef", decoded.Value)
	require.Equal(
		t, "https://codes.example.com/scan?chain=chain-123&value=deadbeef", decoded.URL,
	)
	require.Greater(t, decoded.Timestamp, int64(0))
}

func TestEncodePayloadMissingFields(t *testing.T) {
	t.Parallel()

	_, err := hashchain.EncodePayload("", "deadbeef", "https://codes.example.com")
	require.Error(t, err)
	_, err = hashchain.EncodePayload("chain-123", "", "https://codes.example.com")
	require.Error(t, err)
}

func TestDecodePayloadRejectsGarbage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
	}{
		{name: "empty", payload: ""},
		{name: "not json", payload: "not a payload at all"},
		{name: "binary garbage", payload: "\x00\x01\x02\xff"},
		{name: "json scalar", payload: `42`},
		{name: "missing chain id", payload: `{"value":"deadbeef"}`},
		{name: "missing value", payload: `{"chainId":"chain-123"}`},
		{name: "wrong types", payload: `{"chainId":12,"value":["deadbeef"]}`},
		{name: "empty object", payload: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := hashchain.DecodePayload(tt.payload)
			require.ErrorIs(t, err, hashchain.ErrMalformedPayload)
		})
	}
}
