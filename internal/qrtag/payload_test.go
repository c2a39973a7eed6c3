package qrtag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadRoundTrip(t *testing.T) {
	payload := EncodePayload("TAG-AB12CD34", "secret-key")
	require.True(t, strings.HasPrefix(payload, "CC::1:"))

	code, err := DecodePayload(payload, "secret-key")
	require.NoError(t, err)
	assert.Equal(t, "TAG-AB12CD34", code)
}

func TestDecodePayload_WrongSecretYieldsGarbage(t *testing.T) {
	payload := EncodePayload("TAG-AB12CD34", "secret-key")

	// Decoding succeeds structurally but the code does not survive, so
	// resolution will fail the code-shape check downstream.
	code, err := DecodePayload(payload, "another-key")
	require.NoError(t, err)
	assert.NotEqual(t, "TAG-AB12CD34", code)
}

func TestDecodePayload_Malformed(t *testing.T) {
	for _, payload := range []string{
		"",
		"TAG-AB12CD34",
		"CC:1:Zm9v",
		"CC::2:Zm9v",
		"CC::1:",
		"CC::1:not base64!!!",
		"XX::1:Zm9v",
	} {
		_, err := DecodePayload(payload, "secret-key")
		assert.ErrorIs(t, err, ErrBadPayload, "payload %q", payload)
	}
}

func TestEncodePayload_EmptySecretPassesThrough(t *testing.T) {
	// An empty key leaves the bytes untouched; the marker still hides
	// the shape from a casual scanner app.
	code, err := DecodePayload(EncodePayload("TAG-AB12CD34", ""), "")
	require.NoError(t, err)
	assert.Equal(t, "TAG-AB12CD34", code)
}
