package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeDisabledRoundTrips(t *testing.T) {
	inner := []byte("some payload bytes")
	enveloped, err := Envelope(inner, Compression{Enabled: false})
	require.NoError(t, err)
	assert.Equal(t, envelopeRaw, enveloped[0])

	out, err := Unenvelope(enveloped)
	require.NoError(t, err)
	assert.Equal(t, inner, out)
}

func TestEnvelopeEnabledRoundTrips(t *testing.T) {
	inner := []byte("some payload bytes, repeated, repeated, repeated, repeated")
	enveloped, err := Envelope(inner, Compression{Enabled: true, Level: 2})
	require.NoError(t, err)
	assert.Equal(t, envelopeZstd, enveloped[0])

	out, err := Unenvelope(enveloped)
	require.NoError(t, err)
	assert.Equal(t, inner, out)
}

func TestUnenvelopeAcceptsEitherFormRegardlessOfCurrentSetting(t *testing.T) {
	inner := []byte("payload")
	compressed, err := Envelope(inner, Compression{Enabled: true})
	require.NoError(t, err)

	out, err := Unenvelope(compressed)
	require.NoError(t, err)
	assert.Equal(t, inner, out)

	raw, err := Envelope(inner, Compression{Enabled: false})
	require.NoError(t, err)

	out, err = Unenvelope(raw)
	require.NoError(t, err)
	assert.Equal(t, inner, out)
}

func TestUnenvelopeRejectsEmptyInput(t *testing.T) {
	_, err := Unenvelope(nil)
	assert.Error(t, err)
}

func TestUnenvelopeRejectsUnknownFlag(t *testing.T) {
	_, err := Unenvelope([]byte{9, 1, 2, 3})
	assert.Error(t, err)
}
