package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenesisIsAllZeroAndRecognized(t *testing.T) {
	assert.True(t, Genesis.IsGenesis())
	assert.Equal(t, "0000000000000000000000000000000000000000", Genesis.String())
}

func TestSumIsDeterministic(t *testing.T) {
	a := Sum([]byte("hello"))
	b := Sum([]byte("hello"))
	assert.Equal(t, a, b)
	assert.False(t, a.IsGenesis())
}

func TestParseHashRoundTrips(t *testing.T) {
	h := Sum([]byte("content"))
	parsed, err := ParseHash(h.String())
	require.NoError(t, err)
	assert.Equal(t, h, parsed)
}

func TestParseHashRejectsWrongLength(t *testing.T) {
	_, err := ParseHash("abc")
	assert.Error(t, err)
}

func TestParseHashRejectsNonHex(t *testing.T) {
	_, err := ParseHash("zz00000000000000000000000000000000000000")
	assert.Error(t, err)
}

func TestHashWriteReadRoundTrips(t *testing.T) {
	h := Sum([]byte("block contents"))
	w := NewWriter()
	w.WriteHash(h)

	r := NewReader(w.Bytes())
	got, err := r.ReadHash()
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestReadHashFailsOnTruncatedInput(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	_, err := r.ReadHash()
	assert.Error(t, err)
}
