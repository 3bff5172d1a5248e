package delta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripDiscardsDeleteValues(t *testing.T) {
	d := New("t", []string{"v"})
	d.Deletes[k("a")] = row("1")

	s := Strip(d)
	require.Contains(t, s.Deletes, k("a"))
	assert.True(t, s.Deletes[k("a")])
}

func TestStripUpdateKeepsOnlyChangedIndices(t *testing.T) {
	d := New("t", []string{"v1", "v2", "v3"})
	d.Updates[k("a")] = Update{Old: row("1", "2", "3"), New: row("1", "9", "3")}

	s := Strip(d)
	su := s.Updates[k("a")]
	assert.Equal(t, []int{1}, su.Index)
	assert.Equal(t, []string{"2"}, su.Old)
	assert.Equal(t, []string{"9"}, su.New)
}

func TestStripIsIdempotent(t *testing.T) {
	d := New("t", []string{"v1", "v2"})
	d.Inserts[k("a")] = row("1", "2")
	d.Deletes[k("b")] = row("3", "4")
	d.Updates[k("c")] = Update{Old: row("1", "2"), New: row("9", "2")}

	once := Strip(d)
	twice := once.Strip()

	assert.Equal(t, once.Inserts, twice.Inserts)
	assert.Equal(t, once.Deletes, twice.Deletes)
	assert.Equal(t, once.Updates, twice.Updates)
}

func TestStrippedIsEmpty(t *testing.T) {
	var nilStripped *Stripped
	assert.True(t, nilStripped.IsEmpty())

	s := Strip(New("t", []string{"v"}))
	assert.True(t, s.IsEmpty())

	s.Inserts[k("a")] = row("1")
	assert.False(t, s.IsEmpty())
}
