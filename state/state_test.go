package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solidcoredata/tablechain/schema"
)

func writeCSV(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestComputeLoadsEveryConfiguredTable(t *testing.T) {
	dir := t.TempDir()
	ordersPath := writeCSV(t, dir, "orders.csv", "id,qty\n1,5\n")

	tables := []schema.Table{
		{
			Name:    "orders",
			Source:  ordersPath,
			Headers: true,
			Fields: []schema.Field{
				{Name: "id", Type: schema.Integer, PrimKey: true},
				{Name: "qty", Type: schema.Integer},
			},
		},
	}

	s, err := Compute(tables)
	require.NoError(t, err)
	require.Contains(t, s.Tables, "orders")
	assert.Equal(t, 1, s.Tables["orders"].Len())
}

func TestComputeRejectsInvalidSchema(t *testing.T) {
	_, err := Compute([]schema.Table{{Name: "t"}})
	assert.Error(t, err)
}

func TestTableNamesIsSorted(t *testing.T) {
	s := New()
	s.Tables["zebra"] = nil
	s.Tables["alpha"] = nil
	assert.Equal(t, []string{"alpha", "zebra"}, s.TableNames())
}

func TestGetOnNilStateIsSafe(t *testing.T) {
	var s *State
	_, ok := s.Get("orders")
	assert.False(t, ok)
}
