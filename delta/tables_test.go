package delta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solidcoredata/tablechain/table"
)

func TestMergeTablesPassesThroughUnpairedTables(t *testing.T) {
	onlyOrders := deltaOf(t, []string{"v"}, map[table.Key]table.Row{k("a"): row("1")}, nil, nil)
	onlyUsers := deltaOf(t, []string{"v"}, map[table.Key]table.Row{k("b"): row("2")}, nil, nil)

	parent := map[string]*Delta{"orders": onlyOrders}
	current := map[string]*Delta{"users": onlyUsers}

	merged, err := MergeTables(parent, current)
	require.NoError(t, err)
	assert.Same(t, onlyOrders, merged["orders"])
	assert.Same(t, onlyUsers, merged["users"])
}

func TestMergeTablesMergesSharedTables(t *testing.T) {
	parent := map[string]*Delta{
		"orders": deltaOf(t, []string{"v"}, map[table.Key]table.Row{k("a"): row("1")}, nil, nil),
	}
	current := map[string]*Delta{
		"orders": deltaOf(t, []string{"v"}, nil, nil, map[table.Key]Update{k("a"): {Old: row("1"), New: row("2")}}),
	}

	merged, err := MergeTables(parent, current)
	require.NoError(t, err)
	assert.Equal(t, row("2"), merged["orders"].Inserts[k("a")])
}

func TestMergeTablesPropagatesConflict(t *testing.T) {
	parent := map[string]*Delta{
		"orders": deltaOf(t, []string{"v"}, map[table.Key]table.Row{k("a"): row("1")}, nil, nil),
	}
	current := map[string]*Delta{
		"orders": deltaOf(t, []string{"v"}, map[table.Key]table.Row{k("a"): row("2")}, nil, nil),
	}

	_, err := MergeTables(parent, current)
	require.Error(t, err)
}

func TestStripTablesStripsEveryTable(t *testing.T) {
	in := map[string]*Delta{
		"orders": deltaOf(t, []string{"v"}, nil, map[table.Key]table.Row{k("a"): row("1")}, nil),
	}
	out := StripTables(in)
	require.Contains(t, out, "orders")
	assert.True(t, out["orders"].Deletes[k("a")])
}
