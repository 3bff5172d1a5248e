package sqlemit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solidcoredata/tablechain/delta"
	"github.com/solidcoredata/tablechain/schema"
	"github.com/solidcoredata/tablechain/state"
	"github.com/solidcoredata/tablechain/table"
)

func ordersSchema() schema.Table {
	return schema.Table{
		Name: "orders",
		Fields: []schema.Field{
			{Name: "id", Type: schema.Integer, PrimKey: true},
			{Name: "qty", Type: schema.Integer},
			{Name: "status", Type: schema.Text},
		},
	}
}

func TestQuoteEscapesEmbeddedQuotes(t *testing.T) {
	assert.Equal(t, `"orders"`, Quote("orders"))
	assert.Equal(t, `"a""b"`, Quote(`a"b`))
}

func TestLiteralByType(t *testing.T) {
	assert.Equal(t, "5", Literal(schema.Integer, "5"))
	assert.Equal(t, "NULL", Literal(schema.Integer, ""))
	assert.Equal(t, "TRUE", Literal(schema.Boolean, "true"))
	assert.Equal(t, "FALSE", Literal(schema.Boolean, "false"))
	assert.Equal(t, "x'ab'", Literal(schema.Binary, "ab"))
	assert.Equal(t, `'it''s'`, Literal(schema.Text, "it's"))
}

func TestEmitDeltaOrdersDeletesThenInsertsThenUpdates(t *testing.T) {
	sch := ordersSchema()
	d := delta.New("orders", []string{"qty", "status"})
	d.Inserts[table.NewKey([]string{"1"})] = table.Row{"5", "open"}
	d.Deletes[table.NewKey([]string{"2"})] = table.Row{"3", "closed"}
	d.Updates[table.NewKey([]string{"3"})] = delta.Update{
		Old: table.Row{"1", "open"},
		New: table.Row{"2", "shipped"},
	}
	stripped := map[string]*delta.Stripped{"orders": delta.Strip(d)}

	var sb strings.Builder
	require.NoError(t, EmitDelta(&sb, []schema.Table{sch}, stripped))
	out := sb.String()

	delPos := strings.Index(out, "DELETE FROM")
	insPos := strings.Index(out, "INSERT INTO")
	updPos := strings.Index(out, "UPDATE")
	require.True(t, delPos >= 0 && insPos >= 0 && updPos >= 0)
	assert.Less(t, delPos, insPos)
	assert.Less(t, insPos, updPos)
	assert.True(t, strings.HasPrefix(out, "BEGIN;\n"))
	assert.True(t, strings.HasSuffix(out, "COMMIT;\n"))
}

func TestEmitStateTruncatesThenReloads(t *testing.T) {
	sch := ordersSchema()
	s := state.New()
	tbl := table.New(sch)
	tbl.Set(table.NewKey([]string{"1"}), table.Row{"5", "open"})
	s.Tables["orders"] = tbl

	var sb strings.Builder
	require.NoError(t, EmitState(&sb, []schema.Table{sch}, s))
	out := sb.String()

	truncPos := strings.Index(out, "TRUNCATE TABLE")
	insPos := strings.Index(out, "INSERT INTO")
	require.True(t, truncPos >= 0 && insPos >= 0)
	assert.Less(t, truncPos, insPos)
}
