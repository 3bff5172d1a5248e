package core

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/solidcoredata/tablechain/config"
	"github.com/solidcoredata/tablechain/patch"
	"github.com/solidcoredata/tablechain/schema"
	"github.com/solidcoredata/tablechain/store"
)

func newTestConfig(t *testing.T, csv string) config.Config {
	t.Helper()
	dir := t.TempDir()
	path := dir + "/orders.csv"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))
	return config.Config{
		WorkDir: dir,
		Tables: []schema.Table{
			{
				Name:    "orders",
				Source:  path,
				Headers: true,
				Fields: []schema.Field{
					{Name: "id", Type: schema.Integer, PrimKey: true},
					{Name: "qty", Type: schema.Integer},
				},
			},
		},
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(config.Config{}, nil)
	assert.Error(t, err)
}

func TestNewDefaultsToNopLogger(t *testing.T) {
	cfg := newTestConfig(t, "id,qty\n1,5\n")
	c, err := New(cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, c.log)
}

func TestRecordThenPublishThenApplied(t *testing.T) {
	cfg := newTestConfig(t, "id,qty\n1,5\n")
	c, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	result, err := c.Record()
	require.NoError(t, err)
	assert.True(t, result.Block.Parent.IsGenesis())

	p, encoded, err := c.Publish(nil)
	require.NoError(t, err)
	assert.Equal(t, result.Hash, p.HeadHash)

	require.NoError(t, c.Applied(patch.NewBuffer(encoded), true))

	reported, err := c.store.ReadHash(store.REPORTED)
	require.NoError(t, err)
	assert.Equal(t, result.Hash, reported)
}

func TestRecordTwiceChainsBlocks(t *testing.T) {
	cfg := newTestConfig(t, "id,qty\n1,5\n")
	c, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	first, err := c.Record()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(cfg.Tables[0].Source, []byte("id,qty\n1,9\n"), 0o644))
	second, err := c.Record()
	require.NoError(t, err)

	assert.Equal(t, first.Hash, second.Block.Parent)
}

func TestPublishWithEmptyWorkDirIsGenesisEmptyPatch(t *testing.T) {
	cfg := newTestConfig(t, "id,qty\n1,5\n")
	c, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	p, _, err := c.Publish(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, p.BlockCount)
	assert.True(t, p.HeadHash.IsGenesis())
}
