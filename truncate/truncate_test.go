package truncate

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/solidcoredata/tablechain/block"
	"github.com/solidcoredata/tablechain/config"
	"github.com/solidcoredata/tablechain/schema"
	"github.com/solidcoredata/tablechain/state"
	"github.com/solidcoredata/tablechain/store"
	"github.com/solidcoredata/tablechain/wire"
)

func chainConfig(dir string) config.Config {
	return config.Config{
		WorkDir: dir,
		Tables: []schema.Table{
			{
				Name:    "orders",
				Source:  dir + "/orders.csv",
				Headers: true,
				Fields: []schema.Field{
					{Name: "id", Type: schema.Integer, PrimKey: true},
					{Name: "qty", Type: schema.Integer},
				},
			},
		},
	}
}

// recordN appends n blocks by rewriting the CSV source between each, and
// returns every hash in recording order (index 0 = first block recorded,
// the reverse of the truncator's chain order).
func recordN(t *testing.T, cfg config.Config, st *store.Store, cache *block.Cache, n int) []wire.Hash {
	t.Helper()
	var prev *state.State
	var hashes []wire.Hash
	for i := 0; i < n; i++ {
		require.NoError(t, os.WriteFile(cfg.Tables[0].Source, []byte(fmt.Sprintf("id,qty\n1,%d\n", i)), 0o644))
		result, err := block.Create(cfg, st, cache, zap.NewNop(), prev)
		require.NoError(t, err)
		prev = result.State
		hashes = append(hashes, result.Hash)
		time.Sleep(time.Millisecond) // force distinct CreatedAt ordering
	}
	return hashes
}

func TestRunNoOpsWhenNothingRecorded(t *testing.T) {
	dir := t.TempDir()
	cfg := chainConfig(dir)
	st := store.Open(dir)
	cache := block.NewCache(16)

	assert.NoError(t, Run(cfg, st, cache, zap.NewNop()))
}

func TestRunNeverRemovesHead(t *testing.T) {
	dir := t.TempDir()
	cfg := chainConfig(dir)
	st := store.Open(dir)
	cache := block.NewCache(16)
	hashes := recordN(t, cfg, st, cache, 3)
	head := hashes[len(hashes)-1]

	m := 1
	cfg.Truncation.MaxBlocks = &m
	require.NoError(t, Run(cfg, st, cache, zap.NewNop()))

	_, err := st.Read(head.String())
	assert.NoError(t, err)
}

func TestRunMaxBlocksPrunesOlderBlocks(t *testing.T) {
	dir := t.TempDir()
	cfg := chainConfig(dir)
	st := store.Open(dir)
	cache := block.NewCache(16)
	hashes := recordN(t, cfg, st, cache, 4)

	m := 2
	cfg.Truncation.MaxBlocks = &m
	require.NoError(t, Run(cfg, st, cache, zap.NewNop()))

	// Newest two survive; oldest two are pruned.
	_, err := st.Read(hashes[3].String())
	assert.NoError(t, err)
	_, err = st.Read(hashes[2].String())
	assert.NoError(t, err)
	_, err = st.Read(hashes[0].String())
	assert.Error(t, err)
}

func TestRunReportedCutoffPrunesOlderThanReported(t *testing.T) {
	dir := t.TempDir()
	cfg := chainConfig(dir)
	st := store.Open(dir)
	cache := block.NewCache(16)
	hashes := recordN(t, cfg, st, cache, 3)

	require.NoError(t, st.WriteHash(store.REPORTED, hashes[1]))
	require.NoError(t, Run(cfg, st, cache, zap.NewNop()))

	_, err := st.Read(hashes[0].String())
	assert.Error(t, err)
	_, err = st.Read(hashes[1].String())
	assert.NoError(t, err)
	_, err = st.Read(hashes[2].String())
	assert.NoError(t, err)
}

func TestRunReportedUnreachableIsNoOp(t *testing.T) {
	dir := t.TempDir()
	cfg := chainConfig(dir)
	st := store.Open(dir)
	cache := block.NewCache(16)
	hashes := recordN(t, cfg, st, cache, 2)

	require.NoError(t, st.WriteHash(store.REPORTED, wire.Sum([]byte("never recorded"))))
	require.NoError(t, Run(cfg, st, cache, zap.NewNop()))

	for _, h := range hashes {
		_, err := st.Read(h.String())
		assert.NoError(t, err)
	}
}

func TestRunOrphanSweepRemovesUnreachableBlockFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := chainConfig(dir)
	st := store.Open(dir)
	cache := block.NewCache(16)
	recordN(t, cfg, st, cache, 1)

	orphan := wire.Sum([]byte("orphan"))
	require.NoError(t, st.WriteBlockFile(orphan, []byte("garbage")))

	require.NoError(t, Run(cfg, st, cache, zap.NewNop()))
	_, err := st.Read(orphan.String())
	assert.Error(t, err)
}

func TestRunMaxAgePrunesStaleNonHeadBlocks(t *testing.T) {
	dir := t.TempDir()
	cfg := chainConfig(dir)
	st := store.Open(dir)
	cache := block.NewCache(16)
	hashes := recordN(t, cfg, st, cache, 2)

	age := time.Nanosecond
	cfg.Truncation.MaxAge = &age
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, Run(cfg, st, cache, zap.NewNop()))

	_, err := st.Read(hashes[0].String())
	assert.Error(t, err)
	_, err = st.Read(hashes[1].String()) // HEAD, never removed
	assert.NoError(t, err)
}
