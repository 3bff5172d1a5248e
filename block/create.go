package block

import (
	"time"

	"go.uber.org/zap"

	"github.com/solidcoredata/tablechain/config"
	"github.com/solidcoredata/tablechain/coreerr"
	"github.com/solidcoredata/tablechain/delta"
	"github.com/solidcoredata/tablechain/state"
	"github.com/solidcoredata/tablechain/store"
	"github.com/solidcoredata/tablechain/table"
	"github.com/solidcoredata/tablechain/wire"
)

// Result is what Create hands back to its caller: the new block, its
// hash (the new HEAD), and the state it was computed against.
type Result struct {
	Block *Block
	Hash  wire.Hash
	State *state.State
}

// Create loads every configured table from CSV, diffs the result against
// prev (nil means "no prior state": every row becomes an insert), and
// writes the resulting block, STATE and HEAD to st.
//
// Create does not invoke truncation itself — by the time it returns, the
// block is already committed, and invoking truncation is a follow-on
// step the caller (package core) performs so a truncation failure can be
// logged without this function's signature needing to distinguish
// "commit failed" from "a best-effort cleanup after commit failed".
func Create(cfg config.Config, st *store.Store, cache *Cache, log *zap.Logger, prev *state.State) (*Result, error) {
	newState, err := state.Compute(cfg.Tables)
	if err != nil {
		return nil, err
	}

	deltas := make(map[string]*delta.Delta, len(cfg.Tables))
	for _, t := range cfg.Tables {
		nonKey := t.FieldNames()[t.KeyCount():]
		currTable := newState.Tables[t.Name]
		var prevTable *table.Table
		if prev != nil {
			prevTable = prev.Tables[t.Name] // nil if absent: whole table is an insert
		}
		d := delta.Compute(t.Name, nonKey, prevTable, currTable)
		if !d.IsEmpty() {
			deltas[t.Name] = d
		}
	}

	parent := wire.Genesis
	if head, err := st.ReadHash(store.HEAD); err == nil {
		parent = head
	} else if !coreerr.IsNotFound(err) {
		return nil, err
	}

	b := &Block{
		Parent:    parent,
		CreatedAt: time.Now(),
		Deltas:    deltas,
	}
	tableOrder := cfg.TableNames()
	encoded := b.Encode(tableOrder)
	hash := wire.Sum(encoded)

	if err := st.WriteBlockFile(hash, encoded); err != nil {
		return nil, err
	}

	stateWriter := wire.NewWriter()
	wire.EncodeState(stateWriter, cfg.Tables, newState)
	stateBytes, err := wire.Envelope(stateWriter.Bytes(), cfg.Compression)
	if err != nil {
		return nil, err
	}
	if err := st.Write(store.STATE, stateBytes); err != nil {
		return nil, err
	}
	if err := st.WriteHash(store.HEAD, hash); err != nil {
		return nil, err
	}

	cache.add(hash, b)
	log.Info("block created",
		zap.String("hash", hash.String()),
		zap.String("parent", parent.String()),
		zap.Int("tables_changed", len(deltas)),
	)

	return &Result{Block: b, Hash: hash, State: newState}, nil
}

// Load reads and decodes the block named by h, consulting cache first.
func Load(st *store.Store, cache *Cache, h wire.Hash) (*Block, error) {
	if b, ok := cache.get(h); ok {
		return b, nil
	}
	data, err := st.ReadBlockFile(h)
	if err != nil {
		return nil, err
	}
	b, err := Decode(data)
	if err != nil {
		return nil, err
	}
	cache.add(h, b)
	return b, nil
}
