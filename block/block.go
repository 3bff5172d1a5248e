// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package block implements the Block record and its content address: a
// parent pointer, a creation timestamp, and the per-table deltas
// between two successive snapshots.
package block

import (
	"time"

	"github.com/solidcoredata/tablechain/delta"
	"github.com/solidcoredata/tablechain/wire"
)

// Block is immutable once written: a parent hash (Genesis for the first
// block), a creation timestamp, and one dense Delta per table that
// changed. Deltas are intentionally left unstripped — later patch
// consolidation needs their full value context to fold blocks together.
type Block struct {
	Parent    wire.Hash
	CreatedAt time.Time
	Deltas    map[string]*delta.Delta
}

// Encode canonically encodes b, iterating tables in tableOrder (the
// configuration's declared order).
func (b *Block) Encode(tableOrder []string) []byte {
	w := wire.NewWriter()
	w.WriteHash(b.Parent)
	w.WriteInt64(b.CreatedAt.UTC().UnixNano())
	wire.EncodeDeltaSet(w, tableOrder, b.Deltas)
	return w.Bytes()
}

// Hash returns the content address of b's canonical encoding. Blocks are
// always stored uncompressed, so Hash and Encode always agree with what
// Create writes to disk.
func (b *Block) Hash(tableOrder []string) wire.Hash {
	return wire.Sum(b.Encode(tableOrder))
}

// Decode parses a Block from its canonical encoding.
func Decode(data []byte) (*Block, error) {
	r := wire.NewReader(data)
	parent, err := r.ReadHash()
	if err != nil {
		return nil, err
	}
	createdAtNano, err := r.ReadInt64()
	if err != nil {
		return nil, err
	}
	deltas, err := wire.DecodeDeltaSet(r)
	if err != nil {
		return nil, err
	}
	return &Block{
		Parent:    parent,
		CreatedAt: time.Unix(0, createdAtNano).UTC(),
		Deltas:    deltas,
	}, nil
}
