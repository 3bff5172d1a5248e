// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package patch implements multi-block consolidation, stripping, and
// full-state-or-delta payload selection.
package patch

import (
	"time"

	"github.com/solidcoredata/tablechain/config"
	"github.com/solidcoredata/tablechain/delta"
	"github.com/solidcoredata/tablechain/state"
	"github.com/solidcoredata/tablechain/wire"
)

// Patch consolidates a run of blocks into exactly one of a stripped
// merged delta or a full state snapshot. BlockCount == 0 means an empty
// patch (ancestor already equals HEAD).
type Patch struct {
	HeadHash   wire.Hash
	CreatedAt  time.Time
	BlockCount int

	// Exactly one of Deltas/State is set.
	Deltas map[string]*delta.Stripped
	State  *state.State
}

// IsState reports whether p carries the full-state fallback payload.
func (p *Patch) IsState() bool { return p.State != nil }

// Header is the portion of a patch that Applied needs: everything except
// the payload itself. Reading just the header never requires the
// configuration (decoding a State payload does).
type Header struct {
	HeadHash   wire.Hash
	CreatedAt  time.Time
	BlockCount int
}

// Encode canonically encodes p, applying cfg's outer-frame compression.
func Encode(p *Patch, cfg config.Config) ([]byte, error) {
	w := wire.NewWriter()
	writeHeader(w, p.HeadHash, p.CreatedAt, p.BlockCount)
	isState := p.State != nil
	w.WriteBool(isState)
	if isState {
		wire.EncodeState(w, cfg.Tables, p.State)
	} else {
		wire.EncodeStrippedSet(w, cfg.TableNames(), p.Deltas)
	}
	return wire.Envelope(w.Bytes(), cfg.Compression)
}

// Decode fully decodes a patch, including its payload. cfg supplies the
// table schemas needed to decode a State payload.
func Decode(data []byte, cfg config.Config) (*Patch, error) {
	raw, err := wire.Unenvelope(data)
	if err != nil {
		return nil, err
	}
	r := wire.NewReader(raw)
	hash, createdAt, blockCount, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	isState, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	p := &Patch{HeadHash: hash, CreatedAt: createdAt, BlockCount: blockCount}
	if isState {
		p.State, err = wire.DecodeState(r, cfg.Tables)
	} else {
		p.Deltas, err = wire.DecodeStrippedSet(r)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// DecodeHeader extracts only the header, without touching (or needing a
// configuration to interpret) the payload — this is what Applied uses:
// it decodes the patch only to extract the head hash.
func DecodeHeader(data []byte) (Header, error) {
	raw, err := wire.Unenvelope(data)
	if err != nil {
		return Header{}, err
	}
	r := wire.NewReader(raw)
	hash, createdAt, blockCount, err := readHeader(r)
	if err != nil {
		return Header{}, err
	}
	return Header{HeadHash: hash, CreatedAt: createdAt, BlockCount: blockCount}, nil
}

func writeHeader(w *wire.Writer, hash wire.Hash, createdAt time.Time, blockCount int) {
	w.WriteHash(hash)
	w.WriteInt64(createdAt.UTC().UnixNano())
	w.WriteUvarint(uint64(blockCount))
}

func readHeader(r *wire.Reader) (wire.Hash, time.Time, int, error) {
	hash, err := r.ReadHash()
	if err != nil {
		return wire.Hash{}, time.Time{}, 0, err
	}
	nano, err := r.ReadInt64()
	if err != nil {
		return wire.Hash{}, time.Time{}, 0, err
	}
	n, err := r.ReadUvarint()
	if err != nil {
		return wire.Hash{}, time.Time{}, 0, err
	}
	return hash, time.Unix(0, nano).UTC(), int(n), nil
}
