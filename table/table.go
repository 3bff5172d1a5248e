// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package table holds the in-memory Table value: an ordered field
// schema plus a mapping from primary-key tuple to non-key value tuple.
package table

import (
	"encoding/binary"
	"strings"

	"github.com/solidcoredata/tablechain/schema"
)

// Key is the canonical, collision-free encoding of a primary-key tuple,
// suitable for use as a Go map key. Plain strings.Join would let a
// separator byte inside a value collide two distinct tuples; Key instead
// length-prefixes each component.
type Key string

// NewKey builds a Key from an ordered tuple of primary-key field values.
func NewKey(tuple []string) Key {
	var b strings.Builder
	var lenBuf [binary.MaxVarintLen64]byte
	for _, v := range tuple {
		n := binary.PutUvarint(lenBuf[:], uint64(len(v)))
		b.Write(lenBuf[:n])
		b.WriteString(v)
	}
	return Key(b.String())
}

// Split decodes a Key back into its component tuple, e.g. for the SQL
// emitter's WHERE clauses and for the key named in a merge Conflict.
func (k Key) Split() []string {
	buf := []byte(k)
	var out []string
	for len(buf) > 0 {
		n, sz := binary.Uvarint(buf)
		buf = buf[sz:]
		out = append(out, string(buf[:n]))
		buf = buf[n:]
	}
	return out
}

// Row is a value tuple: the non-key field values of one row, in the
// table's declared non-key order.
type Row []string

// Equal reports whether two rows hold identical values, index for index.
func (r Row) Equal(o Row) bool {
	if len(r) != len(o) {
		return false
	}
	for i := range r {
		if r[i] != o[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of r.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// Table is a materialized CSV source: one Row per primary-key Key, plus
// the field schema it was built against.
type Table struct {
	Schema schema.Table
	Rows   map[Key]Row
}

// New returns an empty Table bound to the given schema.
func New(s schema.Table) *Table {
	return &Table{Schema: s, Rows: make(map[Key]Row)}
}

// Keys returns all keys present, unordered. Callers that need determinism
// (the wire codec) must sort the result themselves against the schema's
// declared key field order.
func (t *Table) Keys() []Key {
	out := make([]Key, 0, len(t.Rows))
	for k := range t.Rows {
		out = append(out, k)
	}
	return out
}

// Set inserts or overwrites the row at key.
func (t *Table) Set(key Key, row Row) {
	t.Rows[key] = row
}

// Get returns the row at key, if present.
func (t *Table) Get(key Key) (Row, bool) {
	r, ok := t.Rows[key]
	return r, ok
}

// Len reports the row count.
func (t *Table) Len() int { return len(t.Rows) }
