// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package delta implements the per-table diff and its pairwise merge
// algebra — the semantic heart of tablechain.
package delta

import (
	"sort"

	"github.com/solidcoredata/tablechain/table"
)

// Update is the dense (non-sparse) form: old and new carry the full
// non-key value tuple. Dense form is what compute and Merge operate on;
// only the final consolidated delta is ever reduced to sparse form (see
// Strip).
type Update struct {
	Old table.Row
	New table.Row
}

// Delta is one table's diff between two states, bound to that table's
// non-key field order. The three maps are disjoint by
// construction: every mutating method in this package maintains that
// invariant. Merge does not check it; a key present in more than one map
// of the same delta is handled by the first rule whose case matches.
type Delta struct {
	Table  string
	Fields []string // non-key field names, declared order

	Inserts map[table.Key]table.Row
	Deletes map[table.Key]table.Row
	Updates map[table.Key]Update
}

// New returns an empty Delta for the given table/non-key field order.
func New(tableName string, nonKeyFields []string) *Delta {
	return &Delta{
		Table:   tableName,
		Fields:  nonKeyFields,
		Inserts: make(map[table.Key]table.Row),
		Deletes: make(map[table.Key]table.Row),
		Updates: make(map[table.Key]Update),
	}
}

// IsEmpty reports whether the delta carries no changes at all.
func (d *Delta) IsEmpty() bool {
	return d == nil || (len(d.Inserts) == 0 && len(d.Deletes) == 0 && len(d.Updates) == 0)
}

// Keys returns every key touched by the delta, across all three
// collections, sorted for deterministic iteration.
func (d *Delta) Keys() []table.Key {
	seen := make(map[table.Key]bool, len(d.Inserts)+len(d.Deletes)+len(d.Updates))
	for k := range d.Inserts {
		seen[k] = true
	}
	for k := range d.Deletes {
		seen[k] = true
	}
	for k := range d.Updates {
		seen[k] = true
	}
	out := make([]table.Key, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Compute diffs prev (possibly nil, meaning "no prior table") against
// curr under the given non-key field order.
func Compute(tableName string, nonKeyFields []string, prev, curr *table.Table) *Delta {
	d := New(tableName, nonKeyFields)

	var prevRows map[table.Key]table.Row
	if prev != nil {
		prevRows = prev.Rows
	}

	for k, currRow := range curr.Rows {
		prevRow, ok := prevRows[k]
		if !ok {
			d.Inserts[k] = currRow.Clone()
			continue
		}
		if !prevRow.Equal(currRow) {
			d.Updates[k] = Update{Old: prevRow.Clone(), New: currRow.Clone()}
		}
	}
	for k, prevRow := range prevRows {
		if _, ok := curr.Rows[k]; !ok {
			d.Deletes[k] = prevRow.Clone()
		}
	}
	return d
}
