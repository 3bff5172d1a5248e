// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sqlemit is the SQL replay collaborator: it is explicitly out
// of the core's scope, but is implemented here as a straightforward,
// interchangeable reference emitter so the rest of the module has
// something concrete to hand a patch to.
//
// A delta payload emits, within one transaction, all deletes, then all
// inserts, then all updates (strict order, so an update never races a
// delete/insert touching the same key). A state payload truncates every
// table and reloads it whole.
package sqlemit

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/solidcoredata/tablechain/delta"
	"github.com/solidcoredata/tablechain/schema"
	"github.com/solidcoredata/tablechain/state"
	"github.com/solidcoredata/tablechain/table"
)

// Quote wraps an identifier in double quotes, escaping embedded quotes.
// Identifier quoting is deliberately this emitter's business, not the
// core's.
func Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// Literal formats v as a SQL literal for the given logical type. Binary
// values are assumed to already be hex-encoded text in the Row (the
// core never interprets value bytes); this emitter treats every stored
// string as the already-hex/ISO-formatted textual representation of its
// declared type and only decides *quoting*, not *parsing*.
func Literal(t schema.Type, v string) string {
	switch t {
	case schema.Integer, schema.Float:
		if v == "" {
			return "NULL"
		}
		return v
	case schema.Boolean:
		switch strings.ToLower(v) {
		case "1", "t", "true":
			return "TRUE"
		case "0", "f", "false", "":
			return "FALSE"
		default:
			return "FALSE"
		}
	case schema.Binary:
		return "x'" + v + "'"
	default: // Text, Date, Time, DateTime
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	}
}

// EmitDelta writes a delta payload's replay as one BEGIN/COMMIT
// transaction: all deletes, then all inserts, then all updates, per
// table in tables' declared order.
func EmitDelta(w io.Writer, tables []schema.Table, deltas map[string]*delta.Stripped) error {
	fmt.Fprintln(w, "BEGIN;")
	for _, t := range tables {
		d, ok := deltas[t.Name]
		if !ok {
			continue
		}
		if err := emitDeletes(w, t, d); err != nil {
			return err
		}
	}
	for _, t := range tables {
		d, ok := deltas[t.Name]
		if !ok {
			continue
		}
		if err := emitInserts(w, t, d); err != nil {
			return err
		}
	}
	for _, t := range tables {
		d, ok := deltas[t.Name]
		if !ok {
			continue
		}
		if err := emitUpdates(w, t, d); err != nil {
			return err
		}
	}
	fmt.Fprintln(w, "COMMIT;")
	return nil
}

// EmitState writes a full-state payload's replay: truncate then reload
// every configured table.
func EmitState(w io.Writer, tables []schema.Table, s *state.State) error {
	fmt.Fprintln(w, "BEGIN;")
	for _, t := range tables {
		fmt.Fprintf(w, "TRUNCATE TABLE %s;\n", Quote(t.Name))
	}
	for _, t := range tables {
		tbl, ok := s.Tables[t.Name]
		if !ok {
			continue
		}
		if err := emitFullInserts(w, t, tbl); err != nil {
			return err
		}
	}
	fmt.Fprintln(w, "COMMIT;")
	return nil
}

func keyWhere(keyFields []schema.Field, keyVals []string) string {
	parts := make([]string, len(keyFields))
	for i, f := range keyFields {
		parts[i] = fmt.Sprintf("%s = %s", Quote(f.Name), Literal(f.Type, keyVals[i]))
	}
	return strings.Join(parts, " AND ")
}

func emitDeletes(w io.Writer, t schema.Table, d *delta.Stripped) error {
	keyFields := t.Ordered()[:t.KeyCount()]
	keys := sortedStrippedKeys(d.Deletes)
	for _, k := range keys {
		where := keyWhere(keyFields, k.Split())
		if _, err := fmt.Fprintf(w, "DELETE FROM %s WHERE %s;\n", Quote(t.Name), where); err != nil {
			return err
		}
	}
	return nil
}

func emitInserts(w io.Writer, t schema.Table, d *delta.Stripped) error {
	ordered := t.Ordered()
	keyCount := t.KeyCount()
	keys := sortedInsertKeys(d.Inserts)
	for _, k := range keys {
		row := d.Inserts[k]
		keyVals := k.Split()
		cols := make([]string, 0, len(ordered))
		vals := make([]string, 0, len(ordered))
		for i, f := range ordered[:keyCount] {
			cols = append(cols, Quote(f.Name))
			vals = append(vals, Literal(f.Type, keyVals[i]))
		}
		for i, f := range ordered[keyCount:] {
			cols = append(cols, Quote(f.Name))
			vals = append(vals, Literal(f.Type, row[i]))
		}
		if _, err := fmt.Fprintf(w, "INSERT INTO %s (%s) VALUES (%s);\n",
			Quote(t.Name), strings.Join(cols, ", "), strings.Join(vals, ", ")); err != nil {
			return err
		}
	}
	return nil
}

func emitFullInserts(w io.Writer, t schema.Table, tbl *table.Table) error {
	ordered := t.Ordered()
	keyCount := t.KeyCount()
	keys := make([]table.Key, 0, len(tbl.Rows))
	for k := range tbl.Rows {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		row := tbl.Rows[k]
		keyVals := k.Split()
		cols := make([]string, 0, len(ordered))
		vals := make([]string, 0, len(ordered))
		for i, f := range ordered[:keyCount] {
			cols = append(cols, Quote(f.Name))
			vals = append(vals, Literal(f.Type, keyVals[i]))
		}
		for i, f := range ordered[keyCount:] {
			cols = append(cols, Quote(f.Name))
			vals = append(vals, Literal(f.Type, row[i]))
		}
		if _, err := fmt.Fprintf(w, "INSERT INTO %s (%s) VALUES (%s);\n",
			Quote(t.Name), strings.Join(cols, ", "), strings.Join(vals, ", ")); err != nil {
			return err
		}
	}
	return nil
}

func emitUpdates(w io.Writer, t schema.Table, d *delta.Stripped) error {
	ordered := t.Ordered()
	keyCount := t.KeyCount()
	nonKey := ordered[keyCount:]
	keyFields := ordered[:keyCount]

	keys := sortedUpdateKeys(d.Updates)
	for _, k := range keys {
		u := d.Updates[k]
		sets := make([]string, len(u.Index))
		for i, idx := range u.Index {
			sets[i] = fmt.Sprintf("%s = %s", Quote(nonKey[idx].Name), Literal(nonKey[idx].Type, u.New[i]))
		}
		where := keyWhere(keyFields, k.Split())
		if _, err := fmt.Fprintf(w, "UPDATE %s SET %s WHERE %s;\n",
			Quote(t.Name), strings.Join(sets, ", "), where); err != nil {
			return err
		}
	}
	return nil
}

func sortedStrippedKeys(m map[table.Key]bool) []table.Key {
	out := make([]table.Key, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedInsertKeys(m map[table.Key]table.Row) []table.Key {
	out := make([]table.Key, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedUpdateKeys(m map[table.Key]delta.StrippedUpdate) []table.Key {
	out := make([]table.Key, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
