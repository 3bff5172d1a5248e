// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package schema describes the field/table shape the core operates
// over. It is consumed, not parsed: the CLI/config-file layer builds a
// Config (see package config) and the core trusts it once Validate has
// run.
package schema

import (
	"fmt"

	"github.com/solidcoredata/tablechain/coreerr"
)

// Type is a field's logical type. Only the shape of the value tuple is
// owned by the core; SQL-level formatting of a Type belongs to the SQL
// emitter collaborator.
type Type int

const (
	Text Type = iota + 1
	Integer
	Float
	Boolean
	Binary
	Date
	Time
	DateTime
)

func (t Type) String() string {
	switch t {
	case Text:
		return "text"
	case Integer:
		return "integer"
	case Float:
		return "float"
	case Boolean:
		return "boolean"
	case Binary:
		return "binary"
	case Date:
		return "date"
	case Time:
		return "time"
	case DateTime:
		return "datetime"
	default:
		return "unknown"
	}
}

// Field is one column of a Table: a name, a logical type, an optional
// format string for temporal types, and a primary-key flag.
type Field struct {
	Name    string
	Type    Type
	Format  string // only meaningful for Date/Time/DateTime
	PrimKey bool
}

// Table fixes the declared field order for one source: primary-key fields
// first (declared order), then non-key fields (declared order). Source is
// the CSV path, resolved against the work directory by the config layer.
// Headers indicates whether the CSV source carries a header row.
type Table struct {
	Name    string
	Source  string
	Headers bool
	Fields  []Field
}

// Ordered returns the field list reordered into the canonical
// primary-keys-first layout. It does not mutate t.Fields.
func (t Table) Ordered() []Field {
	out := make([]Field, 0, len(t.Fields))
	for _, f := range t.Fields {
		if f.PrimKey {
			out = append(out, f)
		}
	}
	for _, f := range t.Fields {
		if !f.PrimKey {
			out = append(out, f)
		}
	}
	return out
}

// KeyCount reports how many leading fields (in Ordered order) are primary
// keys.
func (t Table) KeyCount() int {
	n := 0
	for _, f := range t.Fields {
		if f.PrimKey {
			n++
		}
	}
	return n
}

// Validate checks the invariants required before the core is handed a
// configuration: at least one primary-key field, and unique field names.
func (t Table) Validate() error {
	if len(t.Fields) == 0 {
		return coreerr.Newf(coreerr.Config, "table %q: no fields declared", t.Name)
	}
	seen := make(map[string]bool, len(t.Fields))
	keys := 0
	for _, f := range t.Fields {
		if seen[f.Name] {
			return coreerr.Newf(coreerr.Config, "table %q: duplicate field name %q", t.Name, f.Name)
		}
		seen[f.Name] = true
		if f.PrimKey {
			keys++
		}
	}
	if keys == 0 {
		return coreerr.Newf(coreerr.Config, "table %q: no primary-key field declared", t.Name)
	}
	return nil
}

// FieldNames returns the Ordered field names, used to validate a CSV
// header permutation in package table.
func (t Table) FieldNames() []string {
	ordered := t.Ordered()
	names := make([]string, len(ordered))
	for i, f := range ordered {
		names[i] = f.Name
	}
	return names
}

func (t Table) String() string {
	return fmt.Sprintf("schema.Table{Name: %q, Fields: %d}", t.Name, len(t.Fields))
}
