// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package state holds the State snapshot: every configured table's value
// at one instant.
package state

import (
	"sort"

	"github.com/solidcoredata/tablechain/schema"
	"github.com/solidcoredata/tablechain/table"
)

// State maps table name to its materialized value. The invariant that
// the schema matches the active configuration for every table present
// is maintained by construction: Compute always threads the same
// schema.Table that Tables[name].Schema carries.
type State struct {
	Tables map[string]*table.Table
}

// New returns an empty State.
func New() *State {
	return &State{Tables: make(map[string]*table.Table)}
}

// Compute loads every table in tables from its CSV source and assembles
// the resulting State.
func Compute(tables []schema.Table) (*State, error) {
	s := New()
	for _, t := range tables {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		loaded, err := table.Load(t)
		if err != nil {
			return nil, err
		}
		s.Tables[t.Name] = loaded
	}
	return s, nil
}

// TableNames returns the names of the tables present in s, sorted. The
// wire codec and block diffing do not use it: they iterate tables in the
// configuration's declared order.
func (s *State) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for n := range s.Tables {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Get returns the table by name, or absent/not-found semantics for
// callers computing against a prior State that lacked it.
func (s *State) Get(name string) (*table.Table, bool) {
	if s == nil {
		return nil, false
	}
	t, ok := s.Tables[name]
	return t, ok
}
