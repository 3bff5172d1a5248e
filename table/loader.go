package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/solidcoredata/tablechain/coreerr"
	"github.com/solidcoredata/tablechain/schema"
)

// Load materializes s's CSV source into a Table.
//
// With s.Headers set, the header row must be a permutation of the
// declared field names; columns are reordered into the canonical
// primary-keys-first layout before being split into key/row tuples. With
// s.Headers unset, column order is assumed to already match s.Fields'
// declared order (not the Ordered order — the source is exactly what was
// declared).
//
// Duplicate primary-key tuples within the CSV fail with
// coreerr.DuplicateKey.
func Load(s schema.Table) (*Table, error) {
	f, err := os.Open(s.Source)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, coreerr.New(coreerr.NotFound, err)
		}
		return nil, coreerr.New(coreerr.Io, err)
	}
	defer f.Close()
	return LoadReader(s, f)
}

// LoadReader is Load's body, split out so tests can drive it from an
// in-memory reader instead of touching the filesystem.
func LoadReader(s schema.Table, r io.Reader) (*Table, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	keyCount := s.KeyCount()
	declaredNames := make([]string, len(s.Fields))
	for i, fld := range s.Fields {
		declaredNames[i] = fld.Name
	}

	// columnOrder[i] says: "source column i holds the value for
	// ordered-field columnOrder[i]". Defaults to identity (declared
	// order == ordered? not necessarily, see below).
	var columnOrder []int

	if s.Headers {
		header, err := cr.Read()
		if err != nil {
			if err == io.EOF {
				return New(s), nil
			}
			return nil, coreerr.New(coreerr.Io, err)
		}
		orderedNames := s.FieldNames()
		index := make(map[string]int, len(orderedNames))
		for i, n := range orderedNames {
			index[n] = i
		}
		if len(header) != len(orderedNames) {
			return nil, coreerr.Newf(coreerr.Config, "table %q: header has %d columns, schema declares %d", s.Name, len(header), len(orderedNames))
		}
		columnOrder = make([]int, len(header))
		seen := make(map[string]bool, len(header))
		for i, h := range header {
			pos, ok := index[h]
			if !ok {
				return nil, coreerr.Newf(coreerr.Config, "table %q: header column %q is not a declared field", s.Name, h)
			}
			if seen[h] {
				return nil, coreerr.Newf(coreerr.Config, "table %q: header column %q repeated", s.Name, h)
			}
			seen[h] = true
			columnOrder[i] = pos
		}
	} else {
		// Declared order maps 1:1 onto ordered order via name lookup.
		orderedNames := s.FieldNames()
		index := make(map[string]int, len(orderedNames))
		for i, n := range orderedNames {
			index[n] = i
		}
		columnOrder = make([]int, len(declaredNames))
		for i, n := range declaredNames {
			columnOrder[i] = index[n]
		}
	}

	tbl := New(s)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, coreerr.New(coreerr.Io, err)
		}
		if len(rec) != len(columnOrder) {
			return nil, coreerr.Newf(coreerr.Config, "table %q: row has %d columns, expected %d", s.Name, len(rec), len(columnOrder))
		}
		slot := make([]string, len(rec))
		for i, v := range rec {
			slot[columnOrder[i]] = v
		}
		keyTuple := slot[:keyCount]
		rowTuple := Row(append(Row(nil), slot[keyCount:]...))
		key := NewKey(keyTuple)
		if _, dup := tbl.Rows[key]; dup {
			return nil, coreerr.New(coreerr.DuplicateKey, fmt.Errorf("table %q: duplicate primary key %v", s.Name, keyTuple))
		}
		tbl.Set(key, rowTuple)
	}
	return tbl, nil
}
