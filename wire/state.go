package wire

import (
	"github.com/solidcoredata/tablechain/schema"
	"github.com/solidcoredata/tablechain/state"
	"github.com/solidcoredata/tablechain/table"
)

// EncodeState canonically encodes s, iterating tables in cfg's declared
// order, never map iteration order.
func EncodeState(w *Writer, cfg []schema.Table, s *state.State) {
	present := make([]schema.Table, 0, len(cfg))
	for _, t := range cfg {
		if _, ok := s.Tables[t.Name]; ok {
			present = append(present, t)
		}
	}
	w.WriteUvarint(uint64(len(present)))
	for _, t := range present {
		tbl := s.Tables[t.Name]
		w.WriteString(t.Name)
		keys := sortedKeys(tbl.Rows)
		w.WriteUvarint(uint64(len(keys)))
		for _, k := range keys {
			w.WriteString(string(k))
			w.WriteStrings(tbl.Rows[k])
		}
	}
}

// DecodeState is EncodeState's inverse. cfg supplies the schema for each
// table named on the wire; a table named on the wire but absent from cfg
// fails with coreerr.Corrupt.
func DecodeState(r *Reader, cfg []schema.Table) (*state.State, error) {
	byName := make(map[string]schema.Table, len(cfg))
	for _, t := range cfg {
		byName[t.Name] = t
	}

	n, err := r.ReadUvarint()
	if err != nil {
		return nil, err
	}
	s := state.New()
	for i := uint64(0); i < n; i++ {
		name, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		sch, ok := byName[name]
		if !ok {
			return nil, corruptf("wire: state references unconfigured table %q", name)
		}
		tbl := table.New(sch)
		rowN, err := r.ReadUvarint()
		if err != nil {
			return nil, err
		}
		for j := uint64(0); j < rowN; j++ {
			k, row, err := readKeyRow(r)
			if err != nil {
				return nil, err
			}
			tbl.Set(k, row)
		}
		s.Tables[name] = tbl
	}
	return s, nil
}
