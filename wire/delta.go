package wire

import (
	"sort"

	"github.com/solidcoredata/tablechain/delta"
	"github.com/solidcoredata/tablechain/table"
)

func sortedKeys[V any](m map[table.Key]V) []table.Key {
	out := make([]table.Key, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// EncodeDeltaSet canonically encodes a dense per-table delta set, as
// stored inside a Block. tableOrder fixes the table sequence to the
// configuration's declared order, never map iteration order.
func EncodeDeltaSet(w *Writer, tableOrder []string, deltas map[string]*delta.Delta) {
	present := make([]string, 0, len(deltas))
	for _, name := range tableOrder {
		if _, ok := deltas[name]; ok {
			present = append(present, name)
		}
	}
	w.WriteUvarint(uint64(len(present)))
	for _, name := range present {
		d := deltas[name]
		w.WriteString(d.Table)
		w.WriteStrings(d.Fields)
		writeInserts(w, d.Inserts)
		writeDeletesFull(w, d.Deletes)
		writeUpdatesFull(w, d.Updates)
	}
}

func writeInserts(w *Writer, m map[table.Key]table.Row) {
	keys := sortedKeys(m)
	w.WriteUvarint(uint64(len(keys)))
	for _, k := range keys {
		w.WriteString(string(k))
		w.WriteStrings(m[k])
	}
}

func writeDeletesFull(w *Writer, m map[table.Key]table.Row) {
	keys := sortedKeys(m)
	w.WriteUvarint(uint64(len(keys)))
	for _, k := range keys {
		w.WriteString(string(k))
		w.WriteStrings(m[k])
	}
}

func writeUpdatesFull(w *Writer, m map[table.Key]delta.Update) {
	keys := sortedKeys(m)
	w.WriteUvarint(uint64(len(keys)))
	for _, k := range keys {
		u := m[k]
		w.WriteString(string(k))
		w.WriteStrings(u.Old)
		w.WriteStrings(u.New)
	}
}

// DecodeDeltaSet is EncodeDeltaSet's inverse.
func DecodeDeltaSet(r *Reader) (map[string]*delta.Delta, error) {
	n, err := r.ReadUvarint()
	if err != nil {
		return nil, err
	}
	out := make(map[string]*delta.Delta, n)
	for i := uint64(0); i < n; i++ {
		name, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		fields, err := r.ReadStrings()
		if err != nil {
			return nil, err
		}
		d := delta.New(name, fields)

		insN, err := r.ReadUvarint()
		if err != nil {
			return nil, err
		}
		for j := uint64(0); j < insN; j++ {
			k, row, err := readKeyRow(r)
			if err != nil {
				return nil, err
			}
			d.Inserts[k] = row
		}

		delN, err := r.ReadUvarint()
		if err != nil {
			return nil, err
		}
		for j := uint64(0); j < delN; j++ {
			k, row, err := readKeyRow(r)
			if err != nil {
				return nil, err
			}
			d.Deletes[k] = row
		}

		updN, err := r.ReadUvarint()
		if err != nil {
			return nil, err
		}
		for j := uint64(0); j < updN; j++ {
			keyStr, err := r.ReadString()
			if err != nil {
				return nil, err
			}
			oldV, err := r.ReadStrings()
			if err != nil {
				return nil, err
			}
			newV, err := r.ReadStrings()
			if err != nil {
				return nil, err
			}
			d.Updates[table.Key(keyStr)] = delta.Update{Old: oldV, New: newV}
		}

		out[name] = d
	}
	return out, nil
}

func readKeyRow(r *Reader) (table.Key, table.Row, error) {
	keyStr, err := r.ReadString()
	if err != nil {
		return "", nil, err
	}
	row, err := r.ReadStrings()
	if err != nil {
		return "", nil, err
	}
	return table.Key(keyStr), table.Row(row), nil
}

// EncodeStrippedSet canonically encodes a patch's sparse delta payload.
func EncodeStrippedSet(w *Writer, tableOrder []string, deltas map[string]*delta.Stripped) {
	present := make([]string, 0, len(deltas))
	for _, name := range tableOrder {
		if _, ok := deltas[name]; ok {
			present = append(present, name)
		}
	}
	w.WriteUvarint(uint64(len(present)))
	for _, name := range present {
		d := deltas[name]
		w.WriteString(d.Table)
		w.WriteStrings(d.Fields)

		insKeys := sortedKeys(d.Inserts)
		w.WriteUvarint(uint64(len(insKeys)))
		for _, k := range insKeys {
			w.WriteString(string(k))
			w.WriteStrings(d.Inserts[k])
		}

		delKeys := sortedKeys(d.Deletes)
		w.WriteUvarint(uint64(len(delKeys)))
		for _, k := range delKeys {
			w.WriteString(string(k))
		}

		updKeys := sortedKeys(d.Updates)
		w.WriteUvarint(uint64(len(updKeys)))
		for _, k := range updKeys {
			u := d.Updates[k]
			w.WriteString(string(k))
			w.WriteUvarint(uint64(len(u.Index)))
			for _, idx := range u.Index {
				w.WriteUvarint(uint64(idx))
			}
			w.WriteStrings(u.Old)
			w.WriteStrings(u.New)
		}
	}
}

// DecodeStrippedSet is EncodeStrippedSet's inverse.
func DecodeStrippedSet(r *Reader) (map[string]*delta.Stripped, error) {
	n, err := r.ReadUvarint()
	if err != nil {
		return nil, err
	}
	out := make(map[string]*delta.Stripped, n)
	for i := uint64(0); i < n; i++ {
		name, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		fields, err := r.ReadStrings()
		if err != nil {
			return nil, err
		}
		s := &delta.Stripped{
			Table:   name,
			Fields:  fields,
			Inserts: make(map[table.Key]table.Row),
			Deletes: make(map[table.Key]bool),
			Updates: make(map[table.Key]delta.StrippedUpdate),
		}

		insN, err := r.ReadUvarint()
		if err != nil {
			return nil, err
		}
		for j := uint64(0); j < insN; j++ {
			k, row, err := readKeyRow(r)
			if err != nil {
				return nil, err
			}
			s.Inserts[k] = row
		}

		delN, err := r.ReadUvarint()
		if err != nil {
			return nil, err
		}
		for j := uint64(0); j < delN; j++ {
			keyStr, err := r.ReadString()
			if err != nil {
				return nil, err
			}
			s.Deletes[table.Key(keyStr)] = true
		}

		updN, err := r.ReadUvarint()
		if err != nil {
			return nil, err
		}
		for j := uint64(0); j < updN; j++ {
			keyStr, err := r.ReadString()
			if err != nil {
				return nil, err
			}
			idxN, err := r.ReadUvarint()
			if err != nil {
				return nil, err
			}
			idx := make([]int, idxN)
			for k := range idx {
				v, err := r.ReadUvarint()
				if err != nil {
					return nil, err
				}
				idx[k] = int(v)
			}
			oldV, err := r.ReadStrings()
			if err != nil {
				return nil, err
			}
			newV, err := r.ReadStrings()
			if err != nil {
				return nil, err
			}
			s.Updates[table.Key(keyStr)] = delta.StrippedUpdate{Index: idx, Old: oldV, New: newV}
		}

		out[name] = s
	}
	return out, nil
}
