package delta

import "github.com/solidcoredata/tablechain/table"

// StrippedUpdate is an update reduced to sparse form: only the non-key
// field indices where old != new are kept, alongside their old (needed
// for conflict detection at replay) and new values.
type StrippedUpdate struct {
	Index []int
	Old   []string
	New   []string
}

// Stripped is a delta shrunk for wire emission: delete values are
// discarded and updates are sparse. It is produced only from the final
// consolidated delta of a patch — never from a delta that is still going
// to be merged.
type Stripped struct {
	Table  string
	Fields []string

	Inserts map[table.Key]table.Row
	Deletes map[table.Key]bool // true == present; values are not retained
	Updates map[table.Key]StrippedUpdate
}

// Strip reduces d to its sparse, wire-ready form.
func Strip(d *Delta) *Stripped {
	s := &Stripped{
		Table:   d.Table,
		Fields:  d.Fields,
		Inserts: make(map[table.Key]table.Row, len(d.Inserts)),
		Deletes: make(map[table.Key]bool, len(d.Deletes)),
		Updates: make(map[table.Key]StrippedUpdate, len(d.Updates)),
	}
	for k, v := range d.Inserts {
		s.Inserts[k] = v
	}
	for k := range d.Deletes {
		s.Deletes[k] = true
	}
	for k, u := range d.Updates {
		s.Updates[k] = stripUpdate(u)
	}
	return s
}

func stripUpdate(u Update) StrippedUpdate {
	var su StrippedUpdate
	n := len(u.New)
	if len(u.Old) > n {
		n = len(u.Old)
	}
	for i := 0; i < n; i++ {
		var oldV, newV string
		oldPresent := i < len(u.Old)
		newPresent := i < len(u.New)
		if oldPresent {
			oldV = u.Old[i]
		}
		if newPresent {
			newV = u.New[i]
		}
		if oldPresent && newPresent && oldV == newV {
			continue
		}
		su.Index = append(su.Index, i)
		su.Old = append(su.Old, oldV)
		su.New = append(su.New, newV)
	}
	return su
}

// Strip on an already-Stripped delta is the identity (copy), which is
// what makes Strip(Strip(d)) == Strip(d).
func (s *Stripped) Strip() *Stripped {
	out := &Stripped{
		Table:   s.Table,
		Fields:  s.Fields,
		Inserts: make(map[table.Key]table.Row, len(s.Inserts)),
		Deletes: make(map[table.Key]bool, len(s.Deletes)),
		Updates: make(map[table.Key]StrippedUpdate, len(s.Updates)),
	}
	for k, v := range s.Inserts {
		out.Inserts[k] = v
	}
	for k, v := range s.Deletes {
		out.Deletes[k] = v
	}
	for k, u := range s.Updates {
		out.Updates[k] = u
	}
	return out
}

// IsEmpty reports whether the stripped delta carries no changes.
func (s *Stripped) IsEmpty() bool {
	return s == nil || (len(s.Inserts) == 0 && len(s.Deletes) == 0 && len(s.Updates) == 0)
}
