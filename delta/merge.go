package delta

import (
	"sort"
	"strings"

	"github.com/solidcoredata/tablechain/coreerr"
	"github.com/solidcoredata/tablechain/table"
)

// Merge combines parent (the earlier delta) and current (the later
// delta) into a single delta expressed against the state that preceded
// parent. Both must share table name and field order.
//
// Merge dispatches each key in the union of parent/current to exactly one
// of the 15 rules below. Rules 5, 10, 11, 13 and 14b are logically
// impossible combinations and abort the whole merge with a Conflict
// error; the patch layer recovers from that by falling back to the full
// state payload.
func Merge(parent, current *Delta) (*Delta, error) {
	if parent.Table != current.Table {
		return nil, coreerr.Newf(coreerr.Config, "delta: cannot merge table %q with table %q", parent.Table, current.Table)
	}
	if !sameFields(parent.Fields, current.Fields) {
		return nil, coreerr.Newf(coreerr.Config, "delta: cannot merge table %q: field order mismatch", parent.Table)
	}

	result := New(parent.Table, parent.Fields)

	for _, k := range unionKeys(parent, current) {
		pIns, pInsOK := parent.Inserts[k]
		pDel, pDelOK := parent.Deletes[k]
		pUpd, pUpdOK := parent.Updates[k]
		cIns, cInsOK := current.Inserts[k]
		cDel, cDelOK := current.Deletes[k]
		cUpd, cUpdOK := current.Updates[k]

		switch {
		// --- parent has no entry for k ---
		case !pInsOK && !pDelOK && !pUpdOK && cInsOK:
			// Rule 1: — / insert(k,v) -> insert(k,v)
			result.Inserts[k] = cIns
		case !pInsOK && !pDelOK && !pUpdOK && cDelOK:
			// Rule 2: — / delete(k,v) -> delete(k,v)
			result.Deletes[k] = cDel
		case !pInsOK && !pDelOK && !pUpdOK && cUpdOK:
			// Rule 3: — / update(k,o->n) -> update(k,o->n)
			result.Updates[k] = cUpd

		// --- parent inserted k ---
		case pInsOK && !cInsOK && !cDelOK && !cUpdOK:
			// Rule 4: insert(k,v) / — -> insert(k,v)
			result.Inserts[k] = pIns
		case pInsOK && cInsOK:
			// Rule 5: insert(k,X) / insert(k,X) -> error
			return nil, keyConflict(parent.Table, k, "insert after insert")
		case pInsOK && cDelOK:
			// Rule 6: insert(k,X) / delete(k,X) -> omit
		case pInsOK && cUpdOK:
			// Rule 7: insert(k,v1) / update(k,X->v2) -> insert(k,v2)
			result.Inserts[k] = cUpd.New

		// --- parent deleted k ---
		case pDelOK && !cInsOK && !cDelOK && !cUpdOK:
			// Rule 8: delete(k,v) / — -> delete(k,v)
			result.Deletes[k] = pDel
		case pDelOK && cInsOK:
			if pDel.Equal(cIns) {
				// Rule 9a: delete(k,v) / insert(k,v) -> omit
			} else {
				// Rule 9b: delete(k,v1) / insert(k,v2), v1!=v2 -> update(k,v1->v2)
				result.Updates[k] = Update{Old: pDel, New: cIns}
			}
		case pDelOK && cDelOK:
			// Rule 10: delete(k,X) / delete(k,X) -> error
			return nil, keyConflict(parent.Table, k, "delete after delete")
		case pDelOK && cUpdOK:
			// Rule 11: delete(k,X) / update(k,X->X) -> error
			return nil, keyConflict(parent.Table, k, "update after delete")

		// --- parent updated k ---
		case pUpdOK && !cInsOK && !cDelOK && !cUpdOK:
			// Rule 12: update(k,o->n) / — -> update(k,o->n)
			result.Updates[k] = pUpd
		case pUpdOK && cInsOK:
			// Rule 13: update(k,o->n) / insert(k,X) -> error
			return nil, keyConflict(parent.Table, k, "insert after update")
		case pUpdOK && cDelOK:
			if pUpd.New.Equal(cDel) {
				// Rule 14a: update(k,o->n) / delete(k,n) -> delete(k,o)
				result.Deletes[k] = pUpd.Old
			} else {
				// Rule 14b: update(k,o->n) / delete(k,v), v!=n -> error
				return nil, keyConflict(parent.Table, k, "delete value does not match update's new value")
			}
		case pUpdOK && cUpdOK:
			// Rule 15: update(k,o->X) / update(k,X->n) -> update(k,o->n)
			result.Updates[k] = Update{Old: pUpd.Old, New: cUpd.New}
		}
	}

	return result, nil
}

func sameFields(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func unionKeys(a, b *Delta) []table.Key {
	seen := make(map[table.Key]bool, len(a.Inserts)+len(a.Deletes)+len(a.Updates)+len(b.Inserts)+len(b.Deletes)+len(b.Updates))
	for _, d := range [2]*Delta{a, b} {
		for k := range d.Inserts {
			seen[k] = true
		}
		for k := range d.Deletes {
			seen[k] = true
		}
		for k := range d.Updates {
			seen[k] = true
		}
	}
	out := make([]table.Key, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func keyConflict(tableName string, k table.Key, reason string) error {
	return coreerr.Conflictf(tableName, strings.Join(k.Split(), "/"), "%s", reason)
}
