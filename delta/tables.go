package delta

// MergeTables merges two blocks' per-table deltas pairwise: tables
// appearing in only one side pass through unchanged. parent is the
// earlier block's deltas, current the later one's.
func MergeTables(parent, current map[string]*Delta) (map[string]*Delta, error) {
	out := make(map[string]*Delta, len(parent)+len(current))
	for name, p := range parent {
		c, ok := current[name]
		if !ok {
			out[name] = p
			continue
		}
		merged, err := Merge(p, c)
		if err != nil {
			return nil, err
		}
		out[name] = merged
	}
	for name, c := range current {
		if _, ok := parent[name]; !ok {
			out[name] = c
		}
	}
	return out, nil
}

// StripTables strips every table in a consolidated delta set.
func StripTables(in map[string]*Delta) map[string]*Stripped {
	out := make(map[string]*Stripped, len(in))
	for name, d := range in {
		out[name] = Strip(d)
	}
	return out
}

