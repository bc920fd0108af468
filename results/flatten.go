package results

// Record is one flattened row: variable name to native value. Unbound
// variables are absent.
type Record map[string]any

// Flatten turns every row into a Record, preserving row order.
func Flatten(bs *BindingSet) []Record {
	records := make([]Record, 0, bs.Len())
	if bs == nil {
		return records
	}
	for _, row := range bs.Rows {
		record := make(Record, len(row))
		for _, v := range bs.Vars {
			if t, ok := row[v]; ok {
				record[v] = t.Native()
			}
		}
		records = append(records, record)
	}
	return records
}

// First flattens only the first row. It fails with ErrNoResults on an empty set.
func First(bs *BindingSet) (Record, error) {
	if bs.Len() == 0 {
		return nil, ErrNoResults
	}
	return Flatten(&BindingSet{Vars: bs.Vars, Rows: bs.Rows[:1]})[0], nil
}

// FirstValue returns the first header variable of the first row, if bound.
func FirstValue(bs *BindingSet) (Term, bool) {
	if bs.Len() == 0 || len(bs.Vars) == 0 {
		return Term{}, false
	}
	t, ok := bs.Rows[0][bs.Vars[0]]
	return t, ok
}
