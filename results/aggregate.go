package results

import "fmt"

// Group holds, for one key, every other variable's values in row order.
type Group = OrderedMap[[]any]

// Aggregation maps each distinct key value to its Group, in order of first occurrence.
type Aggregation = OrderedMap[*Group]

// Aggregate groups rows by the value of key. For every other header variable
// each row sharing the key contributes one entry: the native value, or nil
// when the variable is unbound in that row. All sequences of a group
// therefore have the same length. Rows that leave key unbound are skipped.
func Aggregate(bs *BindingSet, key string) (*Aggregation, error) {
	agg := newOrderedMap[*Group]()
	if bs == nil {
		return agg, nil
	}
	if !bs.HasVar(key) {
		return nil, fmt.Errorf("%w: aggregation variable %q missing from result header", ErrMalformedResponse, key)
	}
	for _, row := range bs.Rows {
		k, ok := value(row, key)
		if !ok {
			continue
		}
		group, ok := agg.Get(k)
		if !ok {
			group = newOrderedMap[[]any]()
			for _, v := range bs.Vars {
				if v != key {
					group.Set(v, []any{})
				}
			}
			agg.Set(k, group)
		}
		for _, v := range bs.Vars {
			if v == key {
				continue
			}
			values, _ := group.Get(v)
			if t, bound := row[v]; bound {
				values = append(values, t.Native())
			} else {
				values = append(values, nil)
			}
			group.Set(v, values)
		}
	}
	return agg, nil
}
