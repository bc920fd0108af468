package results

// State is a state of an entity, with its period bounds and representations.
type State struct {
	URI             string              `json:"uri"`
	Type            string              `json:"type"`
	Start           string              `json:"start"`
	End             string              `json:"end"`
	Period          string              `json:"period"`
	Relations       []string            `json:"relations"`
	Representations []map[string]string `json:"representations"`
}

// MapStates groups state rows by stateUri, in order of first occurrence.
// Later rows fill in period values and add representations.
func MapStates(bs *BindingSet) (*OrderedMap[*State], error) {
	states := newOrderedMap[*State]()
	if bs == nil {
		return states, nil
	}
	if err := bs.requireVars("stateUri", "stateType"); err != nil {
		return nil, err
	}
	for _, row := range bs.Rows {
		uri, ok := value(row, "stateUri")
		if !ok {
			continue
		}
		state, ok := states.Get(uri)
		if !ok {
			stateType, _ := value(row, "stateType")
			state = &State{
				URI:             uri,
				Type:            stateType,
				Relations:       make([]string, 0),
				Representations: make([]map[string]string, 0),
			}
			states.Set(uri, state)
		}
		if period, ok := value(row, "inPeriod"); ok {
			state.Period = period
		}
		if end, ok := value(row, "ends"); ok {
			state.End = end
		}
		if start, ok := value(row, "starts"); ok {
			state.Start = start
		}
		repType, okType := value(row, "repType")
		repValue, okValue := value(row, "repValue")
		if okType && okValue {
			state.Representations = append(state.Representations, map[string]string{repType: repValue})
		}
	}
	return states, nil
}
