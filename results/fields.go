package results

import (
	"encoding/json"
	"math"
	"strconv"
)

// Kind is the JSON type a record field is served as.
type Kind int

const (
	Float Kind = iota + 1
	Int
)

// Fields maps record keys to the JSON type they are served as. Triplestore
// data often carries numbers as plain or xsd:string literals; Coerce turns
// those into numbers.
type Fields map[string]Kind

var (
	AssessmentFields = Fields{
		"numberOfAssessedItems": Int,
	}
	AssetSummaryFields = Fields{
		"lat":                     Float,
		"lon":                     Float,
		"dependentCount":          Int,
		"dependentCriticalitySum": Float,
		"partCount":               Int,
	}
	AssetTypeFields = Fields{
		"assetCount": Int,
	}
	DependencyFields = Fields{
		"criticalityRating": Float,
	}
	AssetFields = Fields{
		"lat":                     Float,
		"lon":                     Float,
		"dependentCount":          Int,
		"dependentCriticalitySum": Float,
	}
)

// Coerce converts the listed fields of every record in place. Values that do
// not parse as the wanted kind are left as they are.
func (f Fields) Coerce(records ...Record) {
	if len(f) == 0 {
		return
	}
	for _, record := range records {
		for key, kind := range f {
			v, ok := record[key]
			if !ok {
				continue
			}
			if n, ok := coerce(v, kind); ok {
				record[key] = n
			}
		}
	}
}

func coerce(v any, kind Kind) (any, bool) {
	var s string
	switch v := v.(type) {
	case string:
		s = v
	case json.Number:
		s = string(v)
	default:
		return nil, false
	}
	switch kind {
	case Int:
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		// decimal lexical forms of whole numbers, e.g. "3.0"
		if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) && !math.IsInf(f, 0) {
			return int64(f), true
		}
	case Float:
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f, true
		}
	}
	return nil, false
}
