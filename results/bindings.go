// Package results reshapes SPARQL JSON result sets into the records served
// by the API.
package results

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/knakk/sparql"
)

var (
	// ErrNoResults is returned when a single record was requested from an empty result set.
	ErrNoResults = errors.New("no results")
	// ErrMalformedResponse is returned when a result set cannot be parsed or
	// lacks variables a mapping depends on.
	ErrMalformedResponse = errors.New("malformed triplestore response")
)

const xsd = "http://www.w3.org/2001/XMLSchema#"

var numericDatatypes = map[string]bool{
	xsd + "integer":            true,
	xsd + "decimal":            true,
	xsd + "double":             true,
	xsd + "float":              true,
	xsd + "long":               true,
	xsd + "int":                true,
	xsd + "short":              true,
	xsd + "byte":               true,
	xsd + "nonNegativeInteger": true,
	xsd + "nonPositiveInteger": true,
	xsd + "positiveInteger":    true,
	xsd + "negativeInteger":    true,
	xsd + "unsignedLong":       true,
	xsd + "unsignedInt":        true,
	xsd + "unsignedShort":      true,
	xsd + "unsignedByte":       true,
}

// Term is one bound value of a result row.
type Term struct {
	Type     string
	Value    string
	Lang     string
	DataType string
}

// Native converts the term to the value placed in JSON output: numbers for
// numeric XSD literals, booleans for xsd:boolean and strings for everything else.
func (t Term) Native() any {
	switch {
	case numericDatatypes[t.DataType]:
		// lexical forms like NaN or .5 are valid XSD but not JSON numbers
		if _, err := json.Marshal(json.Number(t.Value)); err == nil {
			return json.Number(t.Value)
		}
	case t.DataType == xsd+"boolean":
		if b, err := strconv.ParseBool(t.Value); err == nil {
			return b
		}
	}
	return t.Value
}

// BindingSet is a parsed SELECT result: the ordered header variables and one
// row per solution. A variable missing from a row is unbound.
type BindingSet struct {
	Vars []string
	Rows []map[string]Term
}

// ParseJSON reads an application/sparql-results+json document.
func ParseJSON(r io.Reader) (*BindingSet, error) {
	res, err := sparql.ParseJSON(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return FromResults(res), nil
}

// ParseJSONBytes is ParseJSON over a byte slice.
func ParseJSONBytes(data []byte) (*BindingSet, error) {
	return ParseJSON(bytes.NewReader(data))
}

// FromResults copies a parsed sparql result into a BindingSet.
func FromResults(res *sparql.Results) *BindingSet {
	bs := &BindingSet{
		Vars: append([]string(nil), res.Head.Vars...),
		Rows: make([]map[string]Term, 0, len(res.Results.Bindings)),
	}
	for _, binding := range res.Results.Bindings {
		row := make(map[string]Term, len(binding))
		for name, value := range binding {
			row[name] = Term{
				Type:     value.Type,
				Value:    value.Value,
				Lang:     value.Lang,
				DataType: value.DataType,
			}
		}
		bs.Rows = append(bs.Rows, row)
	}
	return bs
}

// Len returns the number of rows.
func (bs *BindingSet) Len() int {
	if bs == nil {
		return 0
	}
	return len(bs.Rows)
}

// HasVar reports whether the header declares name.
func (bs *BindingSet) HasVar(name string) bool {
	for _, v := range bs.Vars {
		if v == name {
			return true
		}
	}
	return false
}

// requireVars fails with ErrMalformedResponse when a header variable is missing.
func (bs *BindingSet) requireVars(names ...string) error {
	for _, name := range names {
		if !bs.HasVar(name) {
			return fmt.Errorf("%w: variable %q missing from result header", ErrMalformedResponse, name)
		}
	}
	return nil
}

// value returns the lexical value of a bound variable, or "" when unbound.
func value(row map[string]Term, name string) (string, bool) {
	t, ok := row[name]
	return t.Value, ok
}
