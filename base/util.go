package base

import (
	"bytes"
	"regexp"

	"github.com/deiu/rdf2go"
)

var fixBooleanRegex = regexp.MustCompile(`(true|false)(\s*)]`)

// dirty fix for buggy boolean parsing in rdf2go
func FixBooleansInRDF(data []byte) []byte {
	return fixBooleanRegex.ReplaceAll(data, []byte("${1} ; ]"))
}

// ParseGraphInto adds the turtle document's triples to an existing graph.
func ParseGraphInto(graph *rdf2go.Graph, data []byte) error {
	return graph.Parse(bytes.NewReader(FixBooleansInRDF(data)), "text/turtle")
}
