// Package ontology answers class hierarchy lookups, either from Turtle files
// held in memory or from the triplestore.
package ontology

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"paralog-backend/base"
	"paralog-backend/queries"
	"paralog-backend/results"

	"github.com/deiu/rdf2go"
)

var rdfsSubClassOf = mustExpand("rdfs:subClassOf")

var resultVars = []string{"uri", "superClass"}

// Source lists direct superclasses as a binding set with the variables uri
// and superClass, one row per pair.
type Source interface {
	Superclasses(ctx context.Context, classes []string, headers map[string]string) (*results.BindingSet, error)
}

// Graph is an in-memory ontology.
type Graph struct {
	graph *rdf2go.Graph
}

// Load parses the given Turtle files into one graph.
func Load(files ...string) (*Graph, error) {
	graph := rdf2go.NewGraph("")
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		if err := base.ParseGraphInto(graph, data); err != nil {
			return nil, fmt.Errorf("failed parsing ontology %s: %w", file, err)
		}
		slog.Debug("loaded ontology file", "file", file, "triples", graph.Len())
	}
	slog.Info("loaded ontology", "files", files, "triples", graph.Len())
	return &Graph{graph: graph}, nil
}

// NewGraph wraps an already populated graph.
func NewGraph(graph *rdf2go.Graph) *Graph {
	return &Graph{graph: graph}
}

// Superclasses implements Source. Class order follows the arguments.
func (g *Graph) Superclasses(ctx context.Context, classes []string, headers map[string]string) (*results.BindingSet, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("%w: no classes given", queries.ErrInvalidIRI)
	}
	bs := &results.BindingSet{Vars: resultVars}
	subClassOf := rdf2go.NewResource(rdfsSubClassOf)
	seen := map[string]bool{}
	for _, class := range classes {
		if err := queries.ValidateIRI(class); err != nil {
			return nil, err
		}
		if seen[class] {
			continue
		}
		seen[class] = true
		for _, triple := range g.graph.All(rdf2go.NewResource(class), subClassOf, nil) {
			bs.Rows = append(bs.Rows, map[string]results.Term{
				"uri":        {Type: "uri", Value: class},
				"superClass": toTerm(triple.Object),
			})
		}
	}
	return bs, nil
}

func toTerm(t rdf2go.Term) results.Term {
	switch v := t.(type) {
	case *rdf2go.Resource:
		return results.Term{Type: "uri", Value: v.RawValue()}
	case *rdf2go.BlankNode:
		return results.Term{Type: "bnode", Value: v.RawValue()}
	case *rdf2go.Literal:
		term := results.Term{Type: "literal", Value: v.RawValue(), Lang: v.Language}
		if v.Datatype != nil {
			term.DataType = v.Datatype.RawValue()
		}
		return term
	default:
		return results.Term{Type: "literal", Value: t.RawValue()}
	}
}

// Querier runs SELECT queries against the triplestore.
type Querier interface {
	Query(ctx context.Context, query string, headers map[string]string) (*results.BindingSet, error)
}

// Remote answers lookups with SPARQL against the triplestore.
type Remote struct {
	querier Querier
	library *queries.Library
}

// NewRemote builds a triplestore backed Source.
func NewRemote(querier Querier, library *queries.Library) *Remote {
	return &Remote{querier: querier, library: library}
}

// Superclasses implements Source.
func (r *Remote) Superclasses(ctx context.Context, classes []string, headers map[string]string) (*results.BindingSet, error) {
	var query string
	var err error
	if len(classes) == 1 {
		query, err = r.library.OntologyClass(classes[0])
	} else {
		query, err = r.library.Superclasses(classes)
	}
	if err != nil {
		return nil, err
	}
	return r.querier.Query(ctx, query, headers)
}

func mustExpand(curie string) string {
	iri, err := queries.DefaultVocabulary().Expand(curie)
	if err != nil {
		panic(err)
	}
	return iri
}
