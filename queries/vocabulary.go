package queries

import (
	"fmt"
	"strings"
)

// Prefix binds a SPARQL prefix name to a namespace IRI.
type Prefix struct {
	Name      string
	Namespace string
}

// Vocabulary is an immutable, ordered prefix table. Build it once and share
// the pointer.
type Vocabulary struct {
	index map[string]string
	block string
}

// NewVocabulary builds a vocabulary. Repeating a prefix with the same
// namespace is ignored; rebinding it to another namespace is an error.
func NewVocabulary(prefixes ...Prefix) (*Vocabulary, error) {
	v := &Vocabulary{index: make(map[string]string, len(prefixes))}
	var block strings.Builder
	for _, p := range prefixes {
		if err := ValidateIRI(p.Namespace); err != nil {
			return nil, fmt.Errorf("prefix %s: %w", p.Name, err)
		}
		if ns, ok := v.index[p.Name]; ok {
			if ns != p.Namespace {
				return nil, fmt.Errorf("prefix %s bound to both <%s> and <%s>", p.Name, ns, p.Namespace)
			}
			continue
		}
		v.index[p.Name] = p.Namespace
		fmt.Fprintf(&block, "PREFIX %s: <%s>\n", p.Name, p.Namespace)
	}
	v.block = block.String()
	return v, nil
}

// Expand turns a prefixed name like "ies:Asset" into a full IRI.
func (v *Vocabulary) Expand(curie string) (string, error) {
	prefix, local, found := strings.Cut(curie, ":")
	if !found {
		return "", fmt.Errorf("%q is not a prefixed name", curie)
	}
	ns, ok := v.index[prefix]
	if !ok {
		return "", fmt.Errorf("unknown prefix %q", prefix)
	}
	return ns + local, nil
}

// PrefixBlock renders the PREFIX declarations that head every query.
func (v *Vocabulary) PrefixBlock() string {
	return v.block
}

var defaultVocabulary = mustVocabulary(
	Prefix{"xsd", "http://www.w3.org/2001/XMLSchema#"},
	Prefix{"rdf", "http://www.w3.org/1999/02/22-rdf-syntax-ns#"},
	Prefix{"rdfs", "http://www.w3.org/2000/01/rdf-schema#"},
	Prefix{"owl", "http://www.w3.org/2002/07/owl#"},
	Prefix{"ies", "http://ies.data.gov.uk/ontology/ies4#"},
	Prefix{"telicent", "http://telicent.io/ontology/"},
	Prefix{"geoplace", "https://www.geoplace.co.uk/addresses-streets/location-data/the-uprn#"},
	Prefix{"data", "http://nationaldigitaltwin.gov.uk/data#"},
	Prefix{"qudt", "http://qudt.org/2.1/schema/qudt/"},
	Prefix{"ndt", "http://nationaldigitaltwin.gov.uk/ontology#"},
	Prefix{"iesuncertainty", "http://ies.data.gov.uk/ontology/ies_uncertainty_proposal/v2.0#"},
)

// DefaultVocabulary returns the IES vocabulary shared by all queries.
func DefaultVocabulary() *Vocabulary {
	return defaultVocabulary
}

func mustVocabulary(prefixes ...Prefix) *Vocabulary {
	v, err := NewVocabulary(prefixes...)
	if err != nil {
		panic(err)
	}
	return v
}
