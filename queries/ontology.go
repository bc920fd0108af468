package queries

import (
	"fmt"
)

var ontologyClassTemplate = newTemplate("ontologyClass", `
SELECT ?uri ?superClass
WHERE {
    BIND (URI("{{.Class}}") as ?uri)
    ?uri rdfs:subClassOf ?superClass
}
`)

var superclassesTemplate = newTemplate("superclasses", `
SELECT ?uri ?superClass
WHERE {
    ?uri rdfs:subClassOf ?superClass
    {{inFilter "uri" .Classes}}
}
`)

// OntologyClass lists the direct superclasses of one class.
func (l *Library) OntologyClass(class string) (string, error) {
	if err := ValidateIRI(class); err != nil {
		return "", err
	}
	return render(ontologyClassTemplate, l.data("Class", class))
}

// Superclasses lists the direct superclasses of each given class.
func (l *Library) Superclasses(classes []string) (string, error) {
	if len(classes) == 0 {
		return "", fmt.Errorf("%w: no classes given", ErrInvalidIRI)
	}
	if err := validateIRIs(classes); err != nil {
		return "", err
	}
	return render(superclassesTemplate, l.data("Classes", classes))
}
