package queries

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"text/template"

	"github.com/knakk/rdf"
)

var (
	// ErrInvalidIRI is returned for identifiers that are not absolute IRIs or
	// that could break out of an IRI reference in a query.
	ErrInvalidIRI = errors.New("invalid IRI")
	// ErrInvalidLiteral is returned for literal values outside the accepted form.
	ErrInvalidLiteral = errors.New("invalid literal")
)

// characters that may not appear inside <...> or URI("...")
const forbiddenIRIChars = "<>\"{}|^`\\ \t\r\n"

var uprnRegex = regexp.MustCompile(`^[0-9A-Za-z_-]+$`)

// ValidateIRI checks that value is an absolute IRI safe to splice into a query.
func ValidateIRI(value string) error {
	if value == "" {
		return fmt.Errorf("%w: empty", ErrInvalidIRI)
	}
	if strings.ContainsAny(value, forbiddenIRIChars) {
		return fmt.Errorf("%w: %q contains forbidden characters", ErrInvalidIRI, value)
	}
	if _, err := rdf.NewIRI(value); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidIRI, value, err)
	}
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" {
		return fmt.Errorf("%w: %q is not absolute", ErrInvalidIRI, value)
	}
	return nil
}

// validateIRIs checks every value, reporting the first failure.
func validateIRIs(values []string) error {
	for _, v := range values {
		if err := ValidateIRI(v); err != nil {
			return err
		}
	}
	return nil
}

// literal renders an escaped plain string literal.
func literal(value string) (string, error) {
	lit, err := rdf.NewLiteral(value)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidLiteral, err)
	}
	return lit.Serialize(rdf.NTriples), nil
}

// inFilter renders FILTER (?v IN (<a>, <b>)), or nothing for an empty list.
func inFilter(variable string, iris []string) string {
	if len(iris) == 0 {
		return ""
	}
	refs := make([]string, len(iris))
	for i, iri := range iris {
		refs[i] = "<" + iri + ">"
	}
	return fmt.Sprintf("FILTER (?%s IN (%s))", variable, strings.Join(refs, ", "))
}

var templateFuncs = template.FuncMap{
	"inFilter": inFilter,
}

// newTemplate parses a query template. Every template is headed by the
// vocabulary's prefix block.
func newTemplate(name string, text string) *template.Template {
	return template.Must(template.New(name).Funcs(templateFuncs).Parse("{{.Prefixes}}" + text))
}

func render(tmpl *template.Template, data map[string]any) (string, error) {
	var query bytes.Buffer
	if err := tmpl.Execute(&query, data); err != nil {
		return "", fmt.Errorf("failed rendering query %s: %w", tmpl.Name(), err)
	}
	return query.String(), nil
}
