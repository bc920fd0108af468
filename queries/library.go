// Package queries renders the SPARQL read queries served by the API.
//
// Every caller-supplied identifier is validated as an absolute IRI before it
// is placed into a query; literal values are escaped. Rendering has no side
// effects.
package queries

// Library renders queries against one vocabulary.
type Library struct {
	vocabulary *Vocabulary
}

// NewLibrary returns a library using v, or the default IES vocabulary when v is nil.
func NewLibrary(v *Vocabulary) *Library {
	if v == nil {
		v = DefaultVocabulary()
	}
	return &Library{vocabulary: v}
}

// Vocabulary returns the prefix table used by the library.
func (l *Library) Vocabulary() *Vocabulary {
	return l.vocabulary
}

func (l *Library) data(kv ...any) map[string]any {
	data := map[string]any{"Prefixes": l.vocabulary.PrefixBlock()}
	for i := 0; i+1 < len(kv); i += 2 {
		data[kv[i].(string)] = kv[i+1]
	}
	return data
}

// Ping is the cheapest query the store can answer.
func (l *Library) Ping() string {
	return "ASK {}"
}
