package models

// Fact keys recognized by the dialogue and response templates.
const (
	FactName   = "name"
	FactEmail  = "email"
	FactStage  = "stage"
	FactStream = "stream"
	FactMajor  = "major"
	FactYear   = "year"
	FactField  = "field"
)

// UserFacts accumulates what the user told us during a session.
type UserFacts map[string]string

// Get returns the stored value or def when the fact is absent.
func (f UserFacts) Get(key, def string) string {
	if v, ok := f[key]; ok {
		return v
	}
	return def
}

// Has reports whether the fact is present and non-empty.
func (f UserFacts) Has(key string) bool {
	return f[key] != ""
}

// Clone returns an independent copy; a nil receiver yields an empty map.
func (f UserFacts) Clone() UserFacts {
	out := make(UserFacts, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
