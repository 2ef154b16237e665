// Package vectorize maps normalized text to TF-IDF feature vectors.
package vectorize

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
)

// DefaultMaxFeatures caps the vocabulary size when none is configured.
const DefaultMaxFeatures = 5000

// ErrEmptyVocabulary is returned by Fit when no document yields a usable term.
var ErrEmptyVocabulary = errors.New("empty vocabulary; documents contain only stop words or single characters")

// two or more word characters, Unicode aware
var termRe = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// TFIDF is a fitted term-frequency / inverse-document-frequency vectorizer.
// After Fit (or Unmarshal) it is read-only and safe for concurrent Transform calls.
type TFIDF struct {
	MaxFeatures int
	StopWords   bool

	terms []string
	index map[string]int
	idf   []float64
}

// New returns an unfitted vectorizer with English stop words enabled.
func New(maxFeatures int) *TFIDF {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}
	return &TFIDF{MaxFeatures: maxFeatures, StopWords: true}
}

// Analyze lowercases doc and returns its terms in order, stop words removed.
func (v *TFIDF) Analyze(doc string) []string {
	raw := termRe.FindAllString(strings.ToLower(doc), -1)
	if !v.StopWords {
		return raw
	}
	out := raw[:0]
	for _, t := range raw {
		if !IsStopWord(t) {
			out = append(out, t)
		}
	}
	return out
}

// Fit learns the vocabulary and idf weights from docs.
func (v *TFIDF) Fit(docs []string) error {
	termCounts := make(map[string]int)
	docFreq := make(map[string]int)

	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, term := range v.Analyze(doc) {
			termCounts[term]++
			if !seen[term] {
				seen[term] = true
				docFreq[term]++
			}
		}
	}
	if len(termCounts) == 0 {
		return ErrEmptyVocabulary
	}

	terms := make([]string, 0, len(termCounts))
	for term := range termCounts {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	limit := v.MaxFeatures
	if limit <= 0 {
		limit = DefaultMaxFeatures
	}
	if len(terms) > limit {
		// most frequent first, alphabetical among ties
		sort.SliceStable(terms, func(i, j int) bool {
			return termCounts[terms[i]] > termCounts[terms[j]]
		})
		terms = terms[:limit]
		sort.Strings(terms)
	}

	n := float64(len(docs))
	idf := make([]float64, len(terms))
	index := make(map[string]int, len(terms))
	for i, term := range terms {
		index[term] = i
		idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	v.terms = terms
	v.index = index
	v.idf = idf
	return nil
}

// Transform returns the L2-normalized TF-IDF vector of doc. Terms outside the
// vocabulary are ignored; no overlap yields the zero vector.
func (v *TFIDF) Transform(doc string) []float64 {
	vec := make([]float64, len(v.terms))
	for _, term := range v.Analyze(doc) {
		if i, ok := v.index[term]; ok {
			vec[i]++
		}
	}

	var norm float64
	for i := range vec {
		if vec[i] == 0 {
			continue
		}
		vec[i] *= v.idf[i]
		norm += vec[i] * vec[i]
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

// Dim is the length of every vector produced by Transform.
func (v *TFIDF) Dim() int {
	return len(v.terms)
}

// Terms returns the fitted vocabulary in column order.
func (v *TFIDF) Terms() []string {
	return v.terms
}

type tfidfJSON struct {
	MaxFeatures int       `json:"maxFeatures"`
	StopWords   bool      `json:"stopWords"`
	Terms       []string  `json:"terms"`
	IDF         []float64 `json:"idf"`
}

func (v *TFIDF) MarshalJSON() ([]byte, error) {
	return json.Marshal(tfidfJSON{
		MaxFeatures: v.MaxFeatures,
		StopWords:   v.StopWords,
		Terms:       v.terms,
		IDF:         v.idf,
	})
}

func (v *TFIDF) UnmarshalJSON(data []byte) error {
	var raw tfidfJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Terms) != len(raw.IDF) {
		return fmt.Errorf("vectorizer has %d terms but %d idf weights", len(raw.Terms), len(raw.IDF))
	}
	index := make(map[string]int, len(raw.Terms))
	for i, term := range raw.Terms {
		if _, dup := index[term]; dup {
			return fmt.Errorf("duplicate vocabulary term %q", term)
		}
		index[term] = i
	}
	v.MaxFeatures = raw.MaxFeatures
	v.StopWords = raw.StopWords
	v.terms = raw.Terms
	v.idf = raw.IDF
	v.index = index
	return nil
}
