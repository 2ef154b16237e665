// Package normalize turns raw utterances into lowercase lemmatized tokens.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"golang.org/x/text/unicode/norm"
)

// Lemmatizer reduces an inflected word to its dictionary form.
type Lemmatizer interface {
	Lemma(word string) string
}

var (
	// splits "don't" into "do n't" and "can't" into "ca n't"
	negationRe = regexp.MustCompile(`([\p{L}\p{N}])n't\b`)
	// splits clitics such as 's 're 've 'll 'd 'm off the preceding word
	cliticRe = regexp.MustCompile(`([\p{L}\p{N}])('(?:s|re|ve|ll|d|m))\b`)
	tokenRe  = regexp.MustCompile(`n't|'(?:s|re|ve|ll|d|m)\b|[\p{L}\p{N}_]+(?:[.\-][\p{L}\p{N}_]+)*|[^\s\p{L}\p{N}_]`)
)

// Normalizer tokenizes and lemmatizes text. It is safe for concurrent use.
type Normalizer struct {
	lemmatizer Lemmatizer
}

// New returns a Normalizer backed by lem.
func New(lem Lemmatizer) *Normalizer {
	return &Normalizer{lemmatizer: lem}
}

// NewEnglish returns a Normalizer using the bundled English dictionary.
func NewEnglish() (*Normalizer, error) {
	lem, err := golem.New(en.New())
	if err != nil {
		return nil, err
	}
	return New(lem), nil
}

// CleanText applies NFKC, folds typographic apostrophes and drops control characters.
func CleanText(text string) string {
	s := norm.NFKC.String(text)
	s = strings.NewReplacer("’", "'", "‘", "'").Replace(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// Tokenize splits text into word and punctuation tokens, separating English contractions.
func Tokenize(text string) []string {
	s := CleanText(text)
	s = negationRe.ReplaceAllString(s, "$1 n't")
	s = cliticRe.ReplaceAllString(s, "$1 $2")
	return tokenRe.FindAllString(s, -1)
}

// Normalize returns the lowercase lemmatized tokens of text.
func (n *Normalizer) Normalize(text string) []string {
	tokens := Tokenize(text)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, n.lemma(strings.ToLower(tok)))
	}
	return out
}

// NormalizeString is Join(Normalize(text)).
func (n *Normalizer) NormalizeString(text string) string {
	return Join(n.Normalize(text))
}

func (n *Normalizer) lemma(word string) string {
	if n.lemmatizer == nil {
		return word
	}
	lemma := strings.ToLower(n.lemmatizer.Lemma(word))
	if lemma == "" {
		return word
	}
	return lemma
}

// Join re-joins tokens with single spaces.
func Join(tokens []string) string {
	return strings.Join(tokens, " ")
}
