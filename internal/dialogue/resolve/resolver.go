// Package resolve turns classifier output into a rendered bot reply.
package resolve

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"careerbot/internal/models"
)

// Rand is the random source used for template and table choices.
type Rand interface {
	Intn(n int) int
}

// IntentCatalog looks up intent records by tag.
type IntentCatalog interface {
	Lookup(tag string) (models.Intent, bool)
}

// LockedRand guards a math/rand source so one resolver can serve concurrent sessions.
type LockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewLockedRand(seed int64) *LockedRand {
	return &LockedRand{rnd: rand.New(rand.NewSource(seed))}
}

func (r *LockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Intn(n)
}

type Resolver struct {
	catalog IntentCatalog
	rng     Rand
}

// New returns a Resolver. A nil rng seeds a LockedRand from the clock.
func New(catalog IntentCatalog, rng Rand) *Resolver {
	if rng == nil {
		rng = NewLockedRand(time.Now().UnixNano())
	}
	return &Resolver{catalog: catalog, rng: rng}
}

// Respond picks a reply for the top-ranked result and fills its placeholders.
// It returns the rendered text and the tag it answered for.
func (r *Resolver) Respond(results []models.ClassificationResult, facts models.UserFacts) (string, string) {
	tag := models.TopIntent(results)

	var template string
	switch intent, ok := r.catalog.Lookup(tag); {
	case tag == models.UnknownIntent:
		template = UnknownIntentReply
	case !ok || len(intent.Responses) == 0:
		template = MissingIntentReply
	default:
		template = r.Pick(intent.Responses)
	}

	return r.Substitute(template, facts), tag
}

// Substitute fills domain placeholders first, then the generic fact placeholders.
func (r *Resolver) Substitute(template string, facts models.UserFacts) string {
	stream := facts.Get(models.FactStream, DefaultStream)
	major := facts.Get(models.FactMajor, DefaultMajor)

	result := template
	if strings.Contains(result, "{career_path}") {
		result = strings.ReplaceAll(result, "{career_path}", r.CareerPath(stream))
	}
	if strings.Contains(result, "{higher_study}") {
		result = strings.ReplaceAll(result, "{higher_study}", r.HigherStudy(major))
	}
	if strings.Contains(result, "{field}") {
		result = strings.ReplaceAll(result, "{field}", facts.Get(models.FactField, DefaultField))
	}

	// applied one after another, so a fact value may itself carry a later placeholder
	for _, p := range []struct{ token, value string }{
		{"{name}", facts.Get(models.FactName, DefaultName)},
		{"{stage}", facts.Get(models.FactStage, DefaultStage)},
		{"{stream}", stream},
		{"{major}", major},
		{"{year}", facts.Get(models.FactYear, DefaultYear)},
	} {
		result = strings.ReplaceAll(result, p.token, p.value)
	}
	return result
}

// CareerPath draws a career for the stream, or the generic filler for unknown streams.
func (r *Resolver) CareerPath(stream string) string {
	options, ok := StreamCareerPaths[strings.ToUpper(stream)]
	if !ok {
		return DefaultCareerPath
	}
	return r.Pick(options)
}

// HigherStudy draws a further-study option for the major.
func (r *Resolver) HigherStudy(major string) string {
	options, ok := MajorHigherStudy[strings.ToLower(major)]
	if !ok {
		return DefaultHigherStudy
	}
	return r.Pick(options)
}

// Pick returns a uniformly random element; options must be non-empty.
func (r *Resolver) Pick(options []string) string {
	if len(options) == 1 {
		return options[0]
	}
	return options[r.rng.Intn(len(options))]
}
