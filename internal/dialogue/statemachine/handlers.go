package statemachine

import (
	"fmt"
	"regexp"
	"strings"

	"careerbot/internal/dialogue/resolve"
	"careerbot/internal/models"
)

const (
	defaultName  = resolve.DefaultName
	defaultMajor = resolve.DefaultMajor
	defaultYear  = resolve.DefaultYear
	defaultField = resolve.DefaultField
)

var (
	emailRe  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	myNameRe = regexp.MustCompile(`(?i)my name is`)
)

// turn is the working copy a handler reads and mutates.
type turn struct {
	state   models.State
	facts   models.UserFacts
	input   string
	lower   string
	intent  string
	results []models.ClassificationResult
}

func (t *turn) name() string {
	return t.facts.Get(models.FactName, defaultName)
}

// mentions reports whether the lower-cased input contains any of the keywords.
func (t *turn) mentions(keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(t.lower, k) {
			return true
		}
	}
	return false
}

type handler func(m *Machine, t *turn) (models.State, string)

func handlers() map[models.State]handler {
	return map[models.State]handler{
		models.StateInitial:                 handleInitial,
		models.StateAskingEmail:             handleAskingEmail,
		models.StateStageSelection:          handleStageSelection,
		models.StatePost10th:                handlePost10th,
		models.StatePost10thClarification:   handlePost10thClarification,
		models.StatePost10thGroupSelection:  handleGroupSelection,
		models.StatePost10thMPC:             handleStreamTopics,
		models.StatePost10thBiPC:            handleStreamTopics,
		models.StatePost10thCommerce:        handleStreamTopics,
		models.StatePost12th:                handlePost12th,
		models.StatePost12thStreamProvided:  handleStreamProvided,
		models.StateUndergraduate:           handleUndergraduate,
		models.StatePostgraduate:            handlePostgraduate,
		models.StatePostgraduateOptions:     handlePostgraduateOptions,
		models.StateAwaitingCourseEnjoyment: handleCourseEnjoyment,
		models.StateUndergraduateOptions:    handleUndergraduateOptions,
	}
}

// fallback answers from the intent catalog and keeps the state.
func (m *Machine) fallback(t *turn) (models.State, string) {
	reply, _ := m.responder.Respond(t.results, t.facts)
	return t.state, reply
}

func handleInitial(m *Machine, t *turn) (models.State, string) {
	var name string
	switch {
	case t.intent == models.UnknownIntent && len(strings.Fields(t.input)) <= 2:
		name = t.input
	case t.intent == "initial_name" || strings.Contains(t.lower, "name"):
		name = strings.TrimSpace(myNameRe.ReplaceAllString(t.input, ""))
	}
	if name == "" {
		return t.state, replyNameMissing
	}
	t.facts[models.FactName] = name
	return models.StateAskingEmail, fmt.Sprintf(replyNameAccepted, name)
}

func handleAskingEmail(m *Machine, t *turn) (models.State, string) {
	if !emailRe.MatchString(t.input) {
		return t.state, replyEmailInvalid
	}
	t.facts[models.FactEmail] = t.input
	return models.StateStageSelection, fmt.Sprintf(replyEmailAccepted, t.name(), t.input)
}

func handleStageSelection(m *Machine, t *turn) (models.State, string) {
	return t.state, replyUseStageButtons
}

func handlePost10th(m *Machine, t *turn) (models.State, string) {
	switch {
	case t.mentions("yes"):
		return models.StatePost10thGroupSelection, fmt.Sprintf(replyPost10thKnowsGroup, t.name())
	case t.mentions("no need", "don't need"):
		return models.StatePost10thClarification, fmt.Sprintf(replyPost10thNoNeed, t.name())
	case t.mentions("help", "decide"):
		return models.StatePost10thGroupSelection, fmt.Sprintf(replyPost10thHelp, t.name())
	}
	return m.fallback(t)
}

func handlePost10thClarification(m *Machine, t *turn) (models.State, string) {
	switch {
	case t.mentions("career"):
		return models.StatePost10thGroupSelection, replyClarifyCareers
	case t.mentions("group", "mpc", "bipc", "commerce"):
		return models.StatePost10thGroupSelection, replyClarifyGroups
	}
	return m.fallback(t)
}

var groupStates = []struct {
	keyword string
	stream  string
	state   models.State
}{
	{"mpc", resolve.StreamMPC, models.StatePost10thMPC},
	{"bipc", resolve.StreamBiPC, models.StatePost10thBiPC},
	{"commerce", resolve.StreamCommerce, models.StatePost10thCommerce},
}

func handleGroupSelection(m *Machine, t *turn) (models.State, string) {
	for _, g := range groupStates {
		if t.mentions(g.keyword) {
			t.facts[models.FactStream] = g.stream
			return g.state, fmt.Sprintf(replyGroupChosen, g.stream)
		}
	}
	return t.state, replyGroupMissing
}

// handleStreamTopics serves the three per-stream states after 10th.
func handleStreamTopics(m *Machine, t *turn) (models.State, string) {
	switch {
	case t.mentions("career"):
		career := m.responder.CareerPath(t.facts.Get(models.FactStream, resolve.DefaultStream))
		return t.state, fmt.Sprintf(replyStreamCareers, t.name(), career)
	case t.mentions("exam", "eapcet"):
		return t.state, fmt.Sprintf(replyStreamEAPCET, t.name())
	case t.mentions("polycet"):
		return t.state, fmt.Sprintf(replyStreamPOLYCET, t.name())
	}
	return m.fallback(t)
}

func handlePost12th(m *Machine, t *turn) (models.State, string) {
	if _, known := t.facts[models.FactStream]; known {
		return handleStreamProvided(m, t)
	}

	stream := strings.ToUpper(t.input)
	if _, ok := resolve.StreamCareerPaths[stream]; !ok {
		return t.state, replyStreamUnknown
	}
	t.facts[models.FactStream] = stream
	return models.StatePost12thStreamProvided, fmt.Sprintf(replyStreamAccepted, stream, m.responder.CareerPath(stream))
}

func handleStreamProvided(m *Machine, t *turn) (models.State, string) {
	if t.mentions("mpc", "bipc", "commerce") {
		return t.state, fmt.Sprintf(replyStreamMentioned, t.facts.Get(models.FactStream, resolve.DefaultStream))
	}
	return m.fallback(t)
}

// The form states take no free text; the host shows the form instead.
func handleUndergraduate(m *Machine, t *turn) (models.State, string) {
	return t.state, replyUseUndergraduateForm
}

func handlePostgraduate(m *Machine, t *turn) (models.State, string) {
	return t.state, replyUsePostgraduateForm
}

func handlePostgraduateOptions(m *Machine, t *turn) (models.State, string) {
	field := t.facts.Get(models.FactField, defaultField)
	switch {
	case t.mentions("career"):
		return t.state, fmt.Sprintf(replyPostgraduateCareer, field)
	case t.mentions("research"):
		return t.state, fmt.Sprintf(replyPostgraduateResearch, field)
	}
	return m.fallback(t)
}

// handleCourseEnjoyment checks the positive answer first, so "not enjoying"
// counts as enjoying.
func handleCourseEnjoyment(m *Machine, t *turn) (models.State, string) {
	major := t.facts.Get(models.FactMajor, defaultMajor)
	switch {
	case t.intent == "yes" || t.mentions("yes", "enjoying"):
		return models.StateUndergraduateOptions, fmt.Sprintf(replyEnjoyingCourse, t.name(), major)
	case t.intent == "no" || t.mentions("no", "not"):
		year := t.facts.Get(models.FactYear, defaultYear)
		return models.StateUndergraduateOptions, fmt.Sprintf(replyNotEnjoyingCourse, year, major)
	}
	return t.state, replyEnjoymentUnclear
}

func handleUndergraduateOptions(m *Machine, t *turn) (models.State, string) {
	major := t.facts.Get(models.FactMajor, defaultMajor)
	switch {
	case t.mentions("intern"):
		year := t.facts.Get(models.FactYear, defaultYear)
		return t.state, fmt.Sprintf(replyUndergraduateInternships, year, major, t.name())
	case t.mentions("job"):
		return t.state, fmt.Sprintf(replyUndergraduateJobs, t.name(), major)
	case t.mentions("further", "higher", "studies", "study", "master"):
		return t.state, fmt.Sprintf(replyUndergraduateStudies, major, m.responder.HigherStudy(major))
	}
	return m.fallback(t)
}
