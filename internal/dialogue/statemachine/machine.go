// Package statemachine drives the guided career conversation. Each turn maps
// (state, facts, input) to a new state, updated facts and one reply.
package statemachine

import (
	"context"
	"fmt"
	"strings"

	apperrors "careerbot/internal/common/errors"
	"careerbot/internal/common/logger"
	"careerbot/internal/common/metrics"
	"careerbot/internal/models"
)

// Classifier ranks intents for an utterance.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]models.ClassificationResult, error)
}

// Responder renders catalog replies and draws from the domain tables.
type Responder interface {
	Respond(results []models.ClassificationResult, facts models.UserFacts) (string, string)
	CareerPath(stream string) string
	HigherStudy(major string) string
}

// Turn is the input of one dialogue step.
type Turn struct {
	State models.State
	Facts models.UserFacts
	Input string
}

// Outcome is the result of one dialogue step. Facts is always a fresh map.
// UserText is what the history records as the user's message and Followups
// are extra bot lines the host shows after Reply.
type Outcome struct {
	State     models.State                  `json:"state"`
	Facts     models.UserFacts              `json:"facts"`
	Control   models.Control                `json:"control"`
	Reply     string                        `json:"reply"`
	Intent    string                        `json:"intent,omitempty"`
	Results   []models.ClassificationResult `json:"results,omitempty"`
	UserText  string                        `json:"userText"`
	Followups []string                      `json:"followups,omitempty"`
	Reset     bool                          `json:"reset"`
}

type Machine struct {
	classifier Classifier
	responder  Responder
	handlers   map[models.State]handler
	logger     logger.Logger
}

func New(classifier Classifier, responder Responder, log logger.Logger) *Machine {
	return &Machine{
		classifier: classifier,
		responder:  responder,
		handlers:   handlers(),
		logger:     logger.Component(log, "statemachine"),
	}
}

// ControlFor reports which host control a state shows.
func ControlFor(state models.State) models.Control {
	switch state {
	case models.StateStageSelection:
		return models.ControlStageButtons
	case models.StateUndergraduate:
		return models.ControlUndergraduateForm
	case models.StatePostgraduate:
		return models.ControlPostgraduateForm
	default:
		return models.ControlNone
	}
}

// IsFarewell reports whether input ends the conversation.
func IsFarewell(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "bye", "goodbye", "exit", "quit":
		return true
	}
	return false
}

// Step processes one free-text message.
func (m *Machine) Step(ctx context.Context, in Turn) (Outcome, error) {
	input := strings.TrimSpace(in.Input)
	if input == "" {
		return Outcome{}, apperrors.NewInvalidInputError("message must not be empty")
	}
	h, ok := m.handlers[in.State]
	if !ok {
		return Outcome{}, apperrors.NewInvalidInputError(fmt.Sprintf("unknown state %q", in.State))
	}
	metrics.TurnsProcessed.WithLabelValues(string(in.State)).Inc()

	if IsFarewell(input) {
		m.logger.Info("conversation reset", map[string]interface{}{
			"state": string(in.State),
		})
		return m.finish(in.State, Outcome{
			State:     models.StateInitial,
			Facts:     models.UserFacts{},
			Reply:     replyGoodbye,
			UserText:  input,
			Followups: append([]string(nil), Greeting...),
			Reset:     true,
		}), nil
	}

	results, err := m.classifier.Classify(ctx, input)
	if err != nil {
		return Outcome{}, err
	}

	t := &turn{
		state:   in.State,
		facts:   in.Facts.Clone(),
		input:   input,
		lower:   strings.ToLower(input),
		intent:  models.TopIntent(results),
		results: results,
	}
	next, reply := h(m, t)

	return m.finish(in.State, Outcome{
		State:    next,
		Facts:    t.facts,
		Reply:    reply,
		Intent:   t.intent,
		Results:  results,
		UserText: input,
	}), nil
}

// SelectStage applies a stage button press.
func (m *Machine) SelectStage(state models.State, facts models.UserFacts, stage models.Stage) (Outcome, error) {
	if state != models.StateStageSelection {
		return Outcome{}, apperrors.NewInvalidControlError(string(models.ControlStageButtons), string(state))
	}

	out := Outcome{Facts: facts.Clone(), UserText: string(stage)}
	name := out.Facts.Get(models.FactName, defaultName)
	switch stage {
	case models.StagePost10th:
		out.State, out.Reply = models.StatePost10th, fmt.Sprintf(replyStagePost10th, name)
	case models.StagePost12th:
		out.State, out.Reply = models.StatePost12th, replyStagePost12th
	case models.StageUndergraduate:
		out.State, out.Reply = models.StateUndergraduate, replyStageUndergraduate
	case models.StagePostgraduate:
		out.State, out.Reply = models.StatePostgraduate, replyStagePostgraduate
	default:
		return Outcome{}, apperrors.NewInvalidInputError(fmt.Sprintf("unknown stage %q", stage))
	}
	out.Facts[models.FactStage] = string(stage)
	return m.finish(state, out), nil
}

// SubmitUndergraduate applies the major and year form.
func (m *Machine) SubmitUndergraduate(state models.State, facts models.UserFacts, major, year string) (Outcome, error) {
	if state != models.StateUndergraduate {
		return Outcome{}, apperrors.NewInvalidControlError(string(models.ControlUndergraduateForm), string(state))
	}
	major = strings.TrimSpace(major)
	if major == "" {
		return Outcome{}, apperrors.NewInvalidInputError("major must not be empty")
	}
	if !validYear(year) {
		return Outcome{}, apperrors.NewInvalidInputError(fmt.Sprintf("year must be one of %s", strings.Join(models.YearsOfStudy, ", ")))
	}

	out := Outcome{
		State:    models.StateAwaitingCourseEnjoyment,
		Facts:    facts.Clone(),
		UserText: major + ", " + year,
	}
	out.Facts[models.FactMajor] = major
	out.Facts[models.FactYear] = year
	out.Reply = fmt.Sprintf(replyUndergraduateForm, out.Facts.Get(models.FactName, defaultName), year, major)
	return m.finish(state, out), nil
}

// SubmitPostgraduate applies the field-of-study form.
func (m *Machine) SubmitPostgraduate(state models.State, facts models.UserFacts, field string) (Outcome, error) {
	if state != models.StatePostgraduate {
		return Outcome{}, apperrors.NewInvalidControlError(string(models.ControlPostgraduateForm), string(state))
	}
	field = strings.TrimSpace(field)
	if field == "" {
		return Outcome{}, apperrors.NewInvalidInputError("field must not be empty")
	}

	out := Outcome{
		State:    models.StatePostgraduateOptions,
		Facts:    facts.Clone(),
		UserText: field,
		Reply:    fmt.Sprintf(replyPostgraduateForm, field),
	}
	out.Facts[models.FactField] = field
	return m.finish(state, out), nil
}

// finish stamps the control, adds the stage prompt on entry to stage selection
// and records the transition.
func (m *Machine) finish(from models.State, out Outcome) Outcome {
	out.Control = ControlFor(out.State)
	if out.State == models.StateStageSelection && from != models.StateStageSelection {
		out.Followups = append(out.Followups, fmt.Sprintf(replyStagePrompt, out.Facts.Get(models.FactName, defaultName)))
	}
	if from != out.State {
		metrics.StateTransitions.WithLabelValues(string(from), string(out.State)).Inc()
		m.logger.Debug("state transition", map[string]interface{}{
			"from":   string(from),
			"to":     string(out.State),
			"intent": out.Intent,
		})
	}
	return out
}

func validYear(year string) bool {
	for _, y := range models.YearsOfStudy {
		if y == year {
			return true
		}
	}
	return false
}
