package session

import (
	"context"
	"sync"
	"time"

	"careerbot/internal/common/logger"
	"careerbot/internal/common/metrics"
	"careerbot/internal/common/observability"
	"careerbot/internal/dialogue/statemachine"
	"careerbot/internal/models"

	"github.com/google/uuid"
)

// Dialogue is the state machine the service drives.
type Dialogue interface {
	Step(ctx context.Context, turn statemachine.Turn) (statemachine.Outcome, error)
	SelectStage(state models.State, facts models.UserFacts, stage models.Stage) (statemachine.Outcome, error)
	SubmitUndergraduate(state models.State, facts models.UserFacts, major, year string) (statemachine.Outcome, error)
	SubmitPostgraduate(state models.State, facts models.UserFacts, field string) (statemachine.Outcome, error)
}

// Reply is what one host interaction produced.
type Reply struct {
	Session  *models.Session               `json:"session"`
	Messages []models.Message              `json:"messages"`
	Intent   string                        `json:"intent,omitempty"`
	Results  []models.ClassificationResult `json:"results,omitempty"`
}

type Service struct {
	store        Store
	dialogue     Dialogue
	historyLimit int
	obs          *observability.Observability
	logger       logger.Logger

	locksMu sync.Mutex
	locks   map[string]*sessionLock
}

// sessionLock is held in Service.locks only while some call is using it.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// Option configures a Service.
type Option func(*Service)

// WithHistoryLimit caps the history returned with each session; the stored
// history is never truncated.
func WithHistoryLimit(limit int) Option {
	return func(s *Service) { s.historyLimit = limit }
}

func WithObservability(obs *observability.Observability) Option {
	return func(s *Service) { s.obs = obs }
}

func NewService(store Store, dialogue Dialogue, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		dialogue: dialogue,
		logger:   logger.Component(log, "session"),
		locks:    make(map[string]*sessionLock),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates a session in the initial state with the greeting already in
// its history.
func (s *Service) Start(ctx context.Context) (reply *Reply, err error) {
	defer s.observe(ctx, "start", time.Now(), &err)

	now := time.Now().UTC()
	sess := &models.Session{
		ID:        uuid.New().String(),
		State:     models.StateInitial,
		Facts:     models.UserFacts{},
		Control:   statemachine.ControlFor(models.StateInitial),
		CreatedAt: now,
		UpdatedAt: now,
	}
	greeting := botMessages(statemachine.Greeting)
	sess.Append(greeting...)

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	metrics.SessionsStarted.Inc()
	s.logger.Info("session started", map[string]interface{}{
		"sessionId": sess.ID,
		"backend":   s.store.Backend(),
	})
	return &Reply{Session: s.view(sess), Messages: greeting}, nil
}

// Get returns the session with its history capped to the configured limit.
func (s *Service) Get(ctx context.Context, id string) (sess *models.Session, err error) {
	defer s.observe(ctx, "get", time.Now(), &err)

	sess, err = s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

// End deletes the session.
func (s *Service) End(ctx context.Context, id string) (err error) {
	defer s.observe(ctx, "end", time.Now(), &err)

	unlock := s.lock(id)
	defer unlock()

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("session ended", map[string]interface{}{"sessionId": id})
	return nil
}

// Send runs one free-text turn.
func (s *Service) Send(ctx context.Context, id, text string) (*Reply, error) {
	return s.apply(ctx, "send", id, func(sess *models.Session) (statemachine.Outcome, error) {
		return s.dialogue.Step(ctx, statemachine.Turn{State: sess.State, Facts: sess.Facts, Input: text})
	})
}

func (s *Service) SelectStage(ctx context.Context, id string, stage models.Stage) (*Reply, error) {
	return s.apply(ctx, "select_stage", id, func(sess *models.Session) (statemachine.Outcome, error) {
		return s.dialogue.SelectStage(sess.State, sess.Facts, stage)
	})
}

func (s *Service) SubmitUndergraduate(ctx context.Context, id, major, year string) (*Reply, error) {
	return s.apply(ctx, "submit_undergraduate", id, func(sess *models.Session) (statemachine.Outcome, error) {
		return s.dialogue.SubmitUndergraduate(sess.State, sess.Facts, major, year)
	})
}

func (s *Service) SubmitPostgraduate(ctx context.Context, id, field string) (*Reply, error) {
	return s.apply(ctx, "submit_postgraduate", id, func(sess *models.Session) (statemachine.Outcome, error) {
		return s.dialogue.SubmitPostgraduate(sess.State, sess.Facts, field)
	})
}

// apply loads the session, runs fn under the session lock and persists the
// outcome. A failed step leaves the stored session untouched.
func (s *Service) apply(ctx context.Context, op, id string, fn func(*models.Session) (statemachine.Outcome, error)) (reply *Reply, err error) {
	defer s.observe(ctx, op, time.Now(), &err)

	unlock := s.lock(id)
	defer unlock()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	out, err := fn(sess)
	if err != nil {
		s.logger.Warn("turn rejected", map[string]interface{}{
			"sessionId": id,
			"op":        op,
			"state":     string(sess.State),
			"error":     err.Error(),
		})
		return nil, err
	}

	user := models.NewMessage(models.SenderUser, out.UserText)
	bot := append([]models.Message{models.NewMessage(models.SenderBot, out.Reply)}, botMessages(out.Followups)...)
	sess.Append(user)
	sess.Append(bot...)
	sess.State = out.State
	sess.Facts = out.Facts
	sess.Control = out.Control

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	if out.Reset {
		metrics.SessionResets.Inc()
	}

	s.logger.Debug("turn applied", map[string]interface{}{
		"sessionId": id,
		"op":        op,
		"state":     string(out.State),
		"intent":    out.Intent,
	})
	return &Reply{
		Session:  s.view(sess),
		Messages: bot,
		Intent:   out.Intent,
		Results:  out.Results,
	}, nil
}

// lock serializes turns on one session within this process. The entry is
// dropped once the last holder or waiter releases it, so sessions that expire
// or are never touched again leave nothing behind.
func (s *Service) lock(id string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sessionLock{}
		s.locks[id] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.locksMu.Unlock()
	}
}

func (s *Service) lockCount() int {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	return len(s.locks)
}

func (s *Service) view(sess *models.Session) *models.Session {
	out := *sess
	out.History = sess.RecentHistory(s.historyLimit)
	return &out
}

func (s *Service) observe(ctx context.Context, op string, start time.Time, err *error) {
	s.obs.Record(ctx, op, time.Since(start), *err)
}

func botMessages(texts []string) []models.Message {
	msgs := make([]models.Message, len(texts))
	for i, text := range texts {
		msgs[i] = models.NewMessage(models.SenderBot, text)
	}
	return msgs
}
