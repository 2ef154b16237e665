package httpadapter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "careerbot/internal/common/errors"
	"careerbot/internal/common/logger"
	"careerbot/internal/common/validation"
	"careerbot/internal/models"
	"careerbot/internal/session"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SessionService is the slice of the session service the HTTP surface uses.
type SessionService interface {
	Start(ctx context.Context) (*session.Reply, error)
	Get(ctx context.Context, id string) (*models.Session, error)
	End(ctx context.Context, id string) error
	Send(ctx context.Context, id, text string) (*session.Reply, error)
	SelectStage(ctx context.Context, id string, stage models.Stage) (*session.Reply, error)
	SubmitUndergraduate(ctx context.Context, id, major, year string) (*session.Reply, error)
	SubmitPostgraduate(ctx context.Context, id, field string) (*session.Reply, error)
}

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type Server struct {
	svc      SessionService
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
	checks   map[string]ReadinessCheck
	origins  []string
	maxBytes int64
}

// Option configures a Server.
type Option func(*Server)

// WithReadinessCheck adds a named check to /ready.
func WithReadinessCheck(name string, check ReadinessCheck) Option {
	return func(s *Server) { s.checks[name] = check }
}

// WithAllowedOrigins sets the CORS origins; empty means any.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) { s.origins = origins }
}

func NewServer(svc SessionService, log logger.Logger, opts ...Option) http.Handler {
	log = logger.Component(log, "http")
	s := &Server{
		svc:      svc,
		errors:   apperrors.NewErrorHandler(log),
		logger:   log,
		checks:   make(map[string]ReadinessCheck),
		maxBytes: 1 << 16,
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("GET /sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /sessions/{id}", s.handleEndSession)
	mux.HandleFunc("POST /sessions/{id}/messages", s.handleSendMessage)
	mux.HandleFunc("POST /sessions/{id}/stage", s.handleSelectStage)
	mux.HandleFunc("POST /sessions/{id}/undergraduate", s.handleUndergraduate)
	mux.HandleFunc("POST /sessions/{id}/postgraduate", s.handlePostgraduate)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	return chainMiddlewares(mux,
		withRecovery(s.logger),
		withLogging(s.logger),
		withCORS(s.origins),
	)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type sendMessageRequest struct {
	Text string `json:"text"`
}

type selectStageRequest struct {
	Stage string `json:"stage"`
}

type undergraduateRequest struct {
	Major string `json:"major"`
	Year  string `json:"year"`
}

type postgraduateRequest struct {
	Field string `json:"field"`
}

type sessionResponse struct {
	ID        string           `json:"id"`
	State     string           `json:"state"`
	Control   string           `json:"control"`
	Facts     models.UserFacts `json:"facts"`
	Stages    []models.Stage   `json:"stages,omitempty"`
	Years     []string         `json:"years,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

type messageResponse struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Class     string    `json:"class"`
	CreatedAt time.Time `json:"createdAt"`
}

type turnResponse struct {
	Session  sessionResponse   `json:"session"`
	Messages []messageResponse `json:"messages"`
	Intent   string            `json:"intent,omitempty"`
}

type getSessionResponse struct {
	Session sessionResponse   `json:"session"`
	History []messageResponse `json:"history"`
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	reply, err := s.svc.Start(r.Context())
	if err != nil {
		s.errors.HandleRequestError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTurnResponse(reply))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.errors.HandleRequestError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, getSessionResponse{
		Session: toSessionResponse(sess),
		History: toMessagesResponse(sess.History),
	})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.End(r.Context(), r.PathValue("id")); err != nil {
		s.errors.HandleRequestError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if !s.decode(w, r, sendMessageSchema, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.errors.HandleRequestError(w, r, apperrors.NewInvalidInputError("text is required"))
		return
	}
	s.respond(w, r)(s.svc.Send(r.Context(), r.PathValue("id"), req.Text))
}

func (s *Server) handleSelectStage(w http.ResponseWriter, r *http.Request) {
	var req selectStageRequest
	if !s.decode(w, r, selectStageSchema, &req) {
		return
	}
	s.respond(w, r)(s.svc.SelectStage(r.Context(), r.PathValue("id"), models.Stage(req.Stage)))
}

func (s *Server) handleUndergraduate(w http.ResponseWriter, r *http.Request) {
	var req undergraduateRequest
	if !s.decode(w, r, undergraduateSchema, &req) {
		return
	}
	s.respond(w, r)(s.svc.SubmitUndergraduate(r.Context(), r.PathValue("id"), req.Major, req.Year))
}

func (s *Server) handlePostgraduate(w http.ResponseWriter, r *http.Request) {
	var req postgraduateRequest
	if !s.decode(w, r, postgraduateSchema, &req) {
		return
	}
	s.respond(w, r)(s.svc.SubmitPostgraduate(r.Context(), r.PathValue("id"), req.Field))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			results[name] = err.Error()
			s.logger.Warn("readiness check failed", map[string]interface{}{
				"check": name,
				"error": err.Error(),
			})
			continue
		}
		results[name] = "ok"
	}
	writeJSON(w, status, map[string]interface{}{"ready": status == http.StatusOK, "checks": results})
}

// decode reads a bounded JSON body, checks it against schema and writes an
// INVALID_INPUT error on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, schema *validation.Validator, v interface{}) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBytes))
	if err != nil {
		s.errors.HandleRequestError(w, r, apperrors.NewInvalidInputError("unreadable body: "+err.Error()))
		return false
	}
	if err := schema.ValidateJSON(body).Err(); err != nil {
		s.errors.HandleRequestError(w, r, err)
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		s.errors.HandleRequestError(w, r, apperrors.NewInvalidInputError("invalid JSON body: "+err.Error()))
		return false
	}
	return true
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request) func(*session.Reply, error) {
	return func(reply *session.Reply, err error) {
		if err != nil {
			s.errors.HandleRequestError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toTurnResponse(reply))
	}
}

// ─────────────────────────────────────────────
// Conversation Helpers
// ─────────────────────────────────────────────

func toSessionResponse(sess *models.Session) sessionResponse {
	resp := sessionResponse{
		ID:        sess.ID,
		State:     string(sess.State),
		Control:   string(sess.Control),
		Facts:     sess.Facts,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
	}
	switch sess.Control {
	case models.ControlStageButtons:
		resp.Stages = models.Stages
	case models.ControlUndergraduateForm:
		resp.Years = models.YearsOfStudy
	}
	return resp
}

func toMessagesResponse(msgs []models.Message) []messageResponse {
	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageResponse{
			Sender:    string(m.Sender),
			Text:      m.Text,
			Class:     m.Class,
			CreatedAt: m.CreatedAt,
		})
	}
	return out
}

func toTurnResponse(reply *session.Reply) turnResponse {
	return turnResponse{
		Session:  toSessionResponse(reply.Session),
		Messages: toMessagesResponse(reply.Messages),
		Intent:   reply.Intent,
	}
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
