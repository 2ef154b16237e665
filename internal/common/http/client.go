// Package http is a small client for the careerbot HTTP API.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "careerbot/internal/common/errors"
)

// Session mirrors the session object returned by the API.
type Session struct {
	ID        string            `json:"id"`
	State     string            `json:"state"`
	Control   string            `json:"control"`
	Facts     map[string]string `json:"facts"`
	Stages    []string          `json:"stages,omitempty"`
	Years     []string          `json:"years,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

type Message struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Class     string    `json:"class"`
	CreatedAt time.Time `json:"createdAt"`
}

// Turn is the response to every conversational call.
type Turn struct {
	Session  Session   `json:"session"`
	Messages []Message `json:"messages"`
	Intent   string    `json:"intent,omitempty"`
}

// Texts returns the bot message texts in order.
func (t *Turn) Texts() []string {
	out := make([]string, 0, len(t.Messages))
	for _, m := range t.Messages {
		out = append(out, m.Text)
	}
	return out
}

type Transcript struct {
	Session Session   `json:"session"`
	History []Message `json:"history"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	backoff    time.Duration
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		backoff: 100 * time.Millisecond,
	}
}

// WithHTTPClient swaps the underlying client, e.g. for httptest servers.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	return c.httpClient.Do(req)
}

func (c *Client) StartSession(ctx context.Context) (*Turn, error) {
	var out Turn
	if err := c.call(ctx, http.MethodPost, "/sessions", nil, http.StatusCreated, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetSession(ctx context.Context, id string) (*Transcript, error) {
	var out Transcript
	if err := c.call(ctx, http.MethodGet, "/sessions/"+id, nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) EndSession(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/sessions/"+id, nil, http.StatusNoContent, nil)
}

func (c *Client) Send(ctx context.Context, id, text string) (*Turn, error) {
	return c.turn(ctx, id, "messages", map[string]string{"text": text})
}

func (c *Client) SelectStage(ctx context.Context, id, stage string) (*Turn, error) {
	return c.turn(ctx, id, "stage", map[string]string{"stage": stage})
}

func (c *Client) SubmitUndergraduate(ctx context.Context, id, major, year string) (*Turn, error) {
	return c.turn(ctx, id, "undergraduate", map[string]string{"major": major, "year": year})
}

func (c *Client) SubmitPostgraduate(ctx context.Context, id, field string) (*Turn, error) {
	return c.turn(ctx, id, "postgraduate", map[string]string{"field": field})
}

func (c *Client) turn(ctx context.Context, id, action string, body interface{}) (*Turn, error) {
	var out Turn
	if err := c.call(ctx, http.MethodPost, "/sessions/"+id+"/"+action, body, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// call performs one API request, retrying error codes the server marks as
// retryable. A non-expected status is returned as a *StandardError.
func (c *Client) call(ctx context.Context, method, path string, body interface{}, want int, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	delay := c.backoff
	for attempt := 0; ; attempt++ {
		err := c.once(ctx, method, path, payload, want, out)
		code := apperrors.CodeOf(err)
		if err == nil || attempt >= apperrors.GetRetryCount(code) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

func (c *Client) once(ctx context.Context, method, path string, payload []byte, want int, out interface{}) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.DoWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var body apperrors.ErrorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Code == "" {
		return apperrors.NewInternalError(fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}
	return &apperrors.StandardError{
		Code:      apperrors.ErrorCode(body.Code),
		Message:   body.Message,
		Details:   body.Details,
		Retryable: body.Retryable,
		Timestamp: time.Now().UTC(),
	}
}
