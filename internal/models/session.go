package models

import "time"

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one entry of the append-only conversation history.
type Message struct {
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Class     string    `json:"class"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewMessage stamps a message and derives its rendered class from the sender.
func NewMessage(sender Sender, text string) Message {
	class := "bot-message"
	if sender == SenderUser {
		class = "user-message"
	}
	return Message{
		Sender:    sender,
		Text:      text,
		Class:     class,
		CreatedAt: time.Now().UTC(),
	}
}

// Session represents one chat conversation
type Session struct {
	ID        string    `json:"id"`
	State     State     `json:"state"`
	Facts     UserFacts `json:"facts"`
	Control   Control   `json:"control"`
	History   []Message `json:"history"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Append adds messages to the history and refreshes UpdatedAt.
func (s *Session) Append(msgs ...Message) {
	s.History = append(s.History, msgs...)
	s.UpdatedAt = time.Now().UTC()
}

// RecentHistory returns at most limit trailing messages; limit <= 0 returns everything.
func (s *Session) RecentHistory(limit int) []Message {
	if limit <= 0 || len(s.History) <= limit {
		return s.History
	}
	return s.History[len(s.History)-limit:]
}

// IsExpired checks if the session has been idle longer than ttl
func (s *Session) IsExpired(ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return time.Since(s.UpdatedAt) > ttl
}
