package internal

import (
	"strings"
	"time"
)

// Role identifies who authored a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Session represents a persisted conversation with the agent service
type Session struct {
	ID        string    `json:"id" yaml:"id"`
	UserID    string    `json:"userId,omitempty" yaml:"user_id,omitempty"`
	Title     string    `json:"title" yaml:"title"`
	Messages  []Message `json:"messages" yaml:"messages"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updated_at"`
}

// Message represents one conversational turn half
type Message struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// UserMessage builds a message authored by the user
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds a message authored by the assistant
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// Label returns the display label used by transcripts ("You" / "Assistant")
func (m Message) Label() string {
	if m.Role == RoleUser {
		return "You"
	}
	return "Assistant"
}

// Clone returns a deep copy of the session so callers can mutate it freely
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Messages = append([]Message(nil), s.Messages...)
	return &c
}

// IsEmpty reports whether the session has no messages yet
func (s *Session) IsEmpty() bool {
	return s == nil || len(s.Messages) == 0
}

// MatchesQuery reports whether the title contains query, ignoring case.
// An empty query matches every session.
func (s *Session) MatchesQuery(query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s.Title), strings.ToLower(query))
}
