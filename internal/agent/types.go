package agent

import (
	"strings"

	"github.com/iksnae/agent-chat/internal"
)

// RunRequest is one turn sent to the agent service
type RunRequest struct {
	UserID     string
	SessionID  string
	History    []internal.Message
	NewMessage string
}

// Part is a fragment of event content
type Part struct {
	Text string `json:"text,omitempty"`
}

// Content is the role-tagged payload carried by messages and events
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Event is one entry of the event list returned by /run
type Event struct {
	Author  string   `json:"author"`
	Content *Content `json:"content,omitempty"`
}

type runBody struct {
	AppName    string             `json:"app_name"`
	UserID     string             `json:"user_id"`
	SessionID  string             `json:"session_id"`
	History    []internal.Message `json:"history"`
	NewMessage Content            `json:"new_message"`
}

type createSessionBody struct {
	State map[string]any `json:"state"`
}

// ExtractReply joins the first text part of every event authored by author.
// Events from other authors (tools, sub-agents) and events without text are
// skipped. The result is empty when nothing matched.
func ExtractReply(events []Event, author string) string {
	var b strings.Builder
	for _, e := range events {
		if e.Author != author || e.Content == nil || len(e.Content.Parts) == 0 {
			continue
		}
		b.WriteString(e.Content.Parts[0].Text)
	}
	return b.String()
}
