package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/iksnae/agent-chat/internal"
)

// Document is the shape written by the json and yaml exporters
type Document struct {
	Session  DocumentHeader     `json:"session" yaml:"session"`
	Messages []internal.Message `json:"messages" yaml:"messages"`
}

// DocumentHeader carries the session metadata of a Document
type DocumentHeader struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updated_at"`
}

// NewDocument builds the export document for session
func NewDocument(session *internal.Session) Document {
	messages := session.Messages
	if messages == nil {
		messages = []internal.Message{}
	}
	return Document{
		Session: DocumentHeader{
			ID:        session.ID,
			Title:     session.Title,
			CreatedAt: session.CreatedAt,
			UpdatedAt: session.UpdatedAt,
		},
		Messages: messages,
	}
}

// ToSession converts the document back into a session. The owning user is
// not exported, so the result resolves as unbound.
func (d Document) ToSession() *internal.Session {
	return &internal.Session{
		ID:        d.Session.ID,
		Title:     d.Session.Title,
		Messages:  d.Messages,
		CreatedAt: d.Session.CreatedAt,
		UpdatedAt: d.Session.UpdatedAt,
	}
}

// JSONExporter exports sessions in JSON format (pretty-printed)
type JSONExporter struct{}

// Export exports a session to JSON format
func (e *JSONExporter) Export(session *internal.Session, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(NewDocument(session))
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}

// ParseJSON reads a document written by JSONExporter
func ParseJSON(r io.Reader) (*internal.Session, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode export: %w", err)
	}
	if doc.Session.ID == "" {
		return nil, fmt.Errorf("export has no session id")
	}
	session := doc.ToSession()
	if session.Title == "" {
		session.Title = internal.GenerateTitle(session.Messages)
	}
	return session, nil
}
