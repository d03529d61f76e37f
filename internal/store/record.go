package store

import (
	"time"

	"github.com/iksnae/agent-chat/internal"
)

// record is the on-disk shape of a session: timestamps are ISO-8601 strings
// so the stored array stays readable and tolerant of hand edits.
type record struct {
	ID        string             `json:"id"`
	UserID    string             `json:"userId,omitempty"`
	Title     string             `json:"title"`
	Messages  []internal.Message `json:"messages"`
	CreatedAt string             `json:"createdAt"`
	UpdatedAt string             `json:"updatedAt"`
}

func toRecord(s *internal.Session) record {
	return record{
		ID:        s.ID,
		UserID:    s.UserID,
		Title:     s.Title,
		Messages:  s.Messages,
		CreatedAt: s.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: s.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (r record) toSession() *internal.Session {
	title := r.Title
	if title == "" {
		title = internal.GenerateTitle(r.Messages)
	}
	return &internal.Session{
		ID:        r.ID,
		UserID:    r.UserID,
		Title:     title,
		Messages:  r.Messages,
		CreatedAt: parseTimestamp(r.CreatedAt),
		UpdatedAt: parseTimestamp(r.UpdatedAt),
	}
}

// parseTimestamp accepts RFC 3339 with or without fractional seconds.
// Unparseable values become the zero time rather than failing the list.
func parseTimestamp(ts string) time.Time {
	if ts == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		internal.LogDebug("Unparseable timestamp %q: %v", ts, err)
		return time.Time{}
	}
	return t
}
