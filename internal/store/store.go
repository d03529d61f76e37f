// Package store is the durable session record store. All sessions live as
// one JSON array under a single key of a kv.Area, mirroring how the browser
// client kept them in localStorage.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/iksnae/agent-chat/internal"
	"github.com/iksnae/agent-chat/internal/kv"
)

// DefaultKey is the key holding the session array
const DefaultKey = "chat_sessions"

// opTimeout bounds each storage round trip
const opTimeout = 5 * time.Second

// errNoArea marks a store running without storage, e.g. when the area
// failed to open. It is never logged.
var errNoArea = errors.New("no storage area")

// Store persists sessions best-effort: storage faults are logged and
// degrade to an empty list or a dropped write, never to a caller error.
type Store struct {
	area kv.Area
	key  string
	mu   sync.Mutex
}

// New creates a store over area. A nil area yields a store that lists
// nothing and drops writes. An empty key selects DefaultKey.
func New(area kv.Area, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{area: area, key: key}
}

// Key returns the storage key holding the session array
func (s *Store) Key() string {
	return s.key
}

// List returns every durable session, most recently created first.
// Records without messages are skipped.
func (s *Store) List() []*internal.Session {
	records, err := s.load()
	if err != nil {
		if !errors.Is(err, errNoArea) {
			internal.LogError("Error loading sessions: %v", err)
		}
		return []*internal.Session{}
	}
	sessions := make([]*internal.Session, 0, len(records))
	for _, r := range records {
		if len(r.Messages) == 0 {
			internal.LogDebug("Skipping stored session %s with no messages", r.ID)
			continue
		}
		sessions = append(sessions, r.toSession())
	}
	return sessions
}

// Get looks a session up by id
func (s *Store) Get(id string) (*internal.Session, bool) {
	for _, session := range s.List() {
		if session.ID == id {
			return session, true
		}
	}
	return nil, false
}

// Search returns sessions whose title contains query, ignoring case
func (s *Store) Search(query string) []*internal.Session {
	all := s.List()
	if query == "" {
		return all
	}
	matched := make([]*internal.Session, 0, len(all))
	for _, session := range all {
		if session.MatchesQuery(query) {
			matched = append(matched, session)
		}
	}
	return matched
}

// Save upserts session by id: an existing record is replaced where it
// stands, a new one is placed first. Sessions without messages are never
// written.
func (s *Store) Save(session *internal.Session) {
	if session.IsEmpty() {
		if session != nil {
			internal.LogDebug("Not persisting session %s: no messages yet", session.ID)
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, ok := s.loadForWrite()
	if !ok {
		return
	}

	updated := toRecord(session)
	replaced := false
	for i := range records {
		if records[i].ID == session.ID {
			records[i] = updated
			replaced = true
			break
		}
	}
	if !replaced {
		records = append([]record{updated}, records...)
	}

	s.write(records, "save")
}

// Delete removes the session with id. Unknown ids are ignored.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, ok := s.loadForWrite()
	if !ok {
		return
	}

	kept := make([]record, 0, len(records))
	for _, r := range records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(records) {
		return
	}

	s.write(kept, "delete")
}

// Replace swaps the record stored under oldID for session in one write,
// keeping its position. Used when a session's identity is rewritten.
func (s *Store) Replace(oldID string, session *internal.Session) {
	if session.IsEmpty() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, ok := s.loadForWrite()
	if !ok {
		return
	}

	updated := toRecord(session)
	out := make([]record, 0, len(records)+1)
	placed := false
	for _, r := range records {
		switch {
		case r.ID == oldID || r.ID == session.ID:
			if !placed {
				out = append(out, updated)
				placed = true
			}
		default:
			out = append(out, r)
		}
	}
	if !placed {
		out = append([]record{updated}, out...)
	}

	s.write(out, "replace")
}

// load reads and decodes the stored array
func (s *Store) load() ([]record, error) {
	if s.area == nil {
		return nil, errNoArea
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	raw, found, err := s.area.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	if !found || raw == "" {
		return []record{}, nil
	}

	var records []record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, &internal.StorageError{Backend: s.area.Backend(), Op: "decode", Err: err}
	}
	return records, nil
}

// loadForWrite keeps the raw records (empty ones included) so a write never
// discards data it did not mean to touch. An undecodable value is replaced.
func (s *Store) loadForWrite() ([]record, bool) {
	records, err := s.load()
	var storageErr *internal.StorageError
	switch {
	case err == nil:
		return records, true
	case errors.As(err, &storageErr) && storageErr.Op == "decode":
		internal.LogWarn("Stored sessions are unreadable, starting a fresh list: %v", err)
		return []record{}, true
	default:
		if !errors.Is(err, errNoArea) {
			internal.LogError("Error loading sessions: %v", err)
		}
		return nil, false
	}
}

func (s *Store) write(records []record, op string) {
	data, err := json.Marshal(records)
	if err != nil {
		internal.LogError("Error encoding sessions: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := s.area.Set(ctx, s.key, string(data)); err != nil {
		internal.LogError("Error during session %s: %v", op, err)
	}
}
