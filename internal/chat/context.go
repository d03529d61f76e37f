// Package chat owns the active conversation: the session lifecycle
// (create, load, reconcile, delete) and the turn protocol against the
// agent service.
package chat

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/iksnae/agent-chat/internal"
)

// State is the lifecycle state of the active session
type State int

const (
	// Uninitialized means no session is active; turns are refused
	Uninitialized State = iota
	// ActiveTransient is a session that has never been persisted
	ActiveTransient
	// ActiveDurable is a session backed by a stored record
	ActiveDurable
)

func (s State) String() string {
	switch s {
	case ActiveTransient:
		return "active (unsaved)"
	case ActiveDurable:
		return "active"
	default:
		return "uninitialized"
	}
}

// Context is the active session: its identity, the in-memory transcript
// and the in-flight flag. All fields are guarded by mu except busy.
type Context struct {
	mu         sync.Mutex
	busy       atomic.Bool
	state      State
	generation uint64 // bumped whenever a different session is activated
	identity   internal.Identity
	messages   []internal.Message
	title      string
	createdAt  time.Time
	updatedAt  time.Time
}

// NewContext returns an uninitialized context
func NewContext() *Context {
	return &Context{}
}

// State returns the lifecycle state
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Identity returns the identity used for turns
func (c *Context) Identity() internal.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity
}

// SessionID returns the active session id, empty when uninitialized
func (c *Context) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity.SessionID
}

// Messages returns a copy of the transcript
func (c *Context) Messages() []internal.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]internal.Message(nil), c.messages...)
}

// Title returns the session title, or the default title before the first turn
func (c *Context) Title() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.title == "" {
		return internal.DefaultTitle
	}
	return c.title
}

// Busy reports whether a turn is in flight
func (c *Context) Busy() bool {
	return c.busy.Load()
}

// Snapshot returns the active session as a record, or nil when uninitialized
func (c *Context) Snapshot() *internal.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Uninitialized {
		return nil
	}
	return c.snapshotLocked()
}

func (c *Context) snapshotLocked() *internal.Session {
	title := c.title
	if title == "" {
		title = internal.DefaultTitle
	}
	return &internal.Session{
		ID:        c.identity.SessionID,
		UserID:    c.identity.UserID,
		Title:     title,
		Messages:  append([]internal.Message(nil), c.messages...),
		CreatedAt: c.createdAt,
		UpdatedAt: c.updatedAt,
	}
}

// activateNew makes a fresh, never-persisted session active
func (c *Context) activateNew(identity internal.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.state = ActiveTransient
	c.identity = identity
	c.messages = nil
	c.title = ""
	c.createdAt = time.Time{}
	c.updatedAt = time.Time{}
}

// activateStored makes a stored session active under identity
func (c *Context) activateStored(identity internal.Identity, s *internal.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.state = ActiveDurable
	c.identity = identity
	c.messages = append([]internal.Message(nil), s.Messages...)
	c.title = s.Title
	c.createdAt = s.CreatedAt
	c.updatedAt = s.UpdatedAt
}

func (c *Context) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.state = Uninitialized
	c.identity = internal.Identity{}
	c.messages = nil
	c.title = ""
	c.createdAt = time.Time{}
	c.updatedAt = time.Time{}
}

// tryBegin claims the in-flight flag; false means a turn is already pending
func (c *Context) tryBegin() bool {
	return c.busy.CompareAndSwap(false, true)
}

func (c *Context) end() {
	c.busy.Store(false)
}

// turn is the state captured when a turn starts
type turn struct {
	generation uint64
	persisted  bool
	record     *internal.Session
}

// beginTurn appends the user message and captures what the turn needs.
// ok is false when no session is active.
func (c *Context) beginTurn(msg internal.Message) (t turn, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Uninitialized {
		return turn{}, false
	}
	c.messages = append(c.messages, msg)
	rec := c.snapshotLocked()
	rec.Title = c.title
	return turn{generation: c.generation, persisted: c.state == ActiveDurable, record: rec}, true
}

// finishTurn appends reply to the session the turn started on and returns
// its record. The context is only updated, and active is only true, when
// that session is still the active one.
func (c *Context) finishTurn(t turn, reply internal.Message, now time.Time) (rec *internal.Session, active bool) {
	rec = t.record
	rec.Messages = append(rec.Messages, reply)
	if !t.persisted {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	// a stored session without any user message still carries the placeholder
	if rec.Title == "" || rec.Title == internal.DefaultTitle {
		rec.Title = internal.GenerateTitle(rec.Messages)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != t.generation || c.state == Uninitialized {
		return rec, false
	}
	c.messages = append([]internal.Message(nil), rec.Messages...)
	c.createdAt = rec.CreatedAt
	c.updatedAt = rec.UpdatedAt
	c.title = rec.Title
	c.state = ActiveDurable
	return rec, true
}
