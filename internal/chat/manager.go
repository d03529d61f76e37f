package chat

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/iksnae/agent-chat/internal"
	"github.com/iksnae/agent-chat/internal/agent"
	"github.com/iksnae/agent-chat/internal/metrics"
)

// AgentService is the part of the agent client the chat layer needs
type AgentService interface {
	CreateSession(ctx context.Context, userID, sessionID string) error
	Run(ctx context.Context, req agent.RunRequest) (string, error)
}

// SessionStore is the durable record store
type SessionStore interface {
	Get(id string) (*internal.Session, bool)
	Save(session *internal.Session)
	Delete(id string)
	Replace(oldID string, session *internal.Session)
}

var (
	_ AgentService = (*agent.Client)(nil)
)

// Manager creates, loads and deletes sessions and keeps the active Context
type Manager struct {
	agent  AgentService
	store  SessionStore
	active *Context

	now   func() time.Time
	newID func() string
}

// NewManager creates a manager with no active session
func NewManager(svc AgentService, store SessionStore) *Manager {
	return &Manager{
		agent:  svc,
		store:  store,
		active: NewContext(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Active returns the active session context
func (m *Manager) Active() *Context {
	return m.active
}

// State returns the lifecycle state of the active session
func (m *Manager) State() State {
	return m.active.State()
}

// Snapshot returns the active session as a record, or nil when none is active
func (m *Manager) Snapshot() *internal.Session {
	return m.active.Snapshot()
}

// CreateSession starts a new session and makes it active. When the agent
// service cannot create it, a local user/session pair is synthesized so
// the caller always gets a usable pair. Nothing is stored until the first
// turn completes.
func (m *Manager) CreateSession(ctx context.Context) (userID, sessionID string) {
	userID, sessionID, err := m.createRemote(ctx)
	if err != nil {
		internal.LogWarn("Could not create session on the agent service (%s), continuing locally: %v",
			internal.FaultClass(err), err)
		userID, sessionID = internal.FallbackIdentity(m.now())
		metrics.SessionCreated(false)
		m.active.activateNew(internal.Identity{Kind: internal.Unbound, UserID: userID, SessionID: sessionID})
		return userID, sessionID
	}

	metrics.SessionCreated(true)
	internal.LogDebug("Created session %s for user %s", sessionID, userID)
	m.active.activateNew(internal.BoundIdentity(userID, sessionID))
	return userID, sessionID
}

// LoadSession makes a stored session active. Sessions whose identity is
// not bound to the agent service get a fresh remote session and their
// record is rewritten under the new ids; when that fails the session is
// activated with its local ids and left as stored.
func (m *Manager) LoadSession(ctx context.Context, id string) error {
	session, ok := m.store.Get(id)
	if !ok {
		return internal.ErrSessionNotFound
	}

	identity := internal.ResolveIdentity(session)
	if identity.IsBound() {
		m.active.activateStored(identity, session)
		return nil
	}

	userID, sessionID, err := m.createRemote(ctx)
	if err != nil {
		internal.LogWarn("Could not bind session %s to the agent service (%s): %v",
			session.ID, internal.FaultClass(err), err)
		metrics.SessionReconciled(false)

		userID = identity.UserID
		if userID == "" {
			userID, _ = internal.FallbackIdentity(m.now())
		}
		m.active.activateStored(internal.Identity{Kind: internal.Unbound, UserID: userID, SessionID: session.ID}, session)
		return nil
	}

	rebound := session.Clone()
	rebound.ID = sessionID
	rebound.UserID = userID
	m.store.Replace(session.ID, rebound)
	metrics.SessionReconciled(true)
	internal.LogInfo("Rebound session %s as %s", session.ID, sessionID)

	m.active.activateStored(internal.BoundIdentity(userID, sessionID), rebound)
	return nil
}

// DeleteSession removes a stored session. Deleting the active session
// leaves no session active.
func (m *Manager) DeleteSession(id string) {
	m.store.Delete(id)
	if m.active.SessionID() == id {
		m.active.reset()
	}
}

// Reset leaves no session active
func (m *Manager) Reset() {
	m.active.reset()
}

func (m *Manager) createRemote(ctx context.Context) (userID, sessionID string, err error) {
	userID, sessionID = m.newID(), m.newID()
	if err := m.agent.CreateSession(ctx, userID, sessionID); err != nil {
		return "", "", err
	}
	return userID, sessionID, nil
}
