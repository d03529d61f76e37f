package internal

import (
	"fmt"
	"strings"
	"time"
)

// FallbackSessionPrefix marks session ids synthesized locally when the agent
// service could not create a session.
const FallbackSessionPrefix = "session-"

// FallbackUserPrefix marks locally synthesized user ids
const FallbackUserPrefix = "user-"

// IdentityKind tags whether a session can be sent to the agent service as is
type IdentityKind int

const (
	// Unbound sessions need a fresh remote session before they are usable upstream
	Unbound IdentityKind = iota
	// Bound sessions carry a user/session pair known to the agent service
	Bound
)

func (k IdentityKind) String() string {
	if k == Bound {
		return "bound"
	}
	return "unbound"
}

// Identity is the relationship between a stored session and the agent service.
// For Unbound identities UserID holds whatever local fragment was available
// and may be empty.
type Identity struct {
	Kind      IdentityKind
	UserID    string
	SessionID string
}

// BoundIdentity returns an identity usable against the agent service
func BoundIdentity(userID, sessionID string) Identity {
	return Identity{Kind: Bound, UserID: userID, SessionID: sessionID}
}

// IsBound reports whether the identity needs no reconciliation
func (i Identity) IsBound() bool {
	return i.Kind == Bound
}

func (i Identity) String() string {
	return fmt.Sprintf("%s(%s/%s)", i.Kind, i.UserID, i.SessionID)
}

// ResolveIdentity inspects a stored session. A session is bound when it
// records its owning user and neither id was synthesized locally.
func ResolveIdentity(s *Session) Identity {
	if s == nil {
		return Identity{Kind: Unbound}
	}
	if s.UserID != "" && !isLocalUserID(s.UserID) && !strings.HasPrefix(s.ID, FallbackSessionPrefix) {
		return BoundIdentity(s.UserID, s.ID)
	}
	return Identity{Kind: Unbound, UserID: s.UserID, SessionID: s.ID}
}

// FallbackIdentity synthesizes a local user/session pair from the clock.
// Its session id carries FallbackSessionPrefix, so ResolveIdentity reports
// it as Unbound once persisted.
func FallbackIdentity(now time.Time) (userID, sessionID string) {
	ms := now.UnixMilli()
	return fmt.Sprintf("%s%d", FallbackUserPrefix, ms), fmt.Sprintf("%s%d", FallbackSessionPrefix, ms)
}

// isLocalUserID matches the user ids minted by FallbackIdentity
func isLocalUserID(id string) bool {
	digits, ok := strings.CutPrefix(id, FallbackUserPrefix)
	if !ok || digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
