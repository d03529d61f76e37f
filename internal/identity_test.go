package internal

import (
	"strings"
	"testing"
	"time"
)

func TestResolveIdentity(t *testing.T) {
	tests := []struct {
		name     string
		session  *Session
		wantKind IdentityKind
		wantUser string
	}{
		{
			name:     "nil session",
			session:  nil,
			wantKind: Unbound,
		},
		{
			name:     "remote session with user",
			session:  &Session{ID: "3f1c2a9e-aaaa", UserID: "8d2b-user"},
			wantKind: Bound,
			wantUser: "8d2b-user",
		},
		{
			name:     "legacy record without user id",
			session:  &Session{ID: "3f1c2a9e-aaaa"},
			wantKind: Unbound,
		},
		{
			name:     "locally synthesized session keeps user fragment",
			session:  &Session{ID: "session-1700000000000", UserID: "user-1700000000000"},
			wantKind: Unbound,
			wantUser: "user-1700000000000",
		},
		{
			name:     "remote id paired with a local user stays unbound",
			session:  &Session{ID: "3f1c2a9e-aaaa", UserID: "user-1700000000000"},
			wantKind: Unbound,
			wantUser: "user-1700000000000",
		},
		{
			name:     "user prefix without clock digits is remote",
			session:  &Session{ID: "3f1c2a9e-aaaa", UserID: "user-alice"},
			wantKind: Bound,
			wantUser: "user-alice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveIdentity(tt.session)
			if got.Kind != tt.wantKind {
				t.Errorf("ResolveIdentity() kind = %v, want %v", got.Kind, tt.wantKind)
			}
			if got.UserID != tt.wantUser {
				t.Errorf("ResolveIdentity() user = %q, want %q", got.UserID, tt.wantUser)
			}
			if got.IsBound() != (tt.wantKind == Bound) {
				t.Errorf("IsBound() = %v", got.IsBound())
			}
		})
	}
}

func TestFallbackIdentity(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	userID, sessionID := FallbackIdentity(now)

	if userID != "user-1700000000123" {
		t.Errorf("FallbackIdentity() user = %q", userID)
	}
	if sessionID != "session-1700000000123" {
		t.Errorf("FallbackIdentity() session = %q", sessionID)
	}
	if !strings.HasPrefix(sessionID, FallbackSessionPrefix) {
		t.Errorf("fallback session id %q lacks prefix", sessionID)
	}

	stored := &Session{ID: sessionID, UserID: userID}
	if ResolveIdentity(stored).IsBound() {
		t.Error("a persisted fallback session should resolve as unbound")
	}
}
