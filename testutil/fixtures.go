package testutil

import (
	"context"
	"testing"

	"github.com/iksnae/agent-chat/internal"
	"github.com/iksnae/agent-chat/internal/kv"
	"github.com/iksnae/agent-chat/internal/store"
)

// SeedSessions writes sessions into the sqlite area at path, in order, so
// the last one ends up first in the list.
func SeedSessions(t *testing.T, path string, sessions ...*internal.Session) {
	t.Helper()
	area, err := kv.OpenSQLiteArea(path)
	if err != nil {
		t.Fatalf("Failed to open sqlite area: %v", err)
	}
	defer func() { _ = area.Close() }()

	st := store.New(area, store.DefaultKey)
	for _, s := range sessions {
		st.Save(s)
	}
}

// LoadSessions reads back everything stored at path
func LoadSessions(t *testing.T, path string) []*internal.Session {
	t.Helper()
	area, err := kv.OpenSQLiteArea(path)
	if err != nil {
		t.Fatalf("Failed to open sqlite area: %v", err)
	}
	defer func() { _ = area.Close() }()
	return store.New(area, store.DefaultKey).List()
}

// RawSessions returns the stored JSON array verbatim
func RawSessions(t *testing.T, path string) string {
	t.Helper()
	area, err := kv.OpenSQLiteArea(path)
	if err != nil {
		t.Fatalf("Failed to open sqlite area: %v", err)
	}
	defer func() { _ = area.Close() }()
	v, _, err := area.Get(context.Background(), store.DefaultKey)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", store.DefaultKey, err)
	}
	return v
}
