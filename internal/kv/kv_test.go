package kv

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/iksnae/agent-chat/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func areas(t *testing.T) map[string]Area {
	t.Helper()
	fileArea, err := OpenSQLiteArea(filepath.Join(t.TempDir(), "nested", "sessions.db"))
	require.NoError(t, err)
	memSQLite, err := OpenSQLiteArea(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = fileArea.Close()
		_ = memSQLite.Close()
	})
	return map[string]Area{
		"sqlite file":   fileArea,
		"sqlite memory": memSQLite,
		"memory":        NewMemoryArea(),
	}
}

func TestArea_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	for name, area := range areas(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := area.Get(ctx, "chat_sessions")
			require.NoError(t, err)
			assert.False(t, ok, "missing key should report ok=false")

			require.NoError(t, area.Set(ctx, "chat_sessions", `[{"id":"a"}]`))
			v, ok, err := area.Get(ctx, "chat_sessions")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `[{"id":"a"}]`, v)

			require.NoError(t, area.Set(ctx, "chat_sessions", `[]`))
			v, _, err = area.Get(ctx, "chat_sessions")
			require.NoError(t, err)
			assert.Equal(t, `[]`, v, "Set should replace the previous value")

			require.NoError(t, area.Delete(ctx, "chat_sessions"))
			require.NoError(t, area.Delete(ctx, "chat_sessions"), "deleting twice is a no-op")
			_, ok, err = area.Get(ctx, "chat_sessions")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestSQLiteArea_PersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sessions.db")

	first, err := OpenSQLiteArea(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "k", "v1"))
	require.NoError(t, first.Close())

	second, err := OpenSQLiteArea(path)
	require.NoError(t, err)
	defer second.Close()

	v, ok, err := second.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v1", v)
	assert.Equal(t, "sqlite", second.Backend())
	assert.Equal(t, path, second.Path())
}

func TestSQLiteArea_ChangesSeesOtherConnection(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	path := filepath.Join(t.TempDir(), "sessions.db")

	watcherArea, err := OpenSQLiteArea(path)
	require.NoError(t, err)
	defer watcherArea.Close()

	changes, err := watcherArea.Changes(ctx)
	require.NoError(t, err)

	writer, err := OpenSQLiteArea(path)
	require.NoError(t, err)
	defer writer.Close()
	require.NoError(t, writer.Set(ctx, "chat_sessions", "[]"))

	select {
	case <-changes:
	case <-time.After(3 * time.Second):
		t.Fatal("expected a change notification after another connection wrote")
	}

	cancel()
	for range changes {
	}
}

func TestSQLiteArea_MemoryCannotNotify(t *testing.T) {
	area, err := OpenSQLiteArea(":memory:")
	require.NoError(t, err)
	defer area.Close()

	_, err = area.Changes(context.Background())
	assert.ErrorIs(t, err, ErrNotifyUnsupported)
}

func TestMemoryArea_Changes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	area := NewMemoryArea()

	changes, err := area.Changes(ctx)
	require.NoError(t, err)

	require.NoError(t, area.Set(ctx, "k", "v"))
	select {
	case <-changes:
	case <-time.After(time.Second):
		t.Fatal("expected a change notification")
	}

	cancel()
	for range changes {
	}
	area.mu.RLock()
	defer area.mu.RUnlock()
	assert.Empty(t, area.subscribers, "subscriber should be removed after cancel")
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	area, err := Open(ctx, "memory")
	require.NoError(t, err)
	assert.Equal(t, "memory", area.Backend())

	area, err = Open(ctx, filepath.Join(t.TempDir(), "x.db"))
	require.NoError(t, err)
	assert.Equal(t, "sqlite", area.Backend())
	require.NoError(t, area.Close())

	area, err = Open(ctx, "redis://localhost:notaport")
	require.Error(t, err)
	assert.Nil(t, area)
	var storageErr *internal.StorageError
	assert.True(t, errors.As(err, &storageErr))
	assert.Equal(t, "redis", storageErr.Backend)
}
