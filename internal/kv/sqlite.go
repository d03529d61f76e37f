package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/iksnae/agent-chat/internal"
	_ "modernc.org/sqlite"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS kv_store (
	key TEXT PRIMARY KEY,
	value TEXT
)`

// changeDebounce coalesces the burst of file events a single commit produces
const changeDebounce = 100 * time.Millisecond

// SQLiteArea stores values in a single sqlite table
type SQLiteArea struct {
	db   *sql.DB
	path string
}

var _ Area = (*SQLiteArea)(nil)
var _ Notifier = (*SQLiteArea)(nil)

// OpenSQLiteArea opens (creating if needed) the database at path.
// ":memory:" gives a private in-memory database.
func OpenSQLiteArea(path string) (*SQLiteArea, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, &internal.StorageError{Backend: "sqlite", Op: "open", Err: err}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &internal.StorageError{Backend: "sqlite", Op: "open", Err: err}
	}
	// One connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &internal.StorageError{Backend: "sqlite", Op: "open", Err: fmt.Errorf("database ping failed: %w", err)}
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, &internal.StorageError{Backend: "sqlite", Op: "open", Err: err}
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, &internal.StorageError{Backend: "sqlite", Op: "open", Err: fmt.Errorf("create table: %w", err)}
	}

	return &SQLiteArea{db: db, path: path}, nil
}

// Get returns the value stored under key
func (a *SQLiteArea) Get(ctx context.Context, key string) (string, bool, error) {
	var value sql.NullString
	err := a.db.QueryRowContext(ctx, "SELECT value FROM kv_store WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &internal.StorageError{Backend: "sqlite", Op: "get", Err: err}
	}
	if !value.Valid {
		return "", false, nil
	}
	return value.String, true, nil
}

// Set replaces the value stored under key
func (a *SQLiteArea) Set(ctx context.Context, key, value string) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO kv_store (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return &internal.StorageError{Backend: "sqlite", Op: "set", Err: err}
	}
	return nil
}

// Delete removes key; deleting an absent key is not an error
func (a *SQLiteArea) Delete(ctx context.Context, key string) error {
	if _, err := a.db.ExecContext(ctx, "DELETE FROM kv_store WHERE key = ?", key); err != nil {
		return &internal.StorageError{Backend: "sqlite", Op: "delete", Err: err}
	}
	return nil
}

// Backend names the storage engine
func (a *SQLiteArea) Backend() string {
	return "sqlite"
}

// Path returns the database file path
func (a *SQLiteArea) Path() string {
	return a.path
}

// Close closes the database
func (a *SQLiteArea) Close() error {
	return a.db.Close()
}

// Changes watches the database file (and its journal) for writes from any
// process. The returned channel is closed when ctx is done.
func (a *SQLiteArea) Changes(ctx context.Context) (<-chan struct{}, error) {
	if a.path == ":memory:" {
		return nil, ErrNotifyUnsupported
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	// Watch the directory: sqlite replaces journal files, which drops file watches.
	if err := watcher.Add(filepath.Dir(a.path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(a.path), err)
	}

	out := make(chan struct{}, 1)
	base := filepath.Base(a.path)

	go func() {
		defer close(out)
		defer watcher.Close()

		var debounce *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				if debounce != nil {
					debounce.Stop()
				}
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !strings.HasPrefix(filepath.Base(event.Name), base) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					continue
				}
				if debounce == nil {
					debounce = time.NewTimer(changeDebounce)
				} else {
					debounce.Reset(changeDebounce)
				}
				fire = debounce.C
			case <-fire:
				fire = nil
				notify(out)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				internal.LogWarn("Storage watcher error: %v", err)
			}
		}
	}()

	return out, nil
}
