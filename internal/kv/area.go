// Package kv provides the durable key-value areas that back the session
// store: a local sqlite file by default, redis when shared storage is wanted,
// and an in-memory area for tests and throwaway runs.
package kv

import (
	"context"
	"errors"
	"strings"
)

// ErrNotifyUnsupported is returned by Changes when an area cannot observe
// writes made by other processes. Callers fall back to polling.
var ErrNotifyUnsupported = errors.New("change notification not supported")

// Area is a string key-value surface in the spirit of browser localStorage.
// Every Set replaces the whole value in a single operation.
type Area interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Backend() string
	Close() error
}

// Notifier is implemented by areas that can report writes, including
// writes made by other processes sharing the same storage.
type Notifier interface {
	Changes(ctx context.Context) (<-chan struct{}, error)
}

// Open selects an area from a location string:
// "memory" for an in-process area, redis:// or rediss:// URLs for redis,
// anything else is a sqlite database path.
func Open(ctx context.Context, location string) (Area, error) {
	switch {
	case location == "memory" || location == "memory:":
		return NewMemoryArea(), nil
	case strings.HasPrefix(location, "redis://"), strings.HasPrefix(location, "rediss://"):
		area, err := OpenRedisArea(ctx, location)
		if err != nil {
			return nil, err
		}
		return area, nil
	default:
		area, err := OpenSQLiteArea(location)
		if err != nil {
			return nil, err
		}
		return area, nil
	}
}

// notify performs a non-blocking send so slow consumers coalesce events
func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
