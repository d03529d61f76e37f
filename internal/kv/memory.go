package kv

import (
	"context"
	"sync"
)

// MemoryArea keeps values in process memory. Changes reports writes made
// through this instance only.
type MemoryArea struct {
	mu          sync.RWMutex
	values      map[string]string
	subscribers []chan struct{}
}

var _ Area = (*MemoryArea)(nil)
var _ Notifier = (*MemoryArea)(nil)

// NewMemoryArea creates an empty in-memory area
func NewMemoryArea() *MemoryArea {
	return &MemoryArea{values: make(map[string]string)}
}

func (a *MemoryArea) Get(_ context.Context, key string) (string, bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	v, ok := a.values[key]
	return v, ok, nil
}

func (a *MemoryArea) Set(_ context.Context, key, value string) error {
	a.mu.Lock()
	a.values[key] = value
	subs := append([]chan struct{}(nil), a.subscribers...)
	a.mu.Unlock()

	for _, ch := range subs {
		notify(ch)
	}
	return nil
}

func (a *MemoryArea) Delete(_ context.Context, key string) error {
	a.mu.Lock()
	delete(a.values, key)
	subs := append([]chan struct{}(nil), a.subscribers...)
	a.mu.Unlock()

	for _, ch := range subs {
		notify(ch)
	}
	return nil
}

func (a *MemoryArea) Backend() string {
	return "memory"
}

func (a *MemoryArea) Close() error {
	return nil
}

// Changes subscribes to writes until ctx is done
func (a *MemoryArea) Changes(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)
	a.mu.Lock()
	a.subscribers = append(a.subscribers, ch)
	a.mu.Unlock()

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer a.unsubscribe(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ch:
				notify(out)
			}
		}
	}()
	return out, nil
}

func (a *MemoryArea) unsubscribe(ch chan struct{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, sub := range a.subscribers {
		if sub == ch {
			a.subscribers = append(a.subscribers[:i], a.subscribers[i+1:]...)
			return
		}
	}
}
