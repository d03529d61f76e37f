package store

import (
	"context"
	"time"

	"github.com/iksnae/agent-chat/internal"
	"github.com/iksnae/agent-chat/internal/kv"
)

// DefaultPollInterval matches the refresh period of the browser sidebar
const DefaultPollInterval = 5 * time.Second

// Watch calls fn with the current session list immediately and again
// whenever the stored sessions may have changed, until ctx is done.
// Areas that can notify push changes; otherwise the list is re-read every
// interval. Notifying areas are also polled so a missed event is
// recovered within one interval.
func (s *Store) Watch(ctx context.Context, interval time.Duration, fn func([]*internal.Session)) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	var changes <-chan struct{}
	if notifier, ok := s.area.(kv.Notifier); ok {
		ch, err := notifier.Changes(ctx)
		if err != nil {
			internal.LogDebug("Change notification unavailable, polling every %s: %v", interval, err)
		} else {
			changes = ch
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fn(s.List())
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			fn(s.List())
		case <-ticker.C:
			fn(s.List())
		}
	}
}
