package cmd

import (
	"context"

	"github.com/iksnae/agent-chat/internal"
	"github.com/iksnae/agent-chat/internal/agent"
	"github.com/iksnae/agent-chat/internal/kv"
	"github.com/iksnae/agent-chat/internal/store"
)

// openStore opens the configured durable area. An area that cannot be
// opened is logged and the store runs without storage, so commands
// degrade to an empty session list instead of failing.
func openStore(ctx context.Context) (*store.Store, func()) {
	area, err := kv.Open(ctx, cfg.Storage.Location)
	if err != nil {
		internal.LogError("Session storage unavailable, continuing without it: %v", err)
		return store.New(nil, cfg.Storage.Key), func() {}
	}
	internal.LogDebug("Using %s session storage at %s", area.Backend(), cfg.Storage.Location)

	return store.New(area, cfg.Storage.Key), func() {
		if err := area.Close(); err != nil {
			internal.LogWarn("Failed to close session storage: %v", err)
		}
	}
}

func newAgentClient() *agent.Client {
	return agent.NewClientFromConfig(cfg)
}
