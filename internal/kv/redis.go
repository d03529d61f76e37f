package kv

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"
	"github.com/iksnae/agent-chat/internal"
)

// changesChannel carries the key of every write so other processes sharing
// the redis instance can refresh.
const changesChannel = "agent-chat:changes"

// RedisArea stores values as plain redis strings with no expiry
type RedisArea struct {
	cli *redis.Client
}

var _ Area = (*RedisArea)(nil)
var _ Notifier = (*RedisArea)(nil)

// OpenRedisArea connects to the redis URL and pings it
func OpenRedisArea(ctx context.Context, url string) (*RedisArea, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, &internal.StorageError{Backend: "redis", Op: "open", Err: err}
	}
	return NewRedisArea(ctx, redis.NewClient(opts))
}

// NewRedisArea wraps an existing client
func NewRedisArea(ctx context.Context, cli *redis.Client) (*RedisArea, error) {
	if err := cli.Ping(ctx).Err(); err != nil {
		_ = cli.Close()
		return nil, &internal.StorageError{Backend: "redis", Op: "open", Err: err}
	}
	return &RedisArea{cli: cli}, nil
}

func (a *RedisArea) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := a.cli.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &internal.StorageError{Backend: "redis", Op: "get", Err: err}
	}
	return v, true, nil
}

func (a *RedisArea) Set(ctx context.Context, key, value string) error {
	if err := a.cli.Set(ctx, key, value, 0).Err(); err != nil {
		return &internal.StorageError{Backend: "redis", Op: "set", Err: err}
	}
	a.publish(ctx, key)
	return nil
}

func (a *RedisArea) Delete(ctx context.Context, key string) error {
	if err := a.cli.Del(ctx, key).Err(); err != nil {
		return &internal.StorageError{Backend: "redis", Op: "delete", Err: err}
	}
	a.publish(ctx, key)
	return nil
}

func (a *RedisArea) publish(ctx context.Context, key string) {
	if err := a.cli.Publish(ctx, changesChannel, key).Err(); err != nil {
		internal.LogDebug("Failed to publish change for %s: %v", key, err)
	}
}

func (a *RedisArea) Backend() string {
	return "redis"
}

func (a *RedisArea) Close() error {
	return a.cli.Close()
}

// Changes subscribes to the change channel until ctx is done
func (a *RedisArea) Changes(ctx context.Context) (<-chan struct{}, error) {
	sub := a.cli.Subscribe(ctx, changesChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, &internal.StorageError{Backend: "redis", Op: "subscribe", Err: err}
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				notify(out)
			}
		}
	}()
	return out, nil
}
