// Package cache provides an optional read-through cache in front of
// current_alias_state(), invalidated synchronously on every alias write.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Junhan0037/SearchFoundry/internal/config"
	"github.com/Junhan0037/SearchFoundry/internal/model"
)

const aliasStateKey = "searchctl:alias_state"

// AliasStateCache fronts a source of alias state with a short-TTL cache.
type AliasStateCache interface {
	// Get returns the cached alias state and whether it was present and
	// unexpired. Any Redis-level error is treated as a miss so that a
	// transient cache outage never blocks a caller falling through to the
	// authoritative source.
	Get(ctx context.Context) (model.AliasState, bool)
	// Set stores state with the configured TTL.
	Set(ctx context.Context, state model.AliasState)
	// Invalidate drops the cached state; called synchronously by the Alias
	// Manager on every write so the cache can never serve a stale switch.
	Invalidate(ctx context.Context)
	// Close releases any underlying connection.
	Close() error
}

// New builds the AliasStateCache described by cfg. cfg.Type == "none"
// (or unrecognized) returns a no-op cache that always misses.
func New(cfg config.CacheConfig) (AliasStateCache, error) {
	if cfg.Type != "redis" {
		return noopCache{}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	ttl := time.Duration(cfg.TTLSecs) * time.Second
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &redisAliasCache{client: client, ttl: ttl}, nil
}

type redisAliasCache struct {
	client *redis.Client
	ttl    time.Duration
}

func (c *redisAliasCache) Get(ctx context.Context) (model.AliasState, bool) {
	raw, err := c.client.Get(ctx, aliasStateKey).Bytes()
	if err != nil {
		return model.AliasState{}, false
	}
	var state model.AliasState
	if err := json.Unmarshal(raw, &state); err != nil {
		return model.AliasState{}, false
	}
	return state, true
}

func (c *redisAliasCache) Set(ctx context.Context, state model.AliasState) {
	raw, err := json.Marshal(state)
	if err != nil {
		return
	}
	c.client.Set(ctx, aliasStateKey, raw, c.ttl)
}

func (c *redisAliasCache) Invalidate(ctx context.Context) {
	c.client.Del(ctx, aliasStateKey)
}

func (c *redisAliasCache) Close() error {
	return c.client.Close()
}

// noopCache is used when caching is disabled; every Get misses.
type noopCache struct{}

func (noopCache) Get(ctx context.Context) (model.AliasState, bool) { return model.AliasState{}, false }
func (noopCache) Set(ctx context.Context, state model.AliasState)  {}
func (noopCache) Invalidate(ctx context.Context)                   {}
func (noopCache) Close() error                                     { return nil }
