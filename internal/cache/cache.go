package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// UserLotsKey caches the user-facing lot listing. Invalidated on every lot
// or spot mutation.
const UserLotsKey = "cache:user:parking-lots"

// Cache is a small JSON read-through cache over Redis. A nil *Cache (no
// Redis configured) behaves as a permanent miss, so callers need no guards.
type Cache struct {
	Client *redis.Client
	TTL    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{Client: client, TTL: ttl}
}

// GetJSON loads key into dest. Returns false on miss; Redis failures are
// logged and reported as misses rather than breaking the request.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) bool {
	if c == nil || c.Client == nil {
		return false
	}
	payload, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return false
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache entry corrupt, ignoring")
		return false
	}
	return true
}

func (c *Cache) SetJSON(ctx context.Context, key string, value any) error {
	if c == nil || c.Client == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	if err := c.Client.Set(ctx, key, payload, c.TTL).Err(); err != nil {
		return fmt.Errorf("store cache entry: %w", err)
	}
	return nil
}

// Invalidate drops keys; failures are logged, a stale entry expires on its
// own within the TTL.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.Client == nil {
		return
	}
	if err := c.Client.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}
}
