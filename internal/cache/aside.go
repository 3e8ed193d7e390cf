package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"chirp/internal/observability"

	"github.com/redis/go-redis/v9"
)

func keyPrefix(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}

// GetJSON loads a cached value into dest. Returns false on miss or when caching is disabled.
func GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if client == nil {
		return false
	}
	raw, err := client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			observability.CacheHits.WithLabelValues(keyPrefix(key), "miss").Inc()
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		// Corrupted entry, drop it so the next read repopulates.
		client.Del(ctx, key)
		return false
	}
	observability.CacheHits.WithLabelValues(keyPrefix(key), "hit").Inc()
	return true
}

// SetJSON stores a value under key with the given TTL. Best effort, errors are swallowed.
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	client.Set(ctx, key, raw, ttl)
}

// Aside implements the cache-aside pattern: fill dest from the cache when the
// key is present, otherwise run loader to populate dest and cache it for ttl.
func Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func() error) error {
	if GetJSON(ctx, key, dest) {
		return nil
	}
	if err := loader(); err != nil {
		return err
	}
	SetJSON(ctx, key, dest, ttl)
	return nil
}
