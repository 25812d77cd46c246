package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Aside implements the cache-aside pattern: fill dest from the cached value
// under key if present, otherwise run load (which must fill dest), then cache
// dest with the given TTL. With no Redis client configured every call goes
// straight to the loader.
func Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, load func() error) error {
	if client == nil {
		return load()
	}

	raw, err := client.Get(ctx, key).Bytes()
	if err == nil {
		if unmarshalErr := json.Unmarshal(raw, dest); unmarshalErr == nil {
			return nil
		}
		// Corrupt entry, drop it and fall through to the loader.
		client.Del(ctx, key)
	}

	if err := load(); err != nil {
		return err
	}

	if encoded, marshalErr := json.Marshal(dest); marshalErr == nil {
		client.Set(ctx, key, encoded, ttl)
	}
	return nil
}
