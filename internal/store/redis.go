package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// defaultScopeTTL bounds how long scope-keyed records (session, rate-limit,
// CSRF) live in Redis without a write. The browser analogue is session
// storage that dies with the tab; server-side we let keys age out instead.
const defaultScopeTTL = 24 * time.Hour

// Redis is a KV implementation backed by a Redis client. Every Set refreshes
// the key's TTL, so an active scope stays alive and an abandoned one expires.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a Redis-backed store. A non-positive ttl selects the
// default scope TTL.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = defaultScopeTTL
	}
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, key, value, r.ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
