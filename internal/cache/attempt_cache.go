package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"streamgate/internal/ratelimit"

	"github.com/redis/go-redis/v9"
)

// AttemptCache is a Redis-backed ratelimit.Store so lockouts survive
// restarts and are shared by every API instance
type AttemptCache struct {
	client *redis.Client
}

// NewAttemptCache creates a new attempt cache
func NewAttemptCache(client *redis.Client) *AttemptCache {
	return &AttemptCache{client: client}
}

var _ ratelimit.Store = (*AttemptCache)(nil)

func (c *AttemptCache) Get(ctx context.Context, key string) (*ratelimit.Record, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec ratelimit.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *AttemptCache) Put(ctx context.Context, key string, rec *ratelimit.Record, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = time.Second
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *AttemptCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
