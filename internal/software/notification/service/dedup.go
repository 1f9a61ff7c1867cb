package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DedupStore remembers which broker messages were already handled. The outbox
// publisher delivers at-least-once, so redeliveries are part of normal
// operation and must be absorbed here.
type DedupStore interface {
	// Seen marks id as handled and reports whether it had been seen before.
	Seen(ctx context.Context, id string) (bool, error)
}

// RedisDedup implements DedupStore on Redis SETNX with a TTL: the first
// writer wins, everyone else sees the key and skips the message.
type RedisDedup struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDedup connects a dedup store to Redis.
func NewRedisDedup(addr, password string, ttl time.Duration) *RedisDedup {
	return &RedisDedup{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password}),
		ttl:    ttl,
	}
}

func (d *RedisDedup) Seen(ctx context.Context, id string) (bool, error) {
	set, err := d.client.SetNX(ctx, dedupKey(id), 1, d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup setnx: %w", err)
	}
	// set == true means we claimed it now, so it was not seen before
	return !set, nil
}

// Close releases the Redis connection.
func (d *RedisDedup) Close() error {
	return d.client.Close()
}

func dedupKey(id string) string { return "notification:seen:" + id }
