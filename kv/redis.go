// Package kv holds the optional Redis client. Every helper is a no-op when
// Redis is not configured.
package kv

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// Init connects using a redis:// URL. An empty URL leaves Redis disabled.
func Init(ctx context.Context, redisURL string) error {
	if redisURL == "" {
		return nil
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return err
	}
	c := redis.NewClient(opt)
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return err
	}
	client = c
	return nil
}

// SetClient replaces the client; nil disables Redis.
func SetClient(c *redis.Client) { client = c }

func Available() bool { return client != nil }

// AllowRate counts hits on key within a fixed window and reports whether
// the hit is within limit. The window starts with the first hit and is not
// extended by later ones. Without Redis, or on a Redis error, the hit is
// allowed.
func AllowRate(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error) {
	if client == nil || limit <= 0 {
		return true, 0, nil
	}
	pipe := client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, 0, err
	}
	n := incr.Val()
	// a key without expiry is a fresh window, or one whose EXPIRE was lost
	if n == 1 || ttl.Val() < 0 {
		if err := client.Expire(ctx, key, window).Err(); err != nil {
			return true, n, err
		}
	}
	return n <= limit, n, nil
}

func Close() error {
	if client == nil {
		return nil
	}
	err := client.Close()
	client = nil
	return err
}
