// Package redis wraps go-redis/v9 for the rank result cache: get/set with
// TTL, deletes, and the pattern scan used when a refresh invalidates every
// cached ordering.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/Algolizen-Inc/LinkRanker/pkg/config"
	"github.com/redis/go-redis/v9"
)

const (
	pingTimeout   = 5 * time.Second
	scanBatchSize = 100
)

// Client wraps a pooled go-redis client.
type Client struct {
	rdb *redis.Client
}

// NewClient connects and verifies the server with a PING before returning.
func NewClient(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

func (c *Client) Get(ctx context.Context, key string) (string, error) {
	return c.rdb.Get(ctx, key).Result()
}

func (c *Client) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

func (c *Client) Del(ctx context.Context, keys ...string) error {
	return c.rdb.Del(ctx, keys...).Err()
}

// FlushByPattern deletes every key matching the glob pattern and returns
// how many were removed. SCAN keeps the walk incremental so invalidating a
// large result cache does not block the server.
func (c *Client) FlushByPattern(ctx context.Context, pattern string) (int64, error) {
	var deleted int64
	iter := c.rdb.Scan(ctx, 0, pattern, scanBatchSize).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, fmt.Errorf("deleting key %s: %w", iter.Val(), err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("scanning pattern %s: %w", pattern, err)
	}
	return deleted, nil
}

// IsNilError reports whether err means the key was absent rather than the
// call failing.
func IsNilError(err error) bool {
	return err == redis.Nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
