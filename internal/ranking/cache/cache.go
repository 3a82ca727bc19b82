// Package cache provides a Redis-backed cache for full ranking results,
// keyed by query and blend weights, with singleflight collapsing of
// concurrent identical calls.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/Algolizen-Inc/LinkRanker/internal/ranking"
	"github.com/Algolizen-Inc/LinkRanker/pkg/config"
	pkgredis "github.com/Algolizen-Inc/LinkRanker/pkg/redis"
)

const keyPrefix = "rank:"

type ResultCache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

func New(client *pkgredis.Client, cfg config.RedisConfig) *ResultCache {
	return &ResultCache{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "rank-cache"),
	}
}

func (c *ResultCache) Get(ctx context.Context, query string, contentWeight, authorityWeight float64) (*ranking.Result, bool) {
	key := c.buildKey(query, contentWeight, authorityWeight)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var result ranking.Result
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "query", query, "key", key)
	return &result, true
}

func (c *ResultCache) Set(ctx context.Context, query string, contentWeight, authorityWeight float64, result *ranking.Result) {
	key := c.buildKey(query, contentWeight, authorityWeight)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result or runs computeFn exactly once for
// concurrent identical calls. The second return reports a cache hit.
func (c *ResultCache) GetOrCompute(
	ctx context.Context,
	query string,
	contentWeight, authorityWeight float64,
	computeFn func() (*ranking.Result, error),
) (*ranking.Result, bool, error) {
	if result, ok := c.Get(ctx, query, contentWeight, authorityWeight); ok {
		return result, true, nil
	}
	key := c.buildKey(query, contentWeight, authorityWeight)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if result, ok := c.Get(ctx, query, contentWeight, authorityWeight); ok {
			return result, nil
		}
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, query, contentWeight, authorityWeight, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*ranking.Result), false, nil
}

// Invalidate drops every cached ranking, typically after an index reload.
func (c *ResultCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating rank cache: %w", err)
	}
	c.logger.Info("rank cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *ResultCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *ResultCache) buildKey(query string, contentWeight, authorityWeight float64) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	raw := fmt.Sprintf("%s:cw=%g:aw=%g", normalized, contentWeight, authorityWeight)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
