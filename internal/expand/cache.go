package expand

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/Algolizen-Inc/LinkRanker/pkg/config"
	pkgredis "github.com/Algolizen-Inc/LinkRanker/pkg/redis"
)

const keyPrefix = "expand:"

// CachedExpander wraps another Expander with a TTL-bounded Redis cache.
// Entries expire instead of accumulating forever, and singleflight
// collapses concurrent expansions of the same query. Cache errors degrade
// to direct expansion.
type CachedExpander struct {
	inner  Expander
	client *pkgredis.Client
	cfg    config.ExpansionConfig
	group  singleflight.Group
	logger *slog.Logger
}

func NewCachedExpander(inner Expander, client *pkgredis.Client, cfg config.ExpansionConfig) *CachedExpander {
	return &CachedExpander{
		inner:  inner,
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "expand-cache"),
	}
}

func (c *CachedExpander) ExpandQuery(ctx context.Context, query string) ([]string, error) {
	key := c.buildKey(query)
	if data, err := c.client.Get(ctx, key); err == nil {
		var terms []string
		if err := json.Unmarshal([]byte(data), &terms); err == nil {
			return terms, nil
		}
		c.logger.Error("cached expansion corrupt, recomputing", "key", key)
	} else if !pkgredis.IsNilError(err) {
		c.logger.Error("expansion cache get failed", "key", key, "error", err)
	}

	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		terms, err := c.inner.ExpandQuery(ctx, query)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(terms); err == nil {
			if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
				c.logger.Error("expansion cache set failed", "key", key, "error", err)
			}
		}
		return terms, nil
	})
	if err != nil {
		return nil, err
	}
	return val.([]string), nil
}

func (c *CachedExpander) buildKey(query string) string {
	hash := sha256.Sum256([]byte(query))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
