package introspection

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
)

// CachedLoader memoizes snapshots per schema list for a fixed TTL. A build
// always works from a single snapshot; the cache only decides whether the
// next build re-reads the catalogs.
type CachedLoader struct {
	source Source
	cache  *lru.LRU[string, *Result]
	log    *logrus.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCachedLoader wraps a source with a TTL cache holding up to size snapshots
func NewCachedLoader(source Source, size int, ttl time.Duration, log *logrus.Logger) *CachedLoader {
	if size <= 0 {
		size = 8
	}
	if log == nil {
		log = logrus.New()
	}
	return &CachedLoader{
		source: source,
		cache:  lru.NewLRU[string, *Result](size, nil, ttl),
		log:    log,
	}
}

// Load returns a cached snapshot or reads a fresh one from the source
func (c *CachedLoader) Load(ctx context.Context, schemas []string) (*Result, error) {
	key := strings.Join(schemas, ",")

	if result, ok := c.cache.Get(key); ok {
		c.hits.Add(1)
		c.log.WithField("schemas", key).Debug("Introspection cache hit")
		return result, nil
	}

	c.misses.Add(1)
	result, err := c.source.Load(ctx, schemas)
	if err != nil {
		return nil, err
	}

	c.cache.Add(key, result)
	return result, nil
}

// Invalidate drops every cached snapshot, forcing the next Load to re-read
func (c *CachedLoader) Invalidate() {
	c.cache.Purge()
}

// Stats returns cache hit and miss counts
func (c *CachedLoader) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
