package trefle

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize matches the lookup memoization bound of the service:
// botanical metadata is near-static, so entries never expire and are only
// evicted when the key count exceeds the bound.
const DefaultCacheSize = 2000

// Fetcher is the uncached lookup, implemented by Client.
type Fetcher interface {
	PlantInfo(ctx context.Context, name string, pageSize int) ([]PlantRecord, error)
}

type cacheKey struct {
	name     string
	pageSize int
}

// PlantCache memoizes PlantInfo results per exact (name, pageSize) pair
// with LRU eviction. The underlying cache is safe for concurrent use;
// two concurrent misses on the same key may both hit the provider, which
// is tolerable since lookups are idempotent.
type PlantCache struct {
	fetcher Fetcher
	entries *lru.Cache[cacheKey, []PlantRecord]
}

func NewPlantCache(fetcher Fetcher, size int) (*PlantCache, error) {
	entries, err := lru.New[cacheKey, []PlantRecord](size)
	if err != nil {
		return nil, err
	}
	return &PlantCache{fetcher: fetcher, entries: entries}, nil
}

// PlantInfo returns the cached sequence for the key, fetching and storing
// it on a miss.
func (c *PlantCache) PlantInfo(ctx context.Context, name string, pageSize int) ([]PlantRecord, error) {
	key := cacheKey{name: name, pageSize: pageSize}
	if records, ok := c.entries.Get(key); ok {
		return records, nil
	}
	records, err := c.fetcher.PlantInfo(ctx, name, pageSize)
	if err != nil {
		return nil, err
	}
	c.entries.Add(key, records)
	return records, nil
}

// Len reports the number of cached keys.
func (c *PlantCache) Len() int {
	return c.entries.Len()
}
