package ristretto

import (
	"fmt"
	"time"

	"github.com/caasmo/countryblock/cache"
	"github.com/dgraph-io/ristretto/v2"
)

// Cache is a string keyed ristretto cache. Writes are applied
// asynchronously, Wait blocks until buffered writes are visible.
type Cache[V any] struct {
	cache *ristretto.Cache[string, V]
}

var _ cache.Cache[string, int] = (*Cache[int])(nil)

// sizing per level. MaxCost is counted in entries: callers pass cost 1 and
// ristretto's internal per item cost is ignored.
type level struct {
	numCounters int64
	maxCost     int64
}

var levels = map[string]level{
	"small":      {numCounters: 1e4, maxCost: 1e3},
	"medium":     {numCounters: 1e5, maxCost: 1e4},
	"large":      {numCounters: 1e6, maxCost: 1e5},
	"very-large": {numCounters: 1e7, maxCost: 1e6},
}

// ValidLevel reports whether New accepts level.
func ValidLevel(name string) bool {
	_, ok := levels[name]
	return ok
}

// New creates a cache sized by level: small, medium, large or very-large.
func New[V any](name string) (*Cache[V], error) {
	lv, ok := levels[name]
	if !ok {
		return nil, fmt.Errorf("ristretto: unknown cache level %q", name)
	}

	c, err := ristretto.NewCache(&ristretto.Config[string, V]{
		NumCounters: lv.numCounters, // keys to track frequency of, 10x max items
		MaxCost:     lv.maxCost,
		BufferItems: 64, // number of keys per Get buffer

		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}

	return &Cache[V]{cache: c}, nil
}

func (rc *Cache[V]) Get(key string) (V, bool) {
	return rc.cache.Get(key)
}

func (rc *Cache[V]) Set(key string, value V, cost int64) bool {
	return rc.cache.Set(key, value, cost)
}

func (rc *Cache[V]) SetWithTTL(key string, value V, cost int64, ttl time.Duration) bool {
	return rc.cache.SetWithTTL(key, value, cost, ttl)
}

func (rc *Cache[V]) Del(key string) {
	rc.cache.Del(key)
}

// Wait blocks until all buffered writes have been applied.
func (rc *Cache[V]) Wait() {
	rc.cache.Wait()
}

func (rc *Cache[V]) Close() {
	rc.cache.Close()
}
