package geoip

import (
	"context"
	"time"

	"github.com/caasmo/countryblock/cache"
	"golang.org/x/sync/singleflight"
)

const DefaultCacheTTL = time.Hour

// Cached remembers successful lookups for a TTL. Failures are never cached.
// Concurrent lookups of the same address share one upstream call.
type Cached struct {
	next    Lookup
	cache   cache.Cache[string, Info]
	ttl     time.Duration
	timeout time.Duration
	group   singleflight.Group
}

type CachedOption func(*Cached)

// WithFlightTimeout bounds the shared upstream call. It defaults to
// DefaultTimeout.
func WithFlightTimeout(d time.Duration) CachedOption {
	return func(c *Cached) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func NewCached(next Lookup, c cache.Cache[string, Info], ttl time.Duration, opts ...CachedOption) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	cached := &Cached{next: next, cache: c, ttl: ttl, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(cached)
	}
	return cached
}

// Lookup returns when the shared call finishes or ctx is done. A caller
// giving up does not cancel the call for the others waiting on it.
func (c *Cached) Lookup(ctx context.Context, ip string) (Info, error) {
	if info, ok := c.cache.Get(ip); ok {
		return info, nil
	}

	ch := c.group.DoChan(ip, func() (any, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		info, err := c.next.Lookup(flightCtx, ip)
		if err != nil {
			return Info{}, err
		}
		c.cache.SetWithTTL(ip, info, 1, c.ttl)
		return info, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return Info{}, res.Err
		}
		return res.Val.(Info), nil
	case <-ctx.Done():
		return Info{}, ctx.Err()
	}
}
