package op

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// ListingCache holds inventory listings (vaults, groups) between menu
// actions so repeated scenarios don't re-enumerate the whole account.
// Permission-state queries are never cached: the external system stays
// the sole source of truth for reconciliation decisions.
type ListingCache struct {
	c *gocache.Cache
}

// NewListingCache creates a cache with the given TTL
func NewListingCache(ttl time.Duration) *ListingCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ListingCache{c: gocache.New(ttl, time.Minute)}
}

// Get returns the cached value under key, if present and fresh
func (l *ListingCache) Get(key string) (any, bool) {
	if l == nil {
		return nil, false
	}
	return l.c.Get(key)
}

// Set stores a value under key with the default TTL
func (l *ListingCache) Set(key string, value any) {
	if l == nil {
		return
	}
	l.c.SetDefault(key, value)
}

// Invalidate drops the value under key
func (l *ListingCache) Invalidate(key string) {
	if l == nil {
		return
	}
	l.c.Delete(key)
}
