package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const (
	userCacheTTL       = 5 * time.Minute
	negativeCacheTTL   = 30 * time.Second
	maxCacheEntries    = 10000
	cacheCleanupPeriod = 60 * time.Second
)

// errCachedNotFound is returned for negative cache hits.
var errCachedNotFound = errors.New("user not found (cached)")

type cachedUser struct {
	userID    uuid.UUID
	negative  bool
	fetchedAt time.Time
}

// ttl returns the appropriate TTL for this entry.
func (cu cachedUser) ttl() time.Duration {
	if cu.negative {
		return negativeCacheTTL
	}
	return userCacheTTL
}

// hashKey returns a hex-encoded SHA-256 hash of the API key so raw keys
// are never stored in memory.
func hashKey(apiKey string) string {
	h := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(h[:])
}

// CachedUserLookup wraps a UserLookup with a bounded in-memory cache.
// Concurrent misses for the same key collapse into one database lookup.
type CachedUserLookup struct {
	inner UserLookup
	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]cachedUser
}

// NewCachedUserLookup creates a caching wrapper around the given UserLookup.
// The provided context controls the lifetime of the background eviction goroutine.
func NewCachedUserLookup(ctx context.Context, inner UserLookup) *CachedUserLookup {
	c := &CachedUserLookup{
		inner: inner,
		cache: make(map[string]cachedUser),
	}
	go c.evictLoop(ctx)
	return c
}

// evictLoop periodically removes expired entries from the cache.
func (c *CachedUserLookup) evictLoop(ctx context.Context) {
	ticker := time.NewTicker(cacheCleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for k, v := range c.cache {
				if now.Sub(v.fetchedAt) >= v.ttl() {
					delete(c.cache, k)
				}
			}
			c.mu.Unlock()
		}
	}
}

// GetUserByAPIKey returns a cached user ID or delegates to the inner lookup.
// Failed lookups are negatively cached for 30s to prevent brute-force DB hammering.
func (c *CachedUserLookup) GetUserByAPIKey(ctx context.Context, apiKey string) (uuid.UUID, error) {
	hk := hashKey(apiKey)

	// Read path, RLock for concurrent cache hits.
	c.mu.RLock()
	entry, ok := c.cache[hk]
	if ok && time.Since(entry.fetchedAt) < entry.ttl() {
		c.mu.RUnlock()
		if entry.negative {
			return uuid.Nil, errCachedNotFound
		}
		return entry.userID, nil
	}
	c.mu.RUnlock()

	// Cache miss or expired. singleflight collapses a stampede of
	// identical keys into one inner lookup.
	v, err, _ := c.group.Do(hk, func() (any, error) {
		userID, err := c.inner.GetUserByAPIKey(ctx, apiKey)
		if err != nil {
			// Negative cache: store failed lookup with short TTL.
			c.store(hk, cachedUser{negative: true, fetchedAt: time.Now()})
			return uuid.Nil, err
		}

		c.store(hk, cachedUser{userID: userID, fetchedAt: time.Now()})
		return userID, nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	return v.(uuid.UUID), nil
}

// store inserts a cache entry, evicting expired then arbitrary entries if
// the cache is at capacity.
func (c *CachedUserLookup) store(hk string, entry cachedUser) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.cache) >= maxCacheEntries {
		now := time.Now()
		for k, v := range c.cache {
			if now.Sub(v.fetchedAt) >= v.ttl() {
				delete(c.cache, k)
			}
		}
		for k := range c.cache {
			if len(c.cache) < maxCacheEntries {
				break
			}
			delete(c.cache, k)
		}
	}

	c.cache[hk] = entry
}
