package services

import (
	"sync"
	"time"
)

// cacheEntry is a cached upstream response body with its expiry
type cacheEntry struct {
	body    []byte
	expires time.Time
}

// responseCache is an in-memory TTL cache for upstream response bodies,
// keyed by request URL. It backs the revalidation-window behavior of the
// fetch wrapper: within the window a response may be reused, after it the
// next fetch goes upstream again.
type responseCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

func newResponseCache() *responseCache {
	return &responseCache{entries: make(map[string]cacheEntry)}
}

// Get returns the cached body for key if present and not expired
func (c *responseCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	return entry.body, true
}

// Set stores body under key for the given TTL
func (c *responseCache) Set(key string, body []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		body:    body,
		expires: time.Now().Add(ttl),
	}
}

// PurgeExpired removes expired entries and returns how many were dropped
func (c *responseCache) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	purged := 0
	for key, entry := range c.entries {
		if now.After(entry.expires) {
			delete(c.entries, key)
			purged++
		}
	}
	return purged
}

// Reset drops all entries
func (c *responseCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Len returns the number of entries, expired ones included
func (c *responseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
