package adminapi

import (
	"encoding/json"
	"hash/fnv"
	"sync"
	"time"
)

// CacheEntry is one cached read response. TTL is captured at store time, so
// later configuration changes never re-evaluate existing entries.
type CacheEntry struct {
	Path     string
	Data     json.RawMessage
	Status   int
	StoredAt time.Time
	TTL      time.Duration
}

func (e *CacheEntry) expired(now time.Time) bool {
	return e.TTL > 0 && now.Sub(e.StoredAt) >= e.TTL
}

// Cache stores successful read responses keyed by request signature. Lookups
// return only unexpired entries; expired entries encountered on lookup are
// evicted in place (no background sweep). A Cache cannot fail, it can only
// return absence.
type Cache interface {
	Get(key string) (*CacheEntry, bool)
	Set(key string, entry *CacheEntry)
	Delete(key string)
	InvalidatePath(path string) int
	Clear()
}

const numCacheShards = 16

// MemoryCache is a sharded in-memory Cache with lazy TTL eviction.
type MemoryCache struct {
	shards [numCacheShards]*cacheShard
}

type cacheShard struct {
	mu    sync.Mutex
	store map[string]*CacheEntry
}

// NewMemoryCache returns an empty sharded cache.
func NewMemoryCache() *MemoryCache {
	c := &MemoryCache{}
	for i := range c.shards {
		c.shards[i] = &cacheShard{store: make(map[string]*CacheEntry)}
	}
	return c
}

func (c *MemoryCache) shard(key string) *cacheShard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return c.shards[h.Sum32()%numCacheShards]
}

// Get returns the entry only if present and unexpired. An expired entry is
// removed as a side effect.
func (c *MemoryCache) Get(key string) (*CacheEntry, bool) {
	shard := c.shard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	entry, exists := shard.store[key]
	if !exists {
		return nil, false
	}
	if entry.expired(time.Now()) {
		delete(shard.store, key)
		return nil, false
	}
	return entry, true
}

// Set unconditionally overwrites. A zero StoredAt is stamped with now.
func (c *MemoryCache) Set(key string, entry *CacheEntry) {
	if entry.StoredAt.IsZero() {
		entry.StoredAt = time.Now()
	}
	shard := c.shard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	shard.store[key] = entry
}

// Delete removes a single entry.
func (c *MemoryCache) Delete(key string) {
	shard := c.shard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	delete(shard.store, key)
}

// InvalidatePath drops every entry stored for the given request path,
// regardless of query or body, and reports how many were removed. Called
// after successful writes so stale reads for the same endpoint disappear.
func (c *MemoryCache) InvalidatePath(path string) int {
	removed := 0
	for _, shard := range c.shards {
		shard.mu.Lock()
		for key, entry := range shard.store {
			if entry.Path == path {
				delete(shard.store, key)
				removed++
			}
		}
		shard.mu.Unlock()
	}
	return removed
}

// Clear drops all entries.
func (c *MemoryCache) Clear() {
	for _, shard := range c.shards {
		shard.mu.Lock()
		shard.store = make(map[string]*CacheEntry)
		shard.mu.Unlock()
	}
}

// Len reports the total entry count across shards.
func (c *MemoryCache) Len() int {
	n := 0
	for _, shard := range c.shards {
		shard.mu.Lock()
		n += len(shard.store)
		shard.mu.Unlock()
	}
	return n
}
