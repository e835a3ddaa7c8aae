package lookupcache

import (
	"sync"
	"time"
)

// DefaultTTL is the default time-to-live for lookup results. Prices move,
// so this stays short.
const DefaultTTL = 30 * time.Minute

// Stats tracks cache performance metrics
type Stats struct {
	Hits           int64   `json:"hits"`
	Misses         int64   `json:"misses"`
	Evictions      int64   `json:"evictions"`
	Size           int     `json:"size"`
	MaxSize        int     `json:"max_size"`
	TotalSizeBytes int64   `json:"total_size_bytes"`
	HitRate        float64 `json:"hit_rate"`
}

func (s *Stats) updateHitRate() {
	total := s.Hits + s.Misses
	if total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
}

// lruEntry is a node in the recency list
type lruEntry struct {
	key        string
	value      *Entry
	sizeBytes  int64
	prev, next *lruEntry
}

// LRUCache is a thread-safe LRU cache of lookup results with per-entry expiry
type LRUCache struct {
	maxSize    int
	ttl        time.Duration
	now        func() time.Time
	cache      map[string]*lruEntry
	head, tail *lruEntry
	mu         sync.Mutex
	stats      Stats
}

// NewLRUCache creates a cache holding at most maxSize entries for ttl each
func NewLRUCache(maxSize int, ttl time.Duration) *LRUCache {
	if maxSize <= 0 {
		maxSize = 1
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &LRUCache{
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
		cache:   make(map[string]*lruEntry),
		stats:   Stats{MaxSize: maxSize},
	}
}

// WithClock replaces the time source; used by tests
func (c *LRUCache) WithClock(now func() time.Time) *LRUCache {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

// Get retrieves a live entry
func (c *LRUCache) Get(key string) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.cache[key]
	if !exists {
		c.stats.Misses++
		c.stats.updateHitRate()
		return nil, false
	}

	if entry.value.IsExpiredAt(c.now()) {
		c.removeEntry(entry)
		c.stats.Misses++
		c.stats.updateHitRate()
		return nil, false
	}

	c.moveToFront(entry)
	entry.value.AccessCount++

	c.stats.Hits++
	c.stats.updateHitRate()

	out := *entry.value
	return &out, true
}

// Put stores payload under key, stamping creation and expiry times
func (c *LRUCache) Put(key, tool string, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	value := &Entry{
		Key:       key,
		Tool:      tool,
		Payload:   append([]byte(nil), payload...),
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}

	if entry, exists := c.cache[key]; exists {
		c.stats.TotalSizeBytes += value.SizeBytes() - entry.sizeBytes
		entry.value = value
		entry.sizeBytes = value.SizeBytes()
		c.moveToFront(entry)
		return
	}

	entry := &lruEntry{
		key:       key,
		value:     value,
		sizeBytes: value.SizeBytes(),
	}
	c.cache[key] = entry
	c.addToFront(entry)
	c.stats.Size = len(c.cache)
	c.stats.TotalSizeBytes += entry.sizeBytes

	for len(c.cache) > c.maxSize {
		c.evictLRU()
	}
}

// Delete removes a key
func (c *LRUCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, exists := c.cache[key]; exists {
		c.removeEntry(entry)
	}
}

// Clear removes all entries
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache = make(map[string]*lruEntry)
	c.head = nil
	c.tail = nil
	c.stats.Size = 0
	c.stats.TotalSizeBytes = 0
}

// Size returns the current number of entries
func (c *LRUCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}

// Stats returns a copy of the cache statistics
func (c *LRUCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// CleanupExpired removes every stale entry and returns how many were dropped
func (c *LRUCache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var expired []*lruEntry
	for _, entry := range c.cache {
		if entry.value.IsExpiredAt(now) {
			expired = append(expired, entry)
		}
	}
	for _, entry := range expired {
		c.removeEntry(entry)
		c.stats.Evictions++
	}
	return len(expired)
}

func (c *LRUCache) moveToFront(entry *lruEntry) {
	if entry == c.head {
		return
	}
	c.unlink(entry)
	c.addToFront(entry)
}

func (c *LRUCache) addToFront(entry *lruEntry) {
	entry.prev = nil
	entry.next = c.head
	if c.head != nil {
		c.head.prev = entry
	}
	c.head = entry
	if c.tail == nil {
		c.tail = entry
	}
}

func (c *LRUCache) removeEntry(entry *lruEntry) {
	delete(c.cache, entry.key)
	c.stats.TotalSizeBytes -= entry.sizeBytes
	c.stats.Size = len(c.cache)
	c.unlink(entry)
}

func (c *LRUCache) unlink(entry *lruEntry) {
	if entry.prev != nil {
		entry.prev.next = entry.next
	} else {
		c.head = entry.next
	}
	if entry.next != nil {
		entry.next.prev = entry.prev
	} else {
		c.tail = entry.prev
	}
	entry.prev, entry.next = nil, nil
}

func (c *LRUCache) evictLRU() {
	if c.tail == nil {
		return
	}
	c.removeEntry(c.tail)
	c.stats.Evictions++
}
