package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/leadforge/leadforge-back/internal/domain"
)

// Entry is one cached generation result.
type Entry struct {
	Content   string
	ModelID   string
	Path      domain.GenerationPath
	CreatedAt time.Time
	ExpiresAt time.Time
}

type Config struct {
	TTL        time.Duration
	MaxEntries int
}

// ResponseCache memoizes generation results and deduplicates concurrent
// requests for the same key. It is an explicit instance injected into the
// artifact builder; there is deliberately no package-level cache.
type ResponseCache struct {
	mu         sync.RWMutex
	entries    map[string]Entry
	ttl        time.Duration
	maxEntries int

	flightMu sync.Mutex
	inFlight map[string]*flight
}

type flight struct {
	done  chan struct{}
	entry Entry
	err   error
}

func NewResponseCache(config Config) *ResponseCache {
	if config.TTL <= 0 {
		config.TTL = 15 * time.Minute
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = 500
	}
	return &ResponseCache{
		entries:    make(map[string]Entry),
		ttl:        config.TTL,
		maxEntries: config.MaxEntries,
		inFlight:   make(map[string]*flight),
	}
}

func (c *ResponseCache) Get(key string) (Entry, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		return Entry{}, false
	}
	if time.Now().UTC().After(entry.ExpiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return Entry{}, false
	}
	return entry, true
}

func (c *ResponseCache) Set(key string, entry Entry) {
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.ExpiresAt = now.Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}
	c.entries[key] = entry
}

// Do runs produce exactly once per key among concurrent callers; every
// caller receives the same entry. A cached, unexpired entry short-circuits
// the call entirely.
func (c *ResponseCache) Do(key string, produce func() (Entry, error)) (Entry, error) {
	if entry, ok := c.Get(key); ok {
		return entry, nil
	}

	c.flightMu.Lock()
	if existing, ok := c.inFlight[key]; ok {
		c.flightMu.Unlock()
		<-existing.done
		return existing.entry, existing.err
	}
	current := &flight{done: make(chan struct{})}
	c.inFlight[key] = current
	c.flightMu.Unlock()

	current.entry, current.err = produce()
	if current.err == nil {
		c.Set(key, current.entry)
	}

	c.flightMu.Lock()
	delete(c.inFlight, key)
	c.flightMu.Unlock()
	close(current.done)

	return current.entry, current.err
}

// BuildKey derives a stable dedupe key from the normalized parts.
func (c *ResponseCache) BuildKey(parts ...string) string {
	normalized := make([]string, 0, len(parts))
	for _, part := range parts {
		normalized = append(normalized, strings.TrimSpace(strings.ToLower(part)))
	}
	joined := strings.Join(normalized, "||")
	sum := sha256.Sum256([]byte(joined))
	return hex.EncodeToString(sum[:])
}

func (c *ResponseCache) evictOldest() {
	if len(c.entries) == 0 {
		return
	}

	type pair struct {
		key   string
		value Entry
	}
	pairs := make([]pair, 0, len(c.entries))
	for key, value := range c.entries {
		pairs = append(pairs, pair{key: key, value: value})
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].value.CreatedAt.Before(pairs[j].value.CreatedAt)
	})
	delete(c.entries, pairs[0].key)
}
