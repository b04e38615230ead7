// Package cache memoizes generated flowcharts keyed by source content and
// selector. Content is identified by a 64-bit digest, so edits invalidate
// naturally without any file watching on the cache's part.
package cache

import (
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/flowgen/internal/types"
)

// Key identifies one generation request, including the effective label
// limit: the same source and selector charted under a different limit is a
// different artifact.
type Key struct {
	Language   string
	Selector   string
	Digest     uint64
	LabelLimit int
}

// NewKey builds a key for src narrowed by selector. The selector string
// folds in whichever of function name or byte position the caller used;
// labelLimit is the limit the generated labels were truncated to.
func NewKey(language string, src []byte, selector string, labelLimit int) Key {
	return Key{
		Language:   language,
		Selector:   selector,
		Digest:     xxhash.Sum64(src),
		LabelLimit: labelLimit,
	}
}

// SelectorForName renders a function-name selector.
func SelectorForName(name string) string {
	return "fn:" + name
}

// SelectorForPosition renders a byte-position selector.
func SelectorForPosition(pos uint) string {
	return fmt.Sprintf("pos:%d", pos)
}

// Cache is a bounded memoization table. When full, an arbitrary entry is
// evicted; the table is small and regeneration is cheap, so recency
// ordering is not worth the bookkeeping.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]types.FlowchartIR
	max     int

	hits   uint64
	misses uint64
}

// New creates a cache holding at most max entries. max <= 0 disables
// storage entirely; Get always misses.
func New(max int) *Cache {
	return &Cache{
		entries: make(map[Key]types.FlowchartIR),
		max:     max,
	}
}

// Get returns the cached IR for key.
func (c *Cache) Get(key Key) (types.FlowchartIR, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ir, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return ir, ok
}

// Put stores the IR for key, evicting if the table is full.
func (c *Cache) Put(key Key, ir types.FlowchartIR) {
	if c.max <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.max {
		for victim := range c.entries {
			delete(c.entries, victim)
			break
		}
	}
	c.entries[key] = ir
}

// Invalidate drops every entry for the given language/path-independent
// digest, typically after a watched file changed.
func (c *Cache) Invalidate(digest uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if key.Digest == digest {
			delete(c.entries, key)
		}
	}
}

// Len reports the number of stored entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats reports hit and miss counts since creation.
func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
