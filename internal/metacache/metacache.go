// Package metacache holds derived plan and table metadata across
// analysis passes. It is the only state that survives a pass: created
// once at host startup, passed by reference into each pass, and
// invalidated explicitly when the host learns that schema or metadata
// changed. Invalidation replaces the whole map; entries are never
// mutated in place.
package metacache

import (
	"sync"

	"github.com/sondelabs/querywatch/internal/diag"
)

// Cache is a read-mostly map from statement fingerprint to the plan
// summary a previous pass obtained for it.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*diag.Plan
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[string]*diag.Plan)}
}

// Get returns the cached plan for a fingerprint, if present.
func (c *Cache) Get(fingerprint string) (*diag.Plan, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	plan, ok := c.entries[fingerprint]
	return plan, ok
}

// Put stores a plan for a fingerprint.
func (c *Cache) Put(fingerprint string, plan *diag.Plan) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fingerprint] = plan
}

// Invalidate drops every entry. Called by the host on schema change.
func (c *Cache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*diag.Plan)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
