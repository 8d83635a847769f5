package pipeline

import (
	"sync"

	"github.com/cespare/xxhash"
	"github.com/dgallion1/guides/internal/doctree"
)

// Fingerprint returns the xxhash of source bytes.
func Fingerprint(data []byte) uint64 {
	return xxhash.Sum64(data)
}

type cacheEntry struct {
	sum uint64
	doc *doctree.Document
}

// Cache keeps parsed documents between builds, keyed by source path and
// fingerprint. A nil *Cache caches nothing.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry)}
}

// Get returns the document parsed from path when its fingerprint still
// matches sum.
func (c *Cache) Get(path string, sum uint64) (*doctree.Document, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[path]
	if !ok || e.sum != sum {
		return nil, false
	}
	return e.doc, true
}

// Put records doc for path. It reports whether the entry changed, which is
// false when doc is the document already cached for sum.
func (c *Cache) Put(path string, sum uint64, doc *doctree.Document) bool {
	if c == nil {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[path]; ok && e.sum == sum && e.doc == doc {
		return false
	}
	c.entries[path] = cacheEntry{sum: sum, doc: doc}
	return true
}

// Prune drops entries whose path is not in keep.
func (c *Cache) Prune(keep map[string]bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for p := range c.entries {
		if !keep[p] {
			delete(c.entries, p)
		}
	}
}

// Len returns the number of cached documents.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
