package scanner

import (
	"sync"
	"unique"
)

// importEntry is the cached import list of one file at one content hash.
type importEntry struct {
	hash    uint64
	imports []string
}

// ImportCache remembers the import specifiers of each scanned file keyed by
// content hash, so unchanged files are never parsed twice.
type ImportCache struct {
	mu      sync.RWMutex
	entries map[unique.Handle[string]]importEntry
}

// NewImportCache creates an empty ImportCache.
func NewImportCache() *ImportCache {
	return &ImportCache{entries: make(map[unique.Handle[string]]importEntry)}
}

// Get returns the cached imports of path if they were stored for hash.
func (c *ImportCache) Get(path string, hash uint64) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[unique.Make(path)]
	if !ok || entry.hash != hash {
		return nil, false
	}
	return entry.imports, true
}

// Put stores the imports of path at hash, replacing any previous entry.
func (c *ImportCache) Put(path string, hash uint64, imports []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[unique.Make(path)] = importEntry{hash: hash, imports: imports}
}

// Invalidate drops the entries of the given paths.
func (c *ImportCache) Invalidate(paths []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, path := range paths {
		delete(c.entries, unique.Make(path))
	}
}

// Len returns the number of cached files.
func (c *ImportCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
