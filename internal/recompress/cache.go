package recompress

import (
	"sync"
	"time"

	"pdfbinder/internal/common"
)

// cacheKey is the composite natural key for one recompression result.
// A same-named, same-sized file with a different modification time is a miss.
type cacheKey struct {
	name    string
	size    int64
	modTime int64
}

func keyFor(f common.File) cacheKey {
	return cacheKey{
		name:    f.Name,
		size:    f.Size(),
		modTime: f.ModTime.Truncate(time.Millisecond).UnixMilli(),
	}
}

// resultCache holds recompression outcomes for the lifetime of the
// recompressor. It never evicts and never invalidates.
type resultCache struct {
	mu      sync.Mutex
	entries map[cacheKey]Outcome
}

func newResultCache() *resultCache {
	return &resultCache{entries: make(map[cacheKey]Outcome)}
}

func (c *resultCache) get(key cacheKey) (Outcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	outcome, ok := c.entries[key]
	return outcome, ok
}

func (c *resultCache) put(key cacheKey, outcome Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = outcome
}

func (c *resultCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
