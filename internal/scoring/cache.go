package scoring

import (
	"sync"

	"github.com/sells-group/siteiq/internal/model"
	"github.com/sells-group/siteiq/internal/regress"
)

// cachedModel is a fully constructed cache entry: decoded regressor plus the
// artifact metadata that defines its column order.
type cachedModel struct {
	reg  regress.Regressor
	meta model.ModelMetadata
}

// ModelCache is the shared per-category model cache. Entries are built
// completely before insertion and replaced as a whole under the lock, so
// concurrent readers never observe a half-initialized entry.
type ModelCache struct {
	mu      sync.RWMutex
	entries map[model.Category]*cachedModel
}

// NewModelCache creates an empty cache.
func NewModelCache() *ModelCache {
	return &ModelCache{entries: make(map[model.Category]*cachedModel)}
}

// Get returns the cached entry for a category.
func (c *ModelCache) Get(category model.Category) (*cachedModel, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[category]
	return entry, ok
}

// Put atomically replaces the entry for a category.
func (c *ModelCache) Put(category model.Category, entry *cachedModel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[category] = entry
}

// Invalidate drops the entry for a category, forcing the next score call to
// reload from the store. Called after a training run activates a new
// artifact.
func (c *ModelCache) Invalidate(category model.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, category)
}
