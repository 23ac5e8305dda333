package cache

import (
	"sync"

	"github.com/fixitnow/maintenance-backend/internal/models"
)

// StaffListCache caches eligible-staff lists per category. Entries live
// until explicitly invalidated by a staff directory mutation; there is no
// TTL. Implementations treat backend failures as cache misses, never as
// errors, because staff listing is advisory.
type StaffListCache interface {
	Get(category models.Category) ([]*models.User, bool)
	Set(category models.Category, staff []*models.User)
	Invalidate(category models.Category)
}

// MemoryCache is an in-process StaffListCache
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[models.Category][]*models.User
}

// NewMemoryCache creates an empty in-process cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[models.Category][]*models.User),
	}
}

// Get returns the cached list for a category
func (c *MemoryCache) Get(category models.Category) ([]*models.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	staff, ok := c.entries[category]
	return staff, ok
}

// Set stores the list for a category
func (c *MemoryCache) Set(category models.Category, staff []*models.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[category] = staff
}

// Invalidate drops the cached list for a category
func (c *MemoryCache) Invalidate(category models.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, category)
}
