package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/pardaaf/backoffice/pkg/catalog"
)

// tenantCache memoizes codename to gallery resolutions so authenticated
// requests do not pay a main-database round trip each time. Entries expire
// after the TTL, which bounds how long a renamed database stays stale.
type tenantCache struct {
	ttl time.Duration

	mu      sync.RWMutex
	entries map[string]tenantCacheEntry
}

type tenantCacheEntry struct {
	gallery   catalog.Gallery
	expiresAt time.Time
}

func newTenantCache(ttl time.Duration) *tenantCache {
	return &tenantCache{ttl: ttl, entries: make(map[string]tenantCacheEntry)}
}

func (c *tenantCache) get(codename string) (catalog.Gallery, bool) {
	c.mu.RLock()
	entry, ok := c.entries[codename]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return catalog.Gallery{}, false
	}
	return entry.gallery, true
}

func (c *tenantCache) set(codename string, gallery catalog.Gallery) {
	c.mu.Lock()
	c.entries[codename] = tenantCacheEntry{gallery: gallery, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// resolveTenant resolves a codename through the cache. Only successful
// lookups are cached; failures always retry the catalog, so a recovering
// main database clears itself.
func (s *Service) resolveTenant(ctx context.Context, codename string) (catalog.Gallery, error) {
	if gallery, ok := s.tenants.get(codename); ok {
		return gallery, nil
	}

	gallery, err := s.catalog.Resolve(ctx, codename)
	if err != nil {
		return catalog.Gallery{}, err
	}
	s.tenants.set(codename, gallery)
	return gallery, nil
}
