// cache.go - In-memory cache for the category catalog

package storage

import (
	"sync"
	"time"
)

// CategoryCatalog holds the loaded category records plus a name lookup.
type CategoryCatalog struct {
	Records  []CategoryRecord
	byName   map[string]string // name -> guidfixed
	LoadedAt time.Time
}

var categoryCatalog *CategoryCatalog
var catalogMutex sync.RWMutex

const CACHE_TTL = 5 * time.Minute // Cache expires after 5 minutes

// GetOrLoadCategoryCatalog retrieves the catalog from cache or loads it
// from the database.
func GetOrLoadCategoryCatalog() (*CategoryCatalog, error) {
	catalogMutex.RLock()
	cache := categoryCatalog
	catalogMutex.RUnlock()

	if cache != nil && time.Since(cache.LoadedAt) < CACHE_TTL {
		return cache, nil
	}

	catalogMutex.Lock()
	defer catalogMutex.Unlock()

	// Double-check after acquiring write lock
	if categoryCatalog != nil && time.Since(categoryCatalog.LoadedAt) < CACHE_TTL {
		return categoryCatalog, nil
	}

	records, err := GetCategories()
	if err != nil {
		return nil, err
	}

	byName := make(map[string]string, len(records))
	for _, r := range records {
		byName[r.Name] = r.GuidFixed
	}

	categoryCatalog = &CategoryCatalog{
		Records:  records,
		byName:   byName,
		LoadedAt: time.Now(),
	}
	return categoryCatalog, nil
}

// GuidForName returns the UUID for a category display name, or "" when
// the name is not in the catalog.
func (c *CategoryCatalog) GuidForName(name string) string {
	if c == nil {
		return ""
	}
	return c.byName[name]
}

// InvalidateCategoryCache forces the next lookup to reload from the DB
func InvalidateCategoryCache() {
	catalogMutex.Lock()
	defer catalogMutex.Unlock()
	categoryCatalog = nil
}
