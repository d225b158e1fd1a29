package cache

import (
	"context"
	"itinerary-service/internal/domain"
	"sync"
)

// MemoryGeocodeCache is an in-process append-only geocode cache.
// The first value stored for a name wins.
type MemoryGeocodeCache struct {
	m sync.Map
}

func NewMemoryGeocodeCache() *MemoryGeocodeCache {
	return &MemoryGeocodeCache{}
}

func (c *MemoryGeocodeCache) Get(_ context.Context, name string) (domain.Coordinates, bool, error) {
	v, ok := c.m.Load(name)
	if !ok {
		return domain.Coordinates{}, false, nil
	}
	return v.(domain.Coordinates), true, nil
}

func (c *MemoryGeocodeCache) Put(_ context.Context, name string, coords domain.Coordinates) error {
	c.m.LoadOrStore(name, coords)
	return nil
}
