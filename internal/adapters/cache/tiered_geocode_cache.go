package cache

import (
	"context"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/ports"
)

// TieredGeocodeCache fronts a shared store with an in-process cache.
// Hits from the backing store are promoted to the front.
type TieredGeocodeCache struct {
	front *MemoryGeocodeCache
	back  ports.GeocodeCache
}

func NewTieredGeocodeCache(back ports.GeocodeCache) *TieredGeocodeCache {
	return &TieredGeocodeCache{front: NewMemoryGeocodeCache(), back: back}
}

func (t *TieredGeocodeCache) Get(ctx context.Context, name string) (domain.Coordinates, bool, error) {
	if c, ok, _ := t.front.Get(ctx, name); ok {
		return c, true, nil
	}

	c, ok, err := t.back.Get(ctx, name)
	if err != nil || !ok {
		return domain.Coordinates{}, false, err
	}

	_ = t.front.Put(ctx, name, c)
	return c, true, nil
}

// Put fills the front, then writes to the backing store. A backing
// failure is returned but the front entry is kept.
func (t *TieredGeocodeCache) Put(ctx context.Context, name string, c domain.Coordinates) error {
	_ = t.front.Put(ctx, name, c)
	return t.back.Put(ctx, name, c)
}
