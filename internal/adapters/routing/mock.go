package routing

import (
	"context"
	"fmt"
	"itinerary-service/internal/domain"
	"strings"
	"sync"
)

// MockGeocoder resolves names from a fixed table and counts lookups.
type MockGeocoder struct {
	mu     sync.Mutex
	places map[string]domain.Coordinates
	calls  map[string]int
}

func NewMockGeocoder(places map[string]domain.Coordinates) *MockGeocoder {
	m := make(map[string]domain.Coordinates, len(places))
	for k, v := range places {
		m[strings.ToLower(k)] = v
	}
	return &MockGeocoder{places: m, calls: make(map[string]int)}
}

func (g *MockGeocoder) Geocode(ctx context.Context, name string) (domain.Coordinates, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := strings.ToLower(name)
	g.calls[key]++

	c, ok := g.places[key]
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("mock geocode %q: %w", name, domain.ErrNotFound)
	}
	return c, nil
}

// Calls returns how many times name was looked up.
func (g *MockGeocoder) Calls(name string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[strings.ToLower(name)]
}

// MockRouter returns Err when set, otherwise Seconds for every pair.
type MockRouter struct {
	Seconds int
	Err     error
}

func (r MockRouter) TravelSeconds(ctx context.Context, origin, destination domain.Coordinates) (int, error) {
	if r.Err != nil {
		return 0, r.Err
	}
	return r.Seconds, nil
}
