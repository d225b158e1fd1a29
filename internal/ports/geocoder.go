package ports

import (
	"context"
	"itinerary-service/internal/domain"
)

// Contract for resolving a place name to coordinates.
type Geocoder interface {
	// Return coordinates for name, or domain.ErrNotFound when there is no match.
	Geocode(ctx context.Context, name string) (domain.Coordinates, error)
}

// Append-only store of name -> coordinates.
// Values are immutable once stored; writing an existing key is a no-op.
type GeocodeCache interface {
	Get(ctx context.Context, name string) (domain.Coordinates, bool, error)
	Put(ctx context.Context, name string, c domain.Coordinates) error
}
