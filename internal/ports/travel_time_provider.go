package ports

import (
	"context"
	"itinerary-service/internal/domain"
)

// Contract for retrieving travel duration between two coordinates.
type TravelTimeProvider interface {
	// Return estimated travel time in seconds.
	TravelSeconds(ctx context.Context, origin, destination domain.Coordinates) (int, error)
}

// Persistent cache of routed travel times keyed by coordinate pair.
type TravelTimeCache interface {
	GetSeconds(ctx context.Context, origin, destination string) (int, bool, error)
	PutSeconds(ctx context.Context, origin, destination string, seconds int) error
}
