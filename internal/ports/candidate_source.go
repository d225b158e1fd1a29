package ports

import (
	"context"
	"itinerary-service/internal/domain"
)

type AttractionQuery struct {
	Center   domain.Coordinates
	RadiusM  int
	Keywords []string
}

type RestaurantQuery struct {
	Center   domain.Coordinates
	RadiusM  int
	MealType domain.Category
	Price    domain.PriceRange
	Keyword  string
}

// Port: a boundary for searching attractions and restaurants.
// Results are unranked; callers rank them once.
type CandidateSource interface {
	SearchAttractions(ctx context.Context, q AttractionQuery) ([]domain.Candidate, error)
	SearchRestaurants(ctx context.Context, q RestaurantQuery) ([]domain.Candidate, error)
}
