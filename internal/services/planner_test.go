package services

import (
	"context"
	"errors"
	"itinerary-service/internal/adapters/cache"
	"itinerary-service/internal/adapters/routing"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/ports"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu          sync.Mutex
	attractions []domain.Candidate
	restaurants map[domain.Category][]domain.Candidate
	failDinner  bool
	meals       []ports.RestaurantQuery
}

func (f *fakeSource) SearchAttractions(ctx context.Context, q ports.AttractionQuery) ([]domain.Candidate, error) {
	return f.attractions, nil
}

func (f *fakeSource) SearchRestaurants(ctx context.Context, q ports.RestaurantQuery) ([]domain.Candidate, error) {
	f.mu.Lock()
	f.meals = append(f.meals, q)
	f.mu.Unlock()

	if f.failDinner && q.MealType == domain.CategoryDinner {
		return nil, errors.New("places api unavailable")
	}
	return f.restaurants[q.MealType], nil
}

func newPlanner(source ports.CandidateSource) *ItineraryPlanner {
	estimator := NewDistanceEstimator(
		routing.NewMockGeocoder(parisMap),
		routing.MockRouter{Seconds: 600},
		cache.NewMemoryGeocodeCache(),
		time.Second,
	)
	return NewItineraryPlanner(estimator, source)
}

func TestPlanItinerary(t *testing.T) {
	source := &fakeSource{
		attractions: []domain.Candidate{
			{Name: "Panthéon", Rating: 4.6, Coordinates: louvre},
			{Name: "Musée d'Orsay", Rating: 4.8, Coordinates: orsay},
			{Name: "Broken", Rating: 5, Coordinates: domain.Coordinates{Lat: 200}},
			{Name: "Sainte-Chapelle", Rating: 4.7, ReviewCount: 10, Coordinates: louvre},
		},
		restaurants: map[domain.Category][]domain.Candidate{
			domain.CategoryLunch:  {{Name: "Le Fumoir", Rating: 4.3, Coordinates: louvre}},
			domain.CategoryDinner: {{Name: "Chez Late", Rating: 4.0, Coordinates: louvre}},
		},
		failDinner: true,
	}

	freeTimes := []domain.FreeInterval{
		{Start: at(16, 0), End: at(18, 0), StartLocation: "Musée d'Orsay", EndLocation: "Eiffel Tower"},
		{Start: at(10, 0), End: at(14, 0), StartLocation: "Louvre Museum", EndLocation: "Musée d'Orsay"},
		{Start: at(18, 0), End: at(22, 0), StartLocation: "Atlantis", EndLocation: "Eiffel Tower"},
	}

	categories := domain.CategoryPlan{
		Attractions: domain.CategoryPreference{Keywords: []string{"museum"}},
		Lunch:       domain.CategoryPreference{Keywords: []string{"", "french"}, MinBudget: 20, MaxBudget: 60},
	}

	got, err := newPlanner(source).PlanItinerary(context.Background(), freeTimes, categories)
	require.NoError(t, err)

	// The Atlantis interval is skipped, the rest are ordered by start.
	require.Equal(t, 2, countKind(got.Itinerary, domain.KindStart))
	assert.Equal(t, at(10, 0), got.Itinerary[0].Time)
	assertWellFormed(t, got.Itinerary)

	seen := map[string]bool{}
	for _, it := range got.Itinerary {
		if it.Kind == domain.KindAttraction || it.Kind == domain.KindLunch {
			assert.False(t, seen[it.Location], "duplicate %q", it.Location)
			seen[it.Location] = true
			assert.NotEqual(t, "Broken", it.Location)
		}
	}
	assert.True(t, seen["Le Fumoir"])
	assert.True(t, seen["Musée d'Orsay"])

	// Only the morning interval overlaps lunch; no resolved interval overlaps dinner.
	require.Len(t, source.meals, 1)
	assert.Equal(t, domain.CategoryLunch, source.meals[0].MealType)
	assert.Equal(t, "french", source.meals[0].Keyword)
	assert.Equal(t, domain.PriceRange{Min: 1, Max: 3}, source.meals[0].Price)
	assert.Equal(t, RestaurantRadiusM, source.meals[0].RadiusM)

	require.Contains(t, got.TravelMinutes, "Louvre Museum")
	assert.Equal(t, 0, got.TravelMinutes["Louvre Museum"]["Louvre Museum"])
	assert.Contains(t, got.TravelMinutes["Louvre Museum"], "Eiffel Tower")
	assert.NotContains(t, got.TravelMinutes, "Atlantis")
}

func TestPlanItineraryDinnerSearchFailure(t *testing.T) {
	source := &fakeSource{
		restaurants: map[domain.Category][]domain.Candidate{
			domain.CategoryDinner: {{Name: "Chez Late", Rating: 4.0, Coordinates: louvre}},
		},
		failDinner: true,
	}

	got, err := newPlanner(source).PlanItinerary(context.Background(), []domain.FreeInterval{
		{Start: at(17, 0), End: at(21, 0), StartLocation: "Louvre Museum", EndLocation: "Eiffel Tower"},
	}, domain.CategoryPlan{})
	require.NoError(t, err)

	assert.Zero(t, countKind(got.Itinerary, domain.KindDinner))
	assert.Equal(t, 1, countKind(got.Itinerary, domain.KindEnd))
}

func TestPlanItineraryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newPlanner(&fakeSource{}).PlanItinerary(ctx, []domain.FreeInterval{
		{Start: at(9, 0), End: at(12, 0), StartLocation: "Louvre Museum", EndLocation: "Eiffel Tower"},
	}, domain.CategoryPlan{})
	require.ErrorIs(t, err, context.Canceled)
}
