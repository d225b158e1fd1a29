package services

import (
	"context"
	"fmt"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/platform/obs"
	"itinerary-service/internal/ports"
	"log"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	AttractionRadiusM = 10000
	RestaurantRadiusM = 1500

	// Bound on concurrent collaborator calls per request.
	prepareConcurrency = 8
)

// PlannedItinerary is the output of the schedule stage.
type PlannedItinerary struct {
	Itinerary     domain.Itinerary
	TravelMinutes TravelMatrix
}

// ItineraryPlanner turns free intervals and category preferences into a
// full itinerary. Geocoding and candidate search run concurrently;
// intervals are then scheduled in order so candidate names stay unique
// across the whole itinerary.
type ItineraryPlanner struct {
	estimator *DistanceEstimator
	scheduler *ItineraryScheduler
	source    ports.CandidateSource
}

func NewItineraryPlanner(estimator *DistanceEstimator, source ports.CandidateSource) *ItineraryPlanner {
	return &ItineraryPlanner{
		estimator: estimator,
		scheduler: NewItineraryScheduler(estimator),
		source:    source,
	}
}

func (p *ItineraryPlanner) PlanItinerary(
	ctx context.Context,
	freeTimes []domain.FreeInterval,
	categories domain.CategoryPlan,
) (_ PlannedItinerary, err error) {
	defer obs.Time(ctx, "planner.planItinerary")(&err)

	intervals := slices.Clone(freeTimes)
	slices.SortStableFunc(intervals, func(a, b domain.FreeInterval) int { return a.Start.Compare(b.Start) })

	resolved := p.resolve(ctx, intervals)

	sets := make([]domain.CandidateSet, len(resolved))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(prepareConcurrency)
	for i, ri := range resolved {
		if ri == nil {
			continue
		}
		g.Go(func() error {
			sets[i] = RankSet(p.gather(gctx, *ri, categories))
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return PlannedItinerary{}, fmt.Errorf("plan itinerary: %w", err)
	}

	used := make(map[string]struct{})
	itinerary := make(domain.Itinerary, 0, 8*len(resolved))
	var locations []NamedLocation

	for i, ri := range resolved {
		if ri == nil {
			continue
		}

		itinerary = append(itinerary, p.scheduler.BuildSegment(ctx, *ri, sets[i], used)...)

		locations = append(locations,
			NamedLocation{Name: ri.StartLocation, Coordinates: ri.StartCoords},
			NamedLocation{Name: ri.EndLocation, Coordinates: ri.EndCoords},
		)
		for _, list := range [][]domain.Candidate{sets[i].Attractions, sets[i].Lunch, sets[i].Dinner} {
			for _, c := range list {
				locations = append(locations, NamedLocation{Name: c.Name, Coordinates: c.Coordinates})
			}
		}
	}

	return PlannedItinerary{
		Itinerary:     itinerary,
		TravelMinutes: Matrix(locations),
	}, nil
}

// resolve geocodes interval endpoints. Entries for intervals that could
// not be resolved are nil.
func (p *ItineraryPlanner) resolve(ctx context.Context, intervals []domain.FreeInterval) []*domain.ResolvedInterval {
	out := make([]*domain.ResolvedInterval, len(intervals))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(prepareConcurrency)
	for i, iv := range intervals {
		g.Go(func() error {
			start, okStart := p.estimator.Geocode(gctx, iv.StartLocation)
			end, okEnd := p.estimator.Geocode(gctx, iv.EndLocation)
			if !okStart || !okEnd {
				log.Printf(
					"req_id=%s skipping interval start=%s end=%s start_location=%q end_location=%q: geocoding failed",
					obs.RequestID(ctx), iv.Start.Format(time.RFC3339), iv.End.Format(time.RFC3339), iv.StartLocation, iv.EndLocation,
				)
				return nil
			}
			out[i] = &domain.ResolvedInterval{FreeInterval: iv, StartCoords: start, EndCoords: end}
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// gather searches every category the interval can use. A failed search
// leaves its category empty.
func (p *ItineraryPlanner) gather(ctx context.Context, ri domain.ResolvedInterval, categories domain.CategoryPlan) domain.CandidateSet {
	var set domain.CandidateSet
	if p.source == nil {
		return set
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		set.Attractions = p.search(gctx, domain.CategoryAttraction, func() ([]domain.Candidate, error) {
			return p.source.SearchAttractions(gctx, ports.AttractionQuery{
				Center:   ri.StartCoords,
				RadiusM:  AttractionRadiusM,
				Keywords: categories.Attractions.Keywords,
			})
		})
		return nil
	})

	meals := []struct {
		kind   domain.Category
		window mealWindow
		pref   domain.CategoryPreference
		dst    *[]domain.Candidate
	}{
		{domain.CategoryLunch, lunchWindow, categories.Lunch, &set.Lunch},
		{domain.CategoryDinner, dinnerWindow, categories.Dinner, &set.Dinner},
	}
	for _, m := range meals {
		if !m.window.overlaps(ri.Start, ri.End) {
			continue
		}
		g.Go(func() error {
			*m.dst = p.search(gctx, m.kind, func() ([]domain.Candidate, error) {
				return p.source.SearchRestaurants(gctx, ports.RestaurantQuery{
					Center:   ri.StartCoords,
					RadiusM:  RestaurantRadiusM,
					MealType: m.kind,
					Price:    m.pref.PriceRange(),
					Keyword:  m.pref.Keyword(),
				})
			})
			return nil
		})
	}

	_ = g.Wait()
	return set
}

func (p *ItineraryPlanner) search(ctx context.Context, category domain.Category, fn func() ([]domain.Candidate, error)) []domain.Candidate {
	found, err := fn()
	if err != nil {
		err = &domain.CollaboratorError{Collaborator: "search " + string(category), Err: err}
		log.Printf("req_id=%s candidate search failed, skipping category: %v", obs.RequestID(ctx), err)
		return nil
	}

	// Only candidates with usable coordinates can be placed.
	out := found[:0:0]
	for _, c := range found {
		if c.Name == "" || !c.Coordinates.Valid() {
			continue
		}
		out = append(out, c)
	}
	return out
}
