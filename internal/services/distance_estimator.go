package services

import (
	"context"
	"errors"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/platform/obs"
	"itinerary-service/internal/ports"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	// Assumed average urban speed for the fast estimate.
	urbanSpeedKmh = 30.0

	// FallbackTravelSeconds is used whenever the routing collaborator fails.
	FallbackTravelSeconds = 1800

	defaultTravelLookupTimeout = 10 * time.Second
)

// DistanceEstimator estimates travel time between locations.
//
// It offers a deterministic fast estimate (no I/O), an authoritative
// routed estimate with a fixed fallback, and cached geocoding. The
// estimator is safe for concurrent use; the geocode cache is the only
// state shared between requests.
type DistanceEstimator struct {
	geocoder      ports.Geocoder
	router        ports.TravelTimeProvider
	cache         ports.GeocodeCache
	group         singleflight.Group
	lookupTimeout time.Duration
}

func NewDistanceEstimator(
	geocoder ports.Geocoder,
	router ports.TravelTimeProvider,
	cache ports.GeocodeCache,
	lookupTimeout time.Duration,
) *DistanceEstimator {
	if lookupTimeout <= 0 {
		lookupTimeout = defaultTravelLookupTimeout
	}

	return &DistanceEstimator{
		geocoder:      geocoder,
		router:        router,
		cache:         cache,
		lookupTimeout: lookupTimeout,
	}
}

// FastMinutes estimates travel minutes from straight-line distance at an
// average urban speed.
func FastMinutes(a, b domain.Coordinates) int {
	hours := domain.DistanceKm(a, b) / urbanSpeedKmh
	return int(hours * 60)
}

// A named point used to build a travel matrix.
type NamedLocation struct {
	Name        string
	Coordinates domain.Coordinates
}

// TravelMatrix maps origin name -> destination name -> estimated minutes.
type TravelMatrix map[string]map[string]int

// Matrix builds the all-pairs fast estimate. Duplicate names keep the
// first coordinates seen.
func Matrix(locations []NamedLocation) TravelMatrix {
	uniq := make([]NamedLocation, 0, len(locations))
	seen := make(map[string]struct{}, len(locations))
	for _, l := range locations {
		if _, ok := seen[l.Name]; ok {
			continue
		}
		seen[l.Name] = struct{}{}
		uniq = append(uniq, l)
	}

	m := make(TravelMatrix, len(uniq))
	for _, origin := range uniq {
		row := make(map[string]int, len(uniq))
		for _, dest := range uniq {
			if origin.Name == dest.Name {
				row[dest.Name] = 0
				continue
			}
			row[dest.Name] = FastMinutes(origin.Coordinates, dest.Coordinates)
		}
		m[origin.Name] = row
	}

	return m
}

// TravelSeconds returns the routed travel time, or FallbackTravelSeconds
// when the router fails or exceeds the lookup timeout. Errors are logged,
// never returned.
func (e *DistanceEstimator) TravelSeconds(ctx context.Context, origin, destination domain.Coordinates) int {
	if e.router == nil {
		return FallbackTravelSeconds
	}

	lookupCtx, cancel := context.WithTimeout(ctx, e.lookupTimeout)
	defer cancel()

	seconds, err := e.router.TravelSeconds(lookupCtx, origin, destination)
	if err != nil {
		log.Printf(
			"req_id=%s travel lookup failed origin=%s dest=%s fallback=%ds err=%v",
			obs.RequestID(ctx), origin.Key(), destination.Key(), FallbackTravelSeconds, err,
		)
		return FallbackTravelSeconds
	}

	if seconds < 0 {
		log.Printf("req_id=%s travel lookup returned negative duration=%d fallback=%ds", obs.RequestID(ctx), seconds, FallbackTravelSeconds)
		return FallbackTravelSeconds
	}

	return seconds
}

// normalize ensures consistent cache keys by collapsing whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Geocode resolves name through the cache, calling the geocoder on a miss.
// ok is false when the name cannot be resolved; failures are not cached.
func (e *DistanceEstimator) Geocode(ctx context.Context, name string) (_ domain.Coordinates, ok bool) {
	key := normalize(name)
	if key == "" {
		return domain.Coordinates{}, false
	}

	if e.cache != nil {
		c, hit, err := e.cache.Get(ctx, key)
		if err != nil {
			log.Printf("req_id=%s geocode cache read failed name=%q err=%v", obs.RequestID(ctx), key, err)
		} else if hit {
			return c, true
		}
	}

	if e.geocoder == nil {
		return domain.Coordinates{}, false
	}

	// Concurrent misses for the same key share one external call. The call
	// is detached from the first caller's cancellation; each caller still
	// stops waiting on its own ctx.
	ch := e.group.DoChan(key, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.lookupTimeout)
		defer cancel()
		return e.lookup(lookupCtx, key)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		log.Printf("req_id=%s geocode abandoned name=%q err=%v", obs.RequestID(ctx), key, ctx.Err())
		return domain.Coordinates{}, false
	case res = <-ch:
	}

	v, err := res.Val, res.Err
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Printf("req_id=%s geocode no result name=%q", obs.RequestID(ctx), key)
		} else {
			log.Printf("req_id=%s geocode failed name=%q err=%v", obs.RequestID(ctx), key, err)
		}
		return domain.Coordinates{}, false
	}

	return v.(domain.Coordinates), true
}

func (e *DistanceEstimator) lookup(ctx context.Context, key string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "estimator.geocode")(&err)

	c, err := e.geocoder.Geocode(ctx, key)
	if err != nil {
		return domain.Coordinates{}, &domain.CollaboratorError{Collaborator: "geocode", Err: err}
	}

	if !c.Valid() {
		return domain.Coordinates{}, &domain.CollaboratorError{
			Collaborator: "geocode",
			Err:          errors.New("geocoder returned out-of-range coordinates"),
		}
	}

	if e.cache != nil {
		if err := e.cache.Put(ctx, key, c); err != nil {
			log.Printf("req_id=%s geocode cache write failed name=%q err=%v", obs.RequestID(ctx), key, err)
		}
	}

	return c, nil
}
