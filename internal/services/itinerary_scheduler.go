package services

import (
	"context"
	"fmt"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/platform/obs"
	"log"
	"time"
)

const (
	attractionDuration = 120 * time.Minute
	lunchDuration      = 60 * time.Minute
	dinnerDuration     = 90 * time.Minute
	idleStep           = 30 * time.Minute
	endBuffer          = 30 * time.Minute

	// Upper bound on loop iterations for a single interval.
	maxSchedulerSteps = 1000
)

// A half-open window [Start, End) expressed as minutes after local midnight.
type mealWindow struct {
	Start, End int
}

var (
	lunchWindow  = mealWindow{Start: 11*60 + 30, End: 14 * 60}
	dinnerWindow = mealWindow{Start: 18 * 60, End: 21 * 60}
)

func (w mealWindow) contains(t time.Time) bool {
	m := t.Hour()*60 + t.Minute()
	return m >= w.Start && m < w.End
}

// bounds returns the window on the local day of t.
func (w mealWindow) bounds(t time.Time) (time.Time, time.Time) {
	y, mo, d := t.Date()
	midnight := time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
	return midnight.Add(time.Duration(w.Start) * time.Minute), midnight.Add(time.Duration(w.End) * time.Minute)
}

// overlaps reports whether [start, end) intersects the window on any local day it spans.
func (w mealWindow) overlaps(start, end time.Time) bool {
	y, mo, d := start.Date()
	for day := time.Date(y, mo, d, 0, 0, 0, 0, start.Location()); day.Before(end); day = day.AddDate(0, 0, 1) {
		ws, we := w.bounds(day)
		if start.Before(we) && ws.Before(end) {
			return true
		}
	}
	return false
}

// ItineraryScheduler fills a free interval with ranked candidates in a
// single greedy forward pass. A placement is never revisited.
type ItineraryScheduler struct {
	estimator *DistanceEstimator
}

func NewItineraryScheduler(estimator *DistanceEstimator) *ItineraryScheduler {
	return &ItineraryScheduler{estimator: estimator}
}

// picker walks one ranked list, skipping names already used in the itinerary.
type picker struct {
	list []domain.Candidate
	next int
}

func (p *picker) peek(used map[string]struct{}) (domain.Candidate, bool) {
	for p.next < len(p.list) {
		c := p.list[p.next]
		if _, taken := used[c.Name]; !taken {
			return c, true
		}
		p.next++
	}
	return domain.Candidate{}, false
}

// BuildSegment produces the schedule items for one interval.
// Candidate lists must already be ranked. used is shared across the
// intervals of one itinerary and is updated with every placed name.
func (s *ItineraryScheduler) BuildSegment(
	ctx context.Context,
	interval domain.ResolvedInterval,
	candidates domain.CandidateSet,
	used map[string]struct{},
) []domain.ScheduleItem {
	if used == nil {
		used = make(map[string]struct{})
	}

	tz := interval.Start.Location()

	items := []domain.ScheduleItem{{
		Kind:        domain.KindStart,
		Time:        interval.Start,
		Location:    interval.StartLocation,
		Coordinates: interval.StartCoords,
		Description: "Starting point",
	}}

	currentTime := interval.Start
	currentCoords := interval.StartCoords

	lunch := &picker{list: candidates.Lunch}
	dinner := &picker{list: candidates.Dinner}
	attractions := &picker{list: candidates.Attractions}

	place := func(kind domain.ItemKind, c domain.Candidate, d time.Duration, desc string) {
		end := currentTime.Add(d)
		travel := FastMinutes(currentCoords, c.Coordinates)
		item := domain.ScheduleItem{
			Kind:          kind,
			Time:          currentTime,
			EndTime:       &end,
			Location:      c.Name,
			Coordinates:   c.Coordinates,
			Description:   desc,
			PriceLevel:    c.PriceLevel,
			TravelMinutes: &travel,
		}
		if c.Rating > 0 {
			rating := c.Rating
			item.Rating = &rating
		}

		items = append(items, item)
		used[c.Name] = struct{}{}
		currentTime = end
		currentCoords = c.Coordinates
	}

	steps := 0
	for currentTime.Add(endBuffer).Before(interval.End) {
		if steps++; steps > maxSchedulerSteps {
			log.Printf("req_id=%s scheduler iteration cap reached start=%s at=%s", obs.RequestID(ctx), interval.Start.Format(time.RFC3339), currentTime.Format(time.RFC3339))
			break
		}

		local := currentTime.In(tz)

		if lunchWindow.contains(local) {
			if c, ok := lunch.peek(used); ok {
				place(domain.KindLunch, c, lunchDuration, "Lunch at "+c.Name)
				continue
			}
		}

		if dinnerWindow.contains(local) {
			if c, ok := dinner.peek(used); ok {
				place(domain.KindDinner, c, dinnerDuration, "Dinner at "+c.Name)
				continue
			}
		}

		if c, ok := attractions.peek(used); ok {
			place(domain.KindAttraction, c, attractionDuration, "Visit "+c.Name)
			continue
		}

		currentTime = currentTime.Add(idleStep)
	}

	travelSeconds := s.estimator.TravelSeconds(ctx, currentCoords, interval.EndCoords)
	travelEnd := currentTime.Add(time.Duration(travelSeconds) * time.Second)
	travelMinutes := travelSeconds / 60
	items = append(items, domain.ScheduleItem{
		Kind:          domain.KindTravel,
		Time:          currentTime,
		EndTime:       &travelEnd,
		Location:      interval.EndLocation,
		Coordinates:   interval.EndCoords,
		Description:   fmt.Sprintf("Travel to final destination (%d minutes)", travelMinutes),
		TravelMinutes: &travelMinutes,
	})

	items = append(items, domain.ScheduleItem{
		Kind:        domain.KindEnd,
		Time:        travelEnd,
		Location:    interval.EndLocation,
		Coordinates: interval.EndCoords,
		Description: "End of itinerary",
	})

	return items
}
