package pipeline

import (
	"encoding/json"
	"fmt"
	"itinerary-service/internal/domain"
	"strings"
	"time"
)

// ParseRequestRange parses the request dates in loc (UTC when nil).
func ParseRequestRange(req TravelRequest, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	from, err := time.ParseInLocation(DateLayout, strings.TrimSpace(req.DateFrom), loc)
	if err != nil {
		return time.Time{}, time.Time{}, &domain.InputError{Field: "date_from", Reason: fmt.Sprintf("expected %q", DateLayout)}
	}

	to, err := time.ParseInLocation(DateLayout, strings.TrimSpace(req.DateTo), loc)
	if err != nil {
		return time.Time{}, time.Time{}, &domain.InputError{Field: "date_to", Reason: fmt.Sprintf("expected %q", DateLayout)}
	}

	if !from.Before(to) {
		return time.Time{}, time.Time{}, &domain.InputError{Field: "date_to", Reason: "must be after date_from"}
	}

	return from, to, nil
}

// ValidateRequest rejects requests that cannot be planned.
func ValidateRequest(req TravelRequest) error {
	if strings.TrimSpace(req.Prompt) == "" {
		return &domain.InputError{Field: "prompt", Reason: "required"}
	}
	if strings.TrimSpace(req.Location) == "" {
		return &domain.InputError{Field: "location", Reason: "required"}
	}
	_, _, err := ParseRequestRange(req, time.UTC)
	return err
}

func payload(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(b)
}

func validatePlan(plan TravelPlan) error {
	for i, ft := range plan.FreeTimes {
		if ft.Start.IsZero() || !ft.Start.Before(ft.End) {
			return &domain.ParseError{
				Stage:   "plan",
				Reason:  fmt.Sprintf("free_times[%d] has an empty or inverted range", i),
				Payload: payload(plan),
			}
		}
	}
	return nil
}

// validateItinerary checks kinds and ordering. Items are non-decreasing
// within each segment, and segments start in order. The last items
// of one segment may run past the start of the next.
func validateItinerary(resp ItineraryResponse) error {
	fail := func(reason string) error {
		return &domain.ParseError{Stage: "itinerary", Reason: reason, Payload: payload(resp)}
	}

	var segmentStart time.Time
	for i, it := range resp.Itinerary {
		if !it.Kind.Known() {
			return fail(fmt.Sprintf("item %d has unknown type %q", i, it.Kind))
		}
		if it.Time.IsZero() {
			return fail(fmt.Sprintf("item %d has no time", i))
		}
		if it.EndTime != nil && it.EndTime.Before(it.Time) {
			return fail(fmt.Sprintf("item %d ends before it starts", i))
		}

		if it.Kind == domain.KindStart {
			if it.Time.Before(segmentStart) {
				return fail(fmt.Sprintf("segment at item %d starts before the previous segment", i))
			}
			segmentStart = it.Time
			continue
		}

		if i == 0 {
			return fail("itinerary does not begin with a start item")
		}
		if it.Time.Before(resp.Itinerary[i-1].Finish()) {
			return fail(fmt.Sprintf("item %d starts before item %d finishes", i, i-1))
		}
	}
	return nil
}
