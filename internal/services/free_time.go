package services

import (
	"itinerary-service/internal/domain"
	"slices"
	"time"
)

// ComputeFreeIntervals derives the free spans of [dayStart, dayEnd) that are
// not covered by an opaque event.
//
// Events are walked in start order with a cursor; overlapping or nested
// busy events are merged implicitly because the cursor only moves forward.
// Interval endpoints take the location of the bounding events, falling
// back to fallbackLocation. All times are expressed in tz (UTC when nil).
func ComputeFreeIntervals(
	events []domain.CalendarEvent,
	dayStart time.Time,
	dayEnd time.Time,
	tz *time.Location,
	fallbackLocation string,
) ([]domain.FreeInterval, error) {
	if !dayStart.Before(dayEnd) {
		return nil, &domain.InputError{Field: "date range", Reason: "start must be before end"}
	}

	if tz == nil {
		tz = time.UTC
	}

	busy := make([]domain.CalendarEvent, 0, len(events))
	for _, ev := range events {
		if ev.Transparent {
			continue
		}
		// Events outside the range or with no duration never block time.
		if !ev.End.After(dayStart) || !ev.Start.Before(dayEnd) || !ev.End.After(ev.Start) {
			continue
		}

		if ev.Start.Before(dayStart) {
			ev.Start = dayStart
		}
		if ev.End.After(dayEnd) {
			ev.End = dayEnd
		}
		busy = append(busy, ev)
	}

	slices.SortStableFunc(busy, func(a, b domain.CalendarEvent) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return a.End.Compare(b.End)
	})

	free := make([]domain.FreeInterval, 0, len(busy)+1)
	cursor := dayStart
	cursorLocation := fallbackLocation

	for _, ev := range busy {
		if cursor.Before(ev.Start) {
			free = append(free, domain.FreeInterval{
				Start:         cursor.In(tz),
				End:           ev.Start.In(tz),
				StartLocation: cursorLocation,
				EndLocation:   locationOr(ev.Location, fallbackLocation),
			})
		}

		if ev.End.After(cursor) {
			cursor = ev.End
			cursorLocation = locationOr(ev.Location, fallbackLocation)
		}
	}

	if cursor.Before(dayEnd) {
		free = append(free, domain.FreeInterval{
			Start:         cursor.In(tz),
			End:           dayEnd.In(tz),
			StartLocation: cursorLocation,
			EndLocation:   fallbackLocation,
		})
	}

	return free, nil
}

func locationOr(loc, fallback string) string {
	if loc != "" {
		return loc
	}
	return fallback
}
