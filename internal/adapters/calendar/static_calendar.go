package calendar

import (
	"context"
	"itinerary-service/internal/domain"
	"time"
)

// StaticCalendar serves a fixed event list. Used when no feed is configured.
type StaticCalendar struct {
	Events   []domain.CalendarEvent
	Location *time.Location
}

func (s StaticCalendar) ListEvents(_ context.Context, _ string, timeMin, timeMax time.Time) ([]domain.CalendarEvent, error) {
	out := make([]domain.CalendarEvent, 0, len(s.Events))
	for _, e := range s.Events {
		if overlaps(e.Start, e.End, timeMin, timeMax) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s StaticCalendar) Timezone(context.Context, string) (*time.Location, error) {
	return s.Location, nil
}
