package ports

import (
	"context"
	"itinerary-service/internal/domain"
	"time"
)

// Port: read-only access to a user's calendar.
type CalendarSource interface {
	// Return events overlapping [timeMin, timeMax).
	ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]domain.CalendarEvent, error)
	// Return the calendar's timezone, or nil when unknown.
	Timezone(ctx context.Context, calendarID string) (*time.Location, error)
}
