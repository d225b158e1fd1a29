package domain

import "time"

// A busy (or transparent) commitment read from a calendar.
// Transparent events do not block time.
type CalendarEvent struct {
	Summary     string    `json:"summary,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Location    string    `json:"location,omitempty"`
	Transparent bool      `json:"transparent"`
}

// A maximal span with no opposing calendar commitment.
// Start is inclusive, End is exclusive.
type FreeInterval struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	StartLocation string    `json:"start_location"`
	EndLocation   string    `json:"end_location"`
}

// Duration returns the length of the interval.
func (f FreeInterval) Duration() time.Duration { return f.End.Sub(f.Start) }

// A FreeInterval whose endpoint locations have been geocoded.
type ResolvedInterval struct {
	FreeInterval
	StartCoords Coordinates
	EndCoords   Coordinates
}
