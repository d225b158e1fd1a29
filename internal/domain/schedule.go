package domain

import "time"

// ItemKind classifies a ScheduleItem.
type ItemKind string

const (
	KindStart      ItemKind = "start"
	KindAttraction ItemKind = "attraction"
	KindLunch      ItemKind = "lunch"
	KindDinner     ItemKind = "dinner"
	KindTravel     ItemKind = "travel"
	KindEnd        ItemKind = "end"
)

// Known reports whether k is one of the defined kinds.
func (k ItemKind) Known() bool {
	switch k {
	case KindStart, KindAttraction, KindLunch, KindDinner, KindTravel, KindEnd:
		return true
	}
	return false
}

// One placed unit of an itinerary. Items are never mutated once emitted.
type ScheduleItem struct {
	Kind          ItemKind    `json:"type"`
	Time          time.Time   `json:"time"`
	EndTime       *time.Time  `json:"end_time,omitempty"`
	Location      string      `json:"location"`
	Coordinates   Coordinates `json:"coordinates"`
	Description   string      `json:"description"`
	Rating        *float64    `json:"rating,omitempty"`
	PriceLevel    *int        `json:"price_level,omitempty"`
	TravelMinutes *int        `json:"travel_minutes,omitempty"`
}

// Finish returns EndTime when set, otherwise Time.
func (s ScheduleItem) Finish() time.Time {
	if s.EndTime != nil {
		return *s.EndTime
	}
	return s.Time
}

// Chronological sequence of schedule items across all free intervals.
type Itinerary []ScheduleItem
