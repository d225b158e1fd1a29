package pipeline

import (
	"itinerary-service/internal/domain"
	"itinerary-service/internal/services"
)

// DateLayout is the wire format of TravelRequest dates.
const DateLayout = "2006-01-02 15:04"

// Message is anything exchanged between the coordinator and the stages.
// Every message carries the id of the request it belongs to.
type Message interface {
	CorrelationID() string
}

// Sender accepts messages without blocking the caller.
type Sender interface {
	Send(msg Message)
}

// Deliverer routes stage replies back to the owning coordinator.
type Deliverer interface {
	Deliver(msg Message)
}

type TravelRequest struct {
	RequestID   string             `json:"request_id"`
	Prompt      string             `json:"prompt"`
	Preferences domain.Preferences `json:"preferences"`
	DateFrom    string             `json:"date_from"`
	DateTo      string             `json:"date_to"`
	Location    string             `json:"location"`
}

type TravelPlan struct {
	RequestID   string                    `json:"request_id"`
	FreeTimes   []domain.FreeInterval     `json:"free_times"`
	Attractions domain.CategoryPreference `json:"attractions"`
	Events      domain.CategoryPreference `json:"events"`
	Lunch       domain.CategoryPreference `json:"lunch"`
	Dinner      domain.CategoryPreference `json:"dinner"`
}

// Categories returns the per-category preferences carried by the plan.
func (p TravelPlan) Categories() domain.CategoryPlan {
	return domain.CategoryPlan{
		Attractions: p.Attractions,
		Events:      p.Events,
		Lunch:       p.Lunch,
		Dinner:      p.Dinner,
	}
}

type ItineraryResponse struct {
	RequestID     string                `json:"request_id"`
	Itinerary     domain.Itinerary      `json:"itinerary"`
	TravelMinutes services.TravelMatrix `json:"travel_minutes,omitempty"`
}

type ErrorMessage struct {
	RequestID string `json:"request_id"`
	Error     string `json:"error"`
}

func (m TravelRequest) CorrelationID() string     { return m.RequestID }
func (m TravelPlan) CorrelationID() string        { return m.RequestID }
func (m ItineraryResponse) CorrelationID() string { return m.RequestID }
func (m ErrorMessage) CorrelationID() string      { return m.RequestID }
