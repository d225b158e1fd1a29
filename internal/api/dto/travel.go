package dto

import "itinerary-service/internal/domain"

type TravelRequest struct {
	Prompt      string             `json:"prompt"`
	Preferences domain.Preferences `json:"preferences"`
	DateFrom    string             `json:"date_from"`
	DateTo      string             `json:"date_to"`
	Location    string             `json:"location"`
}

type SubmitResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
}

type StatusResponse struct {
	RequestID      string  `json:"request_id"`
	Status         string  `json:"status"`
	State          string  `json:"state"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	Error          string  `json:"error,omitempty"`
}

// Times are local wall-clock times in "2006-01-02 15:04".
type ItineraryItemResponse struct {
	Type          string             `json:"type"`
	Time          string             `json:"time"`
	EndTime       string             `json:"end_time,omitempty"`
	Location      string             `json:"location"`
	Coordinates   domain.Coordinates `json:"coordinates"`
	Description   string             `json:"description"`
	Rating        *float64           `json:"rating,omitempty"`
	PriceLevel    *int               `json:"price_level,omitempty"`
	TravelMinutes *int               `json:"travel_minutes,omitempty"`
}

type ResultResponse struct {
	RequestID     string                    `json:"request_id"`
	Itinerary     []ItineraryItemResponse   `json:"itinerary"`
	TravelMinutes map[string]map[string]int `json:"travel_minutes,omitempty"`
}
