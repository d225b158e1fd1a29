package api

import (
	"itinerary-service/internal/api/handlers"
	"net/http"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
func NewRouter(p handlers.TravelPipeline, defaultLocation string) http.Handler {
	mux := http.NewServeMux()

	travel := &handlers.TravelHandler{
		Pipeline:        p,
		DefaultLocation: defaultLocation,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/travel/request", travel.Submit)
	mux.HandleFunc("/travel/status/{id}", travel.Status)
	mux.HandleFunc("/travel/result/{id}", travel.Result)

	return loggingMiddleware(mux)
}
