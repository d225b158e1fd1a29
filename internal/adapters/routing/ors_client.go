package routing

import (
	"errors"
	"itinerary-service/internal/ports"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const DefaultORSBaseURL = "https://api.openrouteservice.org"

// ORSClient implements Geocoder and TravelTimeProvider using OpenRouteService.
//
// It coordinates:
//   - Client-side rate limiting shared by all endpoints
//   - Optional persistent travel-time caching
//   - External API calls with retry/backoff
//
// The client is safe for concurrent use.
type ORSClient struct {
	session    *http.Client
	apiKey     string
	baseURL    string
	profile    string
	limiter    *rate.Limiter
	travelTime ports.TravelTimeCache
	backoff    time.Duration
}

type ORSOptions struct {
	APIKey  string
	BaseURL string
	// Profile is the ORS routing profile, driving-car by default.
	Profile string
	// RatePerSec limits outbound requests; zero or less disables limiting.
	RatePerSec float64
	// TravelTimeCache is consulted before calling the matrix endpoint.
	TravelTimeCache ports.TravelTimeCache
	HTTPClient      *http.Client
}

func NewORSClient(opts ORSOptions) (*ORSClient, error) {
	if opts.APIKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultORSBaseURL
	}

	profile := opts.Profile
	if profile == "" {
		profile = "driving-car"
	}

	session := opts.HTTPClient
	if session == nil {
		session = &http.Client{Timeout: 10 * time.Second}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RatePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), 1)
	}

	return &ORSClient{
		session:    session,
		apiKey:     opts.APIKey,
		baseURL:    baseURL,
		profile:    profile,
		limiter:    limiter,
		travelTime: opts.TravelTimeCache,
		backoff:    200 * time.Millisecond,
	}, nil
}
