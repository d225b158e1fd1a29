package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/platform/obs"
	"log"
	"math"
	"net/http"
)

type matrixRequest struct {
	Locations    [][]float64 `json:"locations"`
	Destinations []int       `json:"destinations"`
	Metrics      []string    `json:"metrics"`
	Sources      []int       `json:"sources"`
}

type matrixResponse struct {
	Durations [][]*float64 `json:"durations"`
}

// TravelSeconds returns the routed duration from origin to destination using
// the OpenRouteService matrix endpoint with one source and one destination.
func (o *ORSClient) TravelSeconds(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (_ int, err error) {
	defer obs.Time(ctx, "ors.travelSeconds")(&err)

	if origin.Key() == destination.Key() {
		return 0, nil
	}

	originKey, destKey := origin.Key(), destination.Key()

	// Check persistent travel-time cache before issuing external API calls.
	if o.travelTime != nil {
		seconds, ok, err := o.travelTime.GetSeconds(ctx, originKey, destKey)
		if err != nil {
			log.Printf("req_id=%s travel-time cache read failed: %v", obs.RequestID(ctx), err)
		} else if ok {
			return seconds, nil
		}
	}

	seconds, err := o.fetchDuration(ctx, origin, destination)
	if err != nil {
		return 0, err
	}

	if o.travelTime != nil {
		if err := o.travelTime.PutSeconds(ctx, originKey, destKey, seconds); err != nil {
			log.Printf("req_id=%s travel-time cache write failed: %v", obs.RequestID(ctx), err)
		}
	}

	return seconds, nil
}

func (o *ORSClient) fetchDuration(ctx context.Context, origin, destination domain.Coordinates) (int, error) {
	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, o.profile)

	payload, err := json.Marshal(matrixRequest{
		Locations:    [][]float64{origin.CoordsToList(), destination.CoordsToList()},
		Destinations: []int{1},
		Metrics:      []string{"duration"},
		Sources:      []int{0},
	})
	if err != nil {
		return 0, fmt.Errorf("marshal matrix request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return 0, fmt.Errorf("matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return 0, fmt.Errorf("decode matrix response: %w", err)
	}

	if len(mr.Durations) != 1 || len(mr.Durations[0]) != 1 {
		return 0, fmt.Errorf("expected a 1x1 duration matrix; got %d rows", len(mr.Durations))
	}

	secondsPtr := mr.Durations[0][0]
	if secondsPtr == nil {
		return 0, fmt.Errorf("matrix returned no route from %s to %s", origin.Key(), destination.Key())
	}

	// ORS returns float metrics; round to whole seconds.
	return int(math.Round(*secondsPtr)), nil
}
