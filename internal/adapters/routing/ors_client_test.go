package routing

import (
	"context"
	"encoding/json"
	"errors"
	"itinerary-service/internal/domain"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapTravelCache map[string]int

func (m mapTravelCache) GetSeconds(ctx context.Context, o, d string) (int, bool, error) {
	s, ok := m[o+"|"+d]
	return s, ok, nil
}

func (m mapTravelCache) PutSeconds(ctx context.Context, o, d string, s int) error {
	m[o+"|"+d] = s
	return nil
}

func newTestClient(t *testing.T, h http.HandlerFunc, cache mapTravelCache) *ORSClient {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	opts := ORSOptions{APIKey: "test-key", BaseURL: srv.URL}
	if cache != nil {
		opts.TravelTimeCache = cache
	}

	c, err := NewORSClient(opts)
	require.NoError(t, err)
	c.backoff = time.Millisecond
	return c
}

var (
	louvre = domain.Coordinates{Lat: 48.8606, Lng: 2.3376}
	orsay  = domain.Coordinates{Lat: 48.8600, Lng: 2.3266}
)

func TestNewORSClientRequiresKey(t *testing.T) {
	_, err := NewORSClient(ORSOptions{})
	require.Error(t, err)
}

func TestGeocode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocode/search", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))
		if r.URL.Query().Get("text") == "nowhere" {
			_, _ = w.Write([]byte(`{"features":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"features":[{"geometry":{"coordinates":[2.3376,48.8606]}}]}`))
	}, nil)

	got, err := c.Geocode(context.Background(), "Louvre Museum")
	require.NoError(t, err)
	assert.Equal(t, louvre, got)

	_, err = c.Geocode(context.Background(), "nowhere")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTravelSecondsRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		var body matrixRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, [][]float64{louvre.CoordsToList(), orsay.CoordsToList()}, body.Locations)
		assert.Equal(t, "/v2/matrix/driving-car", r.URL.Path)

		_, _ = w.Write([]byte(`{"durations":[[312.6]]}`))
	}, nil)

	got, err := c.TravelSeconds(context.Background(), louvre, orsay)
	require.NoError(t, err)
	assert.Equal(t, 313, got)
	assert.Equal(t, int32(3), calls.Load())
}

func TestTravelSecondsDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}, nil)

	_, err := c.TravelSeconds(context.Background(), louvre, orsay)
	require.Error(t, err)

	var he *httpStatusError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusBadRequest, he.Code)
	assert.Equal(t, int32(1), calls.Load())
}

func TestTravelSecondsUsesCache(t *testing.T) {
	var calls atomic.Int32
	cache := mapTravelCache{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"durations":[[600]]}`))
	}, cache)

	for i := 0; i < 3; i++ {
		got, err := c.TravelSeconds(context.Background(), louvre, orsay)
		require.NoError(t, err)
		assert.Equal(t, 600, got)
	}

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 600, cache[louvre.Key()+"|"+orsay.Key()])
}

func TestTravelSecondsNullRoute(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"durations":[[null]]}`))
	}, nil)

	_, err := c.TravelSeconds(context.Background(), louvre, orsay)
	require.Error(t, err)
}
