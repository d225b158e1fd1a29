package api

import (
	"encoding/json"
	"itinerary-service/internal/api/dto"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/pipeline"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePipeline struct {
	submitted []pipeline.TravelRequest
	statuses  map[string]pipeline.RequestStatus
	results   map[string]pipeline.ItineraryResponse
}

func newFakePipeline() *fakePipeline {
	return &fakePipeline{
		statuses: make(map[string]pipeline.RequestStatus),
		results:  make(map[string]pipeline.ItineraryResponse),
	}
}

func (f *fakePipeline) Submit(req pipeline.TravelRequest) (string, error) {
	if err := pipeline.ValidateRequest(req); err != nil {
		return "", err
	}
	f.submitted = append(f.submitted, req)
	return "req-1", nil
}

func (f *fakePipeline) Status(id string) (pipeline.RequestStatus, error) {
	st, ok := f.statuses[id]
	if !ok {
		return pipeline.RequestStatus{}, domain.ErrNotFound
	}
	return st, nil
}

func (f *fakePipeline) Result(id string) (pipeline.ItineraryResponse, pipeline.RequestStatus, bool, error) {
	st, ok := f.statuses[id]
	if !ok {
		return pipeline.ItineraryResponse{}, pipeline.RequestStatus{}, false, domain.ErrNotFound
	}
	res, done := f.results[id]
	return res, st, done, nil
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := NewRouter(newFakePipeline(), "")

	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/health", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
}

func TestSubmit(t *testing.T) {
	p := newFakePipeline()
	h := NewRouter(p, "Paris")

	body := `{"prompt":"museums and food","preferences":{"interests":["art"]},"date_from":"2025-04-01 09:00","date_to":"2025-04-01 21:00"}`
	rec := do(t, h, http.MethodPost, "/travel/request", body)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var res dto.SubmitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "req-1", res.RequestID)
	assert.Equal(t, "pending", res.Status)

	require.Len(t, p.submitted, 1)
	assert.Equal(t, "Paris", p.submitted[0].Location)
	assert.Equal(t, []string{"art"}, p.submitted[0].Preferences.Interests)
}

func TestSubmitRejectsBadInput(t *testing.T) {
	h := NewRouter(newFakePipeline(), "")

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"prompt":`},
		{"unknown field", `{"prompt":"x","location":"Paris","date_from":"2025-04-01 09:00","date_to":"2025-04-01 21:00","extra":1}`},
		{"two objects", `{"prompt":"x"}{"prompt":"y"}`},
		{"missing location", `{"prompt":"x","date_from":"2025-04-01 09:00","date_to":"2025-04-01 21:00"}`},
		{"reversed range", `{"prompt":"x","location":"Paris","date_from":"2025-04-01 21:00","date_to":"2025-04-01 09:00"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/travel/request", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	rec := do(t, h, http.MethodGet, "/travel/request", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStatus(t *testing.T) {
	p := newFakePipeline()
	p.statuses["abc"] = pipeline.RequestStatus{RequestID: "abc", Status: pipeline.StatusProcessing, State: "REQUEST_SENT", ElapsedSeconds: 1.5}
	h := NewRouter(p, "")

	rec := do(t, h, http.MethodGet, "/travel/status/abc", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var st dto.StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, "processing", st.Status)
	assert.Equal(t, "REQUEST_SENT", st.State)

	rec = do(t, h, http.MethodGet, "/travel/status/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResult(t *testing.T) {
	p := newFakePipeline()
	start := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	p.statuses["done"] = pipeline.RequestStatus{RequestID: "done", Status: pipeline.StatusCompleted}
	p.results["done"] = pipeline.ItineraryResponse{
		RequestID: "done",
		Itinerary: domain.Itinerary{
			{Kind: domain.KindLunch, Time: start, EndTime: &end, Location: "Le Fumoir", Description: "Lunch at Le Fumoir"},
		},
	}
	p.statuses["running"] = pipeline.RequestStatus{RequestID: "running", Status: pipeline.StatusProcessing}
	p.statuses["failed"] = pipeline.RequestStatus{RequestID: "failed", Status: pipeline.StatusFailed, Error: "calendar: token expired"}
	h := NewRouter(p, "")

	rec := do(t, h, http.MethodGet, "/travel/result/done", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res dto.ResultResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Itinerary, 1)
	assert.Equal(t, "lunch", res.Itinerary[0].Type)
	assert.Equal(t, "2025-04-01 12:00", res.Itinerary[0].Time)
	assert.Equal(t, "2025-04-01 13:00", res.Itinerary[0].EndTime)

	rec = do(t, h, http.MethodGet, "/travel/result/running", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = do(t, h, http.MethodGet, "/travel/result/failed", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "token expired")

	rec = do(t, h, http.MethodGet, "/travel/result/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
