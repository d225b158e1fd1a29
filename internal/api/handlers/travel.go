package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"itinerary-service/internal/api/dto"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/pipeline"
	"log"
	"net/http"
	"strings"
)

// TravelPipeline is the part of the pipeline runner the HTTP layer uses.
type TravelPipeline interface {
	Submit(req pipeline.TravelRequest) (string, error)
	Status(id string) (pipeline.RequestStatus, error)
	Result(id string) (pipeline.ItineraryResponse, pipeline.RequestStatus, bool, error)
}

type TravelHandler struct {
	Pipeline TravelPipeline
	// DefaultLocation is used when a request leaves location empty.
	DefaultLocation string
}

// Submit accepts a travel request and starts its pipeline.
// The itinerary is fetched later from Result.
func (h *TravelHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.TravelRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	location := strings.TrimSpace(req.Location)
	if location == "" {
		location = strings.TrimSpace(h.DefaultLocation)
	}

	id, err := h.Pipeline.Submit(pipeline.TravelRequest{
		Prompt:      strings.TrimSpace(req.Prompt),
		Preferences: req.Preferences,
		DateFrom:    strings.TrimSpace(req.DateFrom),
		DateTo:      strings.TrimSpace(req.DateTo),
		Location:    location,
	})
	if err != nil {
		var inErr *domain.InputError
		if errors.As(err, &inErr) {
			writeError(w, r, http.StatusBadRequest, inErr.Error())
			return
		}
		log.Printf("submit travel request failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusAccepted, dto.SubmitResponse{
		RequestID: id,
		Status:    string(pipeline.StatusPending),
	})
}

// Status reports the progress of one request.
func (h *TravelHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	st, err := h.Pipeline.Status(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "request not found")
			return
		}
		log.Printf("travel status failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, toStatusResponse(st))
}

// Result returns the itinerary of a completed request. Running requests
// get 202 with their status; failed requests get 400 with the failure.
func (h *TravelHandler) Result(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	res, st, ok, err := h.Pipeline.Result(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "request not found")
			return
		}
		log.Printf("travel result failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	if !ok {
		if st.Status == pipeline.StatusFailed {
			msg := st.Error
			if msg == "" {
				msg = "unknown error"
			}
			writeError(w, r, http.StatusBadRequest, fmt.Sprintf("request failed: %s", msg))
			return
		}
		writeJSON(w, r, http.StatusAccepted, toStatusResponse(st))
		return
	}

	items := make([]dto.ItineraryItemResponse, 0, len(res.Itinerary))
	for _, it := range res.Itinerary {
		item := dto.ItineraryItemResponse{
			Type:          string(it.Kind),
			Time:          it.Time.Format(pipeline.DateLayout),
			Location:      it.Location,
			Coordinates:   it.Coordinates,
			Description:   it.Description,
			Rating:        it.Rating,
			PriceLevel:    it.PriceLevel,
			TravelMinutes: it.TravelMinutes,
		}
		if it.EndTime != nil {
			item.EndTime = it.EndTime.Format(pipeline.DateLayout)
		}
		items = append(items, item)
	}

	writeJSON(w, r, http.StatusOK, dto.ResultResponse{
		RequestID:     res.RequestID,
		Itinerary:     items,
		TravelMinutes: res.TravelMinutes,
	})
}

func toStatusResponse(st pipeline.RequestStatus) dto.StatusResponse {
	return dto.StatusResponse{
		RequestID:      st.RequestID,
		Status:         string(st.Status),
		State:          st.State,
		ElapsedSeconds: st.ElapsedSeconds,
		Error:          st.Error,
	}
}
