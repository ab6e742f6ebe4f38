package http

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vncsmyrnk/assembly/internal/core/ports"
)

// maxSessionMinutes keeps duration_minutes*time.Minute inside time.Duration.
const maxSessionMinutes = math.MaxInt64 / int64(time.Minute)

type MeasureHandler struct {
	measures ports.MeasureService
	sessions ports.SessionService
}

func NewMeasureHandler(measures ports.MeasureService, sessions ports.SessionService) *MeasureHandler {
	return &MeasureHandler{
		measures: measures,
		sessions: sessions,
	}
}

type createMeasureRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type openSessionRequest struct {
	DurationMinutes int64 `json:"duration_minutes"`
}

type sessionStatusResponse struct {
	MeasureID uuid.UUID `json:"measure_id"`
	Open      bool      `json:"open"`
}

func measureIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "invalid measure id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *MeasureHandler) CreateMeasure(w http.ResponseWriter, r *http.Request) {
	var req createMeasureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	measure, err := h.measures.Create(r.Context(), ports.CreateMeasureInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, measure)
}

func (h *MeasureHandler) ListMeasures(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 1 {
			writeBadRequest(w, "invalid page")
			return
		}
		page = p
	}

	measures, err := h.measures.ListMeasures(r.Context(), ports.ListMeasuresInput{Page: page})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, measures)
}

func (h *MeasureHandler) GetMeasure(w http.ResponseWriter, r *http.Request) {
	id, ok := measureIDParam(w, r)
	if !ok {
		return
	}

	measure, err := h.measures.GetMeasure(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, measure)
}

// OpenSession accepts an empty body; a missing or non-positive duration
// uses the service default.
func (h *MeasureHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	id, ok := measureIDParam(w, r)
	if !ok {
		return
	}

	var req openSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadRequest(w, "invalid request body")
			return
		}
	}

	if req.DurationMinutes > maxSessionMinutes {
		writeBadRequest(w, "duration_minutes is too large")
		return
	}

	measure, err := h.sessions.Open(r.Context(), id, time.Duration(req.DurationMinutes)*time.Minute)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, measure)
}

func (h *MeasureHandler) SessionStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := measureIDParam(w, r)
	if !ok {
		return
	}

	open, err := h.sessions.IsWindowOpen(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionStatusResponse{MeasureID: id, Open: open})
}

func (h *MeasureHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	id, ok := measureIDParam(w, r)
	if !ok {
		return
	}

	measure, err := h.sessions.Close(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, measure)
}
