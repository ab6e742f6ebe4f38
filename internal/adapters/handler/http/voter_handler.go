package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vncsmyrnk/assembly/internal/core/ports"
)

type VoterHandler struct {
	service ports.VoterService
}

func NewVoterHandler(service ports.VoterService) *VoterHandler {
	return &VoterHandler{
		service: service,
	}
}

type registerVoterRequest struct {
	NationalID string `json:"national_id"`
}

type eligibilityResponse struct {
	NationalID string `json:"national_id"`
	Status     string `json:"status"`
}

func voterIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "invalid voter id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *VoterHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerVoterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	voter, err := h.service.Register(r.Context(), req.NationalID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, voter)
}

func (h *VoterHandler) GetVoter(w http.ResponseWriter, r *http.Request) {
	id, ok := voterIDParam(w, r)
	if !ok {
		return
	}

	voter, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, voter)
}

func (h *VoterHandler) GetVoterByNationalID(w http.ResponseWriter, r *http.Request) {
	voter, err := h.service.GetByNationalID(r.Context(), chi.URLParam(r, "nationalId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, voter)
}

func (h *VoterHandler) Eligibility(w http.ResponseWriter, r *http.Request) {
	nationalID := chi.URLParam(r, "nationalId")
	status := h.service.Eligibility(r.Context(), nationalID)
	writeJSON(w, http.StatusOK, eligibilityResponse{NationalID: nationalID, Status: status.String()})
}

func (h *VoterHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := voterIDParam(w, r)
	if !ok {
		return
	}
	active, err := strconv.ParseBool(r.URL.Query().Get("active"))
	if err != nil {
		writeBadRequest(w, "active must be true or false")
		return
	}

	voter, err := h.service.SetActive(r.Context(), id, active)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, voter)
}
