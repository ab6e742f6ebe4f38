package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/assembly/internal/core/domain"
	"github.com/vncsmyrnk/assembly/internal/core/ports"
)

type BallotHandler struct {
	admission ports.AdmissionService
	tally     ports.TallyService
}

func NewBallotHandler(admission ports.AdmissionService, tally ports.TallyService) *BallotHandler {
	return &BallotHandler{
		admission: admission,
		tally:     tally,
	}
}

type castBallotRequest struct {
	VoterID uuid.UUID `json:"voter_id"`
	Choice  string    `json:"choice"`
}

func (h *BallotHandler) CastBallot(w http.ResponseWriter, r *http.Request) {
	measureID, ok := measureIDParam(w, r)
	if !ok {
		return
	}

	var req castBallotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.VoterID == uuid.Nil {
		writeBadRequest(w, "voter_id is required")
		return
	}
	choice, err := domain.ParseChoice(req.Choice)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ballot, err := h.admission.CastBallot(r.Context(), ports.BallotInput{
		MeasureID: measureID,
		VoterID:   req.VoterID,
		Choice:    choice,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ballot)
}

func (h *BallotHandler) ListBallots(w http.ResponseWriter, r *http.Request) {
	measureID, ok := measureIDParam(w, r)
	if !ok {
		return
	}

	ballots, err := h.tally.ListBallots(r.Context(), measureID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if ballots == nil {
		ballots = []*domain.Ballot{}
	}
	writeJSON(w, http.StatusOK, ballots)
}

func (h *BallotHandler) Tally(w http.ResponseWriter, r *http.Request) {
	measureID, ok := measureIDParam(w, r)
	if !ok {
		return
	}

	tally, err := h.tally.Tally(r.Context(), measureID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tally)
}
