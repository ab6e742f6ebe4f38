package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vncsmyrnk/assembly/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type errorKind struct {
	err    error
	status int
	code   string
}

// Order matters: ErrSessionAlreadyOpen also matches ErrInvalidTransition.
var errorKinds = []errorKind{
	{domain.ErrMeasureNotFound, http.StatusNotFound, "MEASURE_NOT_FOUND"},
	{domain.ErrVoterNotFound, http.StatusNotFound, "VOTER_NOT_FOUND"},
	{domain.ErrSessionAlreadyOpen, http.StatusConflict, "SESSION_ALREADY_OPEN"},
	{domain.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},
	{domain.ErrDuplicateVote, http.StatusConflict, "DUPLICATE_VOTE"},
	{domain.ErrNationalIDTaken, http.StatusConflict, "NATIONAL_ID_TAKEN"},
	{domain.ErrVoterInactive, http.StatusForbidden, "VOTER_INACTIVE"},
	{domain.ErrVoterNotEligible, http.StatusForbidden, "VOTER_NOT_ELIGIBLE"},
	{domain.ErrSessionNotOpen, http.StatusBadRequest, "SESSION_NOT_OPEN"},
	{domain.ErrInvalidChoice, http.StatusBadRequest, "INVALID_CHOICE"},
	{domain.ErrInvalidNationalID, http.StatusBadRequest, "INVALID_NATIONAL_ID"},
	{domain.ErrInvalidMeasure, http.StatusBadRequest, "INVALID_MEASURE"},
	{domain.ErrInvalidPage, http.StatusBadRequest, "INVALID_PAGE"},
	{domain.ErrStoreUnavailable, http.StatusServiceUnavailable, "STORE_UNAVAILABLE"},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Code: "BAD_REQUEST"})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	for _, kind := range errorKinds {
		if errors.Is(err, kind.err) {
			writeJSON(w, kind.status, errorResponse{Error: err.Error(), Code: kind.code})
			return
		}
	}

	slog.ErrorContext(r.Context(), "unhandled request error", "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "INTERNAL"})
}
