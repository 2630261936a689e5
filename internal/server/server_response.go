package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/brk3/habitbattles/internal/logger"
	"github.com/brk3/habitbattles/pkg/habit"
)

type HabitListResponse struct {
	Habits []habit.HabitWithProgress `json:"habits"`
}

type HabitSummaryResponse struct {
	HabitID      string             `json:"habit_id"`
	HabitSummary habit.HabitSummary `json:"habit_summary"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type APIKeyResponse struct {
	APIKey string `json:"api_key"`
	Prefix string `json:"prefix"`
}

type APIKeyInfo struct {
	Prefix string `json:"prefix"`
}

type APIKeyListResponse struct {
	Keys []APIKeyInfo `json:"keys"`
}

func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	if err := writeJSON(w, code, ErrorResponse{Error: msg}); err != nil {
		logger.Error("Failed to write error response", "error", err)
	}
}

// writeEngineError maps the domain error taxonomy onto HTTP status codes.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case habit.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, habit.ErrDuplicateCheckIn):
		writeError(w, http.StatusConflict, habit.ErrDuplicateCheckIn.Error())
	case errors.Is(err, habit.ErrNotFound):
		writeError(w, http.StatusNotFound, habit.ErrNotFound.Error())
	case errors.Is(err, habit.ErrStoreUnavailable):
		logger.Error("Store unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
	default:
		logger.Error("Unhandled error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
