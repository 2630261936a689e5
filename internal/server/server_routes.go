package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/brk3/habitbattles/internal/logger"
	"github.com/brk3/habitbattles/pkg/habit"
	"github.com/brk3/habitbattles/pkg/versioninfo"
	"github.com/go-chi/chi/v5"
)

func (s *Server) getVersionInfo(w http.ResponseWriter, _ *http.Request) {
	if err := writeJSON(w, http.StatusOK, versioninfo.Get()); err != nil {
		logger.Error("Failed to serialize version info response", "error", err)
	}
}

// requireUser writes 400 and returns false when no user can be resolved.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := userIDFromContext(s.cfg.AuthEnabled, r)
	if userID == "" {
		logger.Warn("Missing user ID", "path", r.URL.Path)
		writeError(w, http.StatusBadRequest, "user id is required")
		return "", false
	}
	return userID, true
}

func (s *Server) listHabits(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	habits, err := s.engine.ListHabits(r.Context(), userID, timezoneFromContext(r))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	logger.Debug("Listed habits", "user_id", userID, "count", len(habits))
	UpdateActiveHabitsForUser(userID, len(habits))
	if err := writeJSON(w, http.StatusOK, HabitListResponse{Habits: habits}); err != nil {
		logger.Error("Failed to serialize habit list response", "user_id", userID, "error", err)
	}
}

func decodeInput(r *http.Request) (habit.HabitInput, error) {
	var in habit.HabitInput
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return in, &habit.ValidationError{Field: "body", Reason: "invalid JSON"}
	}
	return in, nil
}

func (s *Server) createHabit(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	in, err := decodeInput(r)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	h, err := s.engine.CreateHabit(r.Context(), userID, in)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	s.refreshActiveHabits(r, userID)
	if err := writeJSON(w, http.StatusCreated, h); err != nil {
		logger.Error("Failed to serialize create habit response", "user_id", userID, "error", err)
	}
}

func (s *Server) getHabit(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	h, err := s.engine.GetHabit(r.Context(), userID, chi.URLParam(r, "habit_id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, h); err != nil {
		logger.Error("Failed to serialize get habit response", "user_id", userID, "error", err)
	}
}

func (s *Server) updateHabit(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	in, err := decodeInput(r)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	h, err := s.engine.UpdateHabit(r.Context(), userID, chi.URLParam(r, "habit_id"), in)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, h); err != nil {
		logger.Error("Failed to serialize update habit response", "user_id", userID, "error", err)
	}
}

func (s *Server) deleteHabit(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	habitID := chi.URLParam(r, "habit_id")
	if err := s.engine.DeleteHabit(r.Context(), userID, habitID); err != nil {
		writeEngineError(w, err)
		return
	}
	s.refreshActiveHabits(r, userID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) checkIn(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	habitID := chi.URLParam(r, "habit_id")
	c, err := s.engine.CheckIn(r.Context(), userID, habitID, timezoneFromContext(r))
	if err != nil {
		if errors.Is(err, habit.ErrDuplicateCheckIn) {
			RecordCheckIn("duplicate")
		}
		writeEngineError(w, err)
		return
	}
	RecordCheckIn("created")
	if err := writeJSON(w, http.StatusCreated, c); err != nil {
		logger.Error("Failed to serialize check-in response", "user_id", userID, "error", err)
	}
}

func (s *Server) getHabitSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	habitID := chi.URLParam(r, "habit_id")
	logger.Debug("Getting habit summary", "habit_id", habitID, "user_id", userID)

	summary, err := s.engine.HabitSummary(r.Context(), userID, habitID, timezoneFromContext(r))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	resp := HabitSummaryResponse{HabitID: habitID, HabitSummary: summary}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		logger.Error("Failed to serialize habit summary response", "user_id", userID, "habit_id", habitID, "error", err)
	}
}

func (s *Server) refreshActiveHabits(r *http.Request, userID string) {
	habits, err := s.store.ListHabits(r.Context(), userID)
	if err != nil {
		logger.Warn("Failed to update active habits metric", "user_id", userID, "error", err)
		return
	}
	UpdateActiveHabitsForUser(userID, len(habits))
}
