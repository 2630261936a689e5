package server

import (
	"net/http"

	"github.com/brk3/habitbattles/internal/heatmap"
	"github.com/brk3/habitbattles/internal/logger"
	"github.com/brk3/habitbattles/pkg/calendar"
	"github.com/brk3/habitbattles/pkg/habit"
)

func (s *Server) getQuotaStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	stats, err := s.engine.GetQuotaStats(r.Context(), userID, timezoneFromContext(r))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, stats); err != nil {
		logger.Error("Failed to serialize quota stats", "user_id", userID, "error", err)
	}
}

func (s *Server) getStreak(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	streak, err := s.engine.GetStreakData(r.Context(), userID, timezoneFromContext(r))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, streak); err != nil {
		logger.Error("Failed to serialize streak data", "user_id", userID, "error", err)
	}
}

func (s *Server) getCalendar(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	mode, err := heatmap.ParseViewMode(r.URL.Query().Get("view"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	var ref calendar.Date
	if raw := r.URL.Query().Get("date"); raw != "" {
		if ref, err = calendar.ParseDate(raw); err != nil {
			writeEngineError(w, &habit.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"})
			return
		}
	}

	view, err := s.engine.GetCalendarView(r.Context(), userID, mode, ref, timezoneFromContext(r))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, view); err != nil {
		logger.Error("Failed to serialize calendar view", "user_id", userID, "error", err)
	}
}
