package storage

import (
	"context"
	"errors"

	"github.com/brk3/habitbattles/pkg/calendar"
	"github.com/brk3/habitbattles/pkg/habit"
)

var (
	// ErrConflict is returned when an insert would violate the
	// (user, habit, date) uniqueness of check-ins.
	ErrConflict = errors.New("storage: conflict")
	// ErrNotFound is returned for records missing for the given user.
	ErrNotFound = errors.New("storage: not found")
)

// CheckInQuery filters ListCheckIns. Zero dates leave that end of the
// range open; From == To selects a single day. An empty HabitIDs matches
// every habit of the user.
type CheckInQuery struct {
	HabitIDs []string
	From     calendar.Date
	To       calendar.Date
}

// Matches reports whether c satisfies q.
func (q CheckInQuery) Matches(c habit.CheckIn) bool {
	if !q.From.IsZero() && c.Date.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && c.Date.After(q.To) {
		return false
	}
	if len(q.HabitIDs) == 0 {
		return true
	}
	for _, id := range q.HabitIDs {
		if id == c.HabitID {
			return true
		}
	}
	return false
}

type Store interface {
	// ListHabits returns the user's habits in creation order.
	ListHabits(ctx context.Context, userID string) ([]habit.Habit, error)
	GetHabit(ctx context.Context, userID, habitID string) (habit.Habit, error)
	PutHabit(ctx context.Context, h habit.Habit) error
	// DeleteHabit removes the habit and all of its check-ins.
	DeleteHabit(ctx context.Context, userID, habitID string) error

	ListCheckIns(ctx context.Context, userID string, q CheckInQuery) ([]habit.CheckIn, error)
	// InsertCheckIn returns ErrConflict if the (user, habit, date) triple exists.
	InsertCheckIn(ctx context.Context, c habit.CheckIn) error
	CountCheckIns(ctx context.Context, userID string) (int, error)

	PutAPIKey(keyHash, userID string) error
	GetAPIKey(keyHash string) (userID string, found bool, err error)
	ListAPIKeyHashes(userID string) ([]string, error)
	DeleteAPIKey(keyHash string) error

	Close() error
}
