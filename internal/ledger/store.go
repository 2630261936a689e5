package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/brk3/habitbattles/internal/storage"
	"github.com/brk3/habitbattles/pkg/calendar"
	"github.com/brk3/habitbattles/pkg/habit"
)

// Load reads the user's check-ins matching q into a Ledger.
func Load(ctx context.Context, store storage.Store, userID string, q storage.CheckInQuery) (*Ledger, error) {
	cs, err := store.ListCheckIns(ctx, userID, q)
	if err != nil {
		return nil, unavailable(err)
	}
	return New(cs), nil
}

// CheckInsForWeek counts check-ins per habit between weekStart and weekEnd
// inclusive.
func CheckInsForWeek(ctx context.Context, store storage.Store, userID string, habitIDs []string, weekStart, weekEnd calendar.Date) (map[string]int, error) {
	w := calendar.Window{Start: weekStart, End: weekEnd}
	if len(habitIDs) == 0 {
		return map[string]int{}, nil
	}
	l, err := Load(ctx, store, userID, storage.CheckInQuery{HabitIDs: habitIDs, From: w.Start, To: w.End})
	if err != nil {
		return nil, err
	}
	return l.CountsForWeek(habitIDs, w), nil
}

// CheckInsForDay returns the habits among habitIDs checked in on date.
func CheckInsForDay(ctx context.Context, store storage.Store, userID string, habitIDs []string, date calendar.Date) (map[string]bool, error) {
	if len(habitIDs) == 0 {
		return map[string]bool{}, nil
	}
	l, err := Load(ctx, store, userID, storage.CheckInQuery{HabitIDs: habitIDs, From: date, To: date})
	if err != nil {
		return nil, err
	}
	return l.HabitsOn(habitIDs, date), nil
}

// AllCheckInDatesDescending lists every distinct check-in date for the
// user, most recent first.
func AllCheckInDatesDescending(ctx context.Context, store storage.Store, userID string) ([]calendar.Date, error) {
	l, err := Load(ctx, store, userID, storage.CheckInQuery{})
	if err != nil {
		return nil, err
	}
	return l.DatesDescending(), nil
}

// Record inserts c unless the habit already has a check-in on c.Date. A
// pre-check hit and a uniqueness rejection from the store both yield
// habit.ErrDuplicateCheckIn.
func Record(ctx context.Context, store storage.Store, c habit.CheckIn) error {
	existing, err := store.ListCheckIns(ctx, c.UserID, storage.CheckInQuery{
		HabitIDs: []string{c.HabitID},
		From:     c.Date,
		To:       c.Date,
	})
	if err != nil {
		return unavailable(err)
	}
	if len(existing) > 0 {
		return habit.ErrDuplicateCheckIn
	}

	err = store.InsertCheckIn(ctx, c)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrConflict):
		return habit.ErrDuplicateCheckIn
	default:
		return unavailable(err)
	}
}

func unavailable(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", habit.ErrStoreUnavailable, err)
}
