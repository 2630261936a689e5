// Package engine answers progress, streak and calendar questions for a
// user by loading a fresh snapshot from the store on every call.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brk3/habitbattles/internal/ledger"
	"github.com/brk3/habitbattles/internal/logger"
	"github.com/brk3/habitbattles/internal/storage"
	"github.com/brk3/habitbattles/pkg/calendar"
	"github.com/brk3/habitbattles/pkg/habit"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Engine struct {
	store    storage.Store
	clock    *calendar.Clock
	validate *validator.Validate
}

func New(store storage.Store, clock *calendar.Clock) *Engine {
	return &Engine{
		store: store,
		clock: clock.OnFallback(func(requested string, used *time.Location) {
			logger.Warn("Unknown timezone, using default", "requested", requested, "using", used.String())
		}),
		validate: newValidator(),
	}
}

func (e *Engine) Clock() *calendar.Clock { return e.clock }

// Today is the current date in tz, falling back to the default zone.
func (e *Engine) Today(tz string) calendar.Date {
	return e.clock.Today(tz)
}

func (e *Engine) ListHabits(ctx context.Context, userID, tz string) ([]habit.HabitWithProgress, error) {
	habits, err := e.habits(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := e.clock.Today(tz)
	week := calendar.WeekOf(today)

	l, err := ledger.Load(ctx, e.store, userID, storage.CheckInQuery{From: week.Start, To: week.End})
	if err != nil {
		return nil, err
	}
	ids := habitIDs(habits)
	counts := l.CountsForWeek(ids, week)
	done := l.HabitsOn(ids, today)

	out := make([]habit.HabitWithProgress, 0, len(habits))
	for _, h := range habits {
		out = append(out, habit.HabitWithProgress{
			Habit:        h,
			DoneToday:    done[h.ID],
			DoneThisWeek: counts[h.ID],
		})
	}
	return out, nil
}

func (e *Engine) GetHabit(ctx context.Context, userID, habitID string) (habit.Habit, error) {
	h, err := e.store.GetHabit(ctx, userID, habitID)
	if err != nil {
		return habit.Habit{}, storeErr(err)
	}
	return h, nil
}

func (e *Engine) CreateHabit(ctx context.Context, userID string, in habit.HabitInput) (habit.Habit, error) {
	h := habit.Habit{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	// "Local" is not an IANA name; an empty zone resolves to the default.
	if name := e.clock.Default().String(); name != "Local" {
		h.Timezone = name
	}
	if in.Name == nil {
		return habit.Habit{}, &habit.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if in.TargetPerWeek == nil {
		return habit.Habit{}, &habit.ValidationError{Field: "target_per_week", Reason: "is required"}
	}
	apply(&h, in)
	if err := e.validateHabit(h); err != nil {
		return habit.Habit{}, err
	}
	if err := e.store.PutHabit(ctx, h); err != nil {
		return habit.Habit{}, storeErr(err)
	}
	logger.Info("Created habit", "user_id", userID, "habit_id", h.ID, "name", h.Name, "target", h.TargetPerWeek)
	return h, nil
}

func (e *Engine) UpdateHabit(ctx context.Context, userID, habitID string, in habit.HabitInput) (habit.Habit, error) {
	h, err := e.GetHabit(ctx, userID, habitID)
	if err != nil {
		return habit.Habit{}, err
	}
	apply(&h, in)
	if err := e.validateHabit(h); err != nil {
		return habit.Habit{}, err
	}
	if err := e.store.PutHabit(ctx, h); err != nil {
		return habit.Habit{}, storeErr(err)
	}
	logger.Info("Updated habit", "user_id", userID, "habit_id", h.ID)
	return h, nil
}

func (e *Engine) DeleteHabit(ctx context.Context, userID, habitID string) error {
	if err := e.store.DeleteHabit(ctx, userID, habitID); err != nil {
		return storeErr(err)
	}
	logger.Info("Deleted habit", "user_id", userID, "habit_id", habitID)
	return nil
}

// CheckIn records today's check-in for the habit. tz resolves like every
// read view: empty or unknown ids use the clock's default zone.
func (e *Engine) CheckIn(ctx context.Context, userID, habitID, tz string) (habit.CheckIn, error) {
	if _, err := e.GetHabit(ctx, userID, habitID); err != nil {
		return habit.CheckIn{}, err
	}
	c := habit.CheckIn{
		ID:        uuid.NewString(),
		UserID:    userID,
		HabitID:   habitID,
		Date:      e.clock.Today(tz),
		CreatedAt: time.Now().UTC(),
	}
	if err := ledger.Record(ctx, e.store, c); err != nil {
		return habit.CheckIn{}, err
	}
	logger.Info("Recorded check-in", "user_id", userID, "habit_id", habitID, "date", c.Date)
	return c, nil
}

func (e *Engine) habits(ctx context.Context, userID string) ([]habit.Habit, error) {
	hs, err := e.store.ListHabits(ctx, userID)
	if err != nil {
		return nil, storeErr(err)
	}
	return hs, nil
}

func apply(h *habit.Habit, in habit.HabitInput) {
	if in.Name != nil {
		h.Name = strings.TrimSpace(*in.Name)
	}
	if in.TargetPerWeek != nil {
		h.TargetPerWeek = *in.TargetPerWeek
	}
	if in.Timezone != nil {
		h.Timezone = strings.TrimSpace(*in.Timezone)
	}
}

func habitIDs(hs []habit.Habit) []string {
	ids := make([]string, len(hs))
	for i, h := range hs {
		ids[i] = h.ID
	}
	return ids
}

// storeErr maps store failures onto the domain error taxonomy.
func storeErr(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return habit.ErrNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return fmt.Errorf("%w: %w", habit.ErrStoreUnavailable, err)
}
