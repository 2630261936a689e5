package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/brk3/habitbattles/pkg/calendar"
	"github.com/brk3/habitbattles/pkg/habit"
	"github.com/google/uuid"
)

type fixtureHabit struct {
	name   string
	target int
	// offsets are days before today that carry a check-in
	offsets []int
}

var fixtureHabits = []fixtureHabit{
	{name: "Morning run", target: 3, offsets: []int{0, 1, 2, 4, 7, 9, 11, 14, 16, 21}},
	{name: "Read 20 pages", target: 5, offsets: []int{1, 2, 3, 4, 5, 6, 8, 9, 10, 12, 13, 15, 30, 31}},
	{name: "Meditate", target: 7, offsets: []int{0, 1, 3, 60, 61, 62, 200}},
}

// Seed fills the store with sample habits for userID, with check-ins laid
// out relative to today. It backs the fixture storage backend.
func (s *Store) Seed(ctx context.Context, userID string, today calendar.Date) error {
	created := today.AddDays(-365).In(time.UTC)
	for i, fh := range fixtureHabits {
		h := habit.Habit{
			ID:            fmt.Sprintf("fixture-%d", i+1),
			UserID:        userID,
			Name:          fh.name,
			TargetPerWeek: fh.target,
			CreatedAt:     created.Add(time.Duration(i) * time.Minute),
		}
		if err := s.PutHabit(ctx, h); err != nil {
			return err
		}
		for _, off := range fh.offsets {
			d := today.AddDays(-off)
			err := s.InsertCheckIn(ctx, habit.CheckIn{
				ID:        uuid.NewString(),
				UserID:    userID,
				HabitID:   h.ID,
				Date:      d,
				CreatedAt: d.In(time.UTC).Add(8 * time.Hour),
			})
			if err != nil {
				return fmt.Errorf("seed %s on %s: %w", h.Name, d, err)
			}
		}
	}
	return nil
}
