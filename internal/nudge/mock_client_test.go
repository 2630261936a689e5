package nudge

import (
	"context"

	"github.com/brk3/habitbattles/pkg/habit"
)

type mockClient struct {
	habits  []habit.HabitWithProgress
	summary map[string]habit.HabitSummary
	stats   habit.QuotaStats
	err     error
}

func (f *mockClient) ListHabits(ctx context.Context) ([]habit.HabitWithProgress, error) {
	return f.habits, f.err
}

func (f *mockClient) GetHabitSummary(ctx context.Context, id string) (habit.HabitSummary, error) {
	return f.summary[id], f.err
}

func (f *mockClient) QuotaStats(ctx context.Context) (habit.QuotaStats, error) {
	return f.stats, f.err
}
