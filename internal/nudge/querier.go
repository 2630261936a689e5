package nudge

import (
	"context"

	"github.com/brk3/habitbattles/internal/engine"
	"github.com/brk3/habitbattles/pkg/habit"
)

// Querier is the read side nudges need. *apiclient.Client satisfies it,
// as does EngineQuerier inside the server process.
type Querier interface {
	ListHabits(ctx context.Context) ([]habit.HabitWithProgress, error)
	GetHabitSummary(ctx context.Context, habitID string) (habit.HabitSummary, error)
	QuotaStats(ctx context.Context) (habit.QuotaStats, error)
}

// EngineQuerier answers for a single user straight from the engine.
type EngineQuerier struct {
	Engine   *engine.Engine
	UserID   string
	Timezone string
}

func (q EngineQuerier) ListHabits(ctx context.Context) ([]habit.HabitWithProgress, error) {
	return q.Engine.ListHabits(ctx, q.UserID, q.Timezone)
}

func (q EngineQuerier) GetHabitSummary(ctx context.Context, habitID string) (habit.HabitSummary, error) {
	return q.Engine.HabitSummary(ctx, q.UserID, habitID, q.Timezone)
}

func (q EngineQuerier) QuotaStats(ctx context.Context) (habit.QuotaStats, error) {
	return q.Engine.GetQuotaStats(ctx, q.UserID, q.Timezone)
}
