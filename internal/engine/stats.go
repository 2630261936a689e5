package engine

import (
	"context"

	"github.com/brk3/habitbattles/internal/heatmap"
	"github.com/brk3/habitbattles/internal/ledger"
	"github.com/brk3/habitbattles/internal/quota"
	"github.com/brk3/habitbattles/internal/storage"
	"github.com/brk3/habitbattles/internal/streak"
	"github.com/brk3/habitbattles/pkg/calendar"
	"github.com/brk3/habitbattles/pkg/habit"
)

func (e *Engine) GetQuotaStats(ctx context.Context, userID, tz string) (habit.QuotaStats, error) {
	week := e.clock.CurrentWeek(tz)

	habits, err := e.habits(ctx, userID)
	if err != nil {
		return habit.QuotaStats{}, err
	}
	counts, err := ledger.CheckInsForWeek(ctx, e.store, userID, habitIDs(habits), week.Start, week.End)
	if err != nil {
		return habit.QuotaStats{}, err
	}
	total, err := e.store.CountCheckIns(ctx, userID)
	if err != nil {
		return habit.QuotaStats{}, storeErr(err)
	}
	return quota.Evaluate(week, habits, counts, total), nil
}

func (e *Engine) GetStreakData(ctx context.Context, userID, tz string) (habit.StreakData, error) {
	today := e.clock.Today(tz)
	dates, err := ledger.AllCheckInDatesDescending(ctx, e.store, userID)
	if err != nil {
		return habit.StreakData{}, err
	}
	return streak.Compute(dates, today), nil
}

// GetCalendarView buckets the user's check-ins for mode around ref. A zero
// ref means today in tz.
func (e *Engine) GetCalendarView(ctx context.Context, userID string, mode habit.ViewMode, ref calendar.Date, tz string) (habit.CalendarView, error) {
	today := e.clock.Today(tz)
	if ref.IsZero() {
		ref = today
	}
	display, _ := heatmap.Windows(mode, ref)
	l, err := ledger.Load(ctx, e.store, userID, storage.CheckInQuery{From: display.Start, To: display.End})
	if err != nil {
		return habit.CalendarView{}, err
	}
	return heatmap.Bucket(mode, ref, today, l), nil
}

// HabitSummary reports streak and volume figures for a single habit.
func (e *Engine) HabitSummary(ctx context.Context, userID, habitID, tz string) (habit.HabitSummary, error) {
	h, err := e.GetHabit(ctx, userID, habitID)
	if err != nil {
		return habit.HabitSummary{}, err
	}
	today := e.clock.Today(tz)

	l, err := ledger.Load(ctx, e.store, userID, storage.CheckInQuery{HabitIDs: []string{habitID}})
	if err != nil {
		return habit.HabitSummary{}, err
	}
	dates := l.HabitDatesDescending(habitID)

	s := habit.HabitSummary{
		Name:          h.Name,
		CurrentStreak: streak.Daily(dates, today),
		LongestStreak: streak.Longest(dates),
		TotalDaysDone: len(dates),
	}
	if len(dates) == 0 {
		return s, nil
	}
	first, last := dates[len(dates)-1], dates[0]
	s.FirstLogged, s.LastWrite = &first, &last

	thisMonth := calendar.MonthOf(today)
	perMonth := make(map[calendar.Date]int)
	for _, d := range dates {
		m := calendar.MonthOf(d).Start
		perMonth[m]++
		if thisMonth.Contains(d) {
			s.ThisMonth++
		}
	}
	for _, n := range perMonth {
		s.BestMonth = max(s.BestMonth, n)
	}
	return s, nil
}
