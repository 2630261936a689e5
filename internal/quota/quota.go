package quota

import (
	"github.com/brk3/habitbattles/pkg/calendar"
	"github.com/brk3/habitbattles/pkg/habit"
)

// Evaluate compares each habit's check-ins this week against its weekly
// target. Missing counts are zero. Empty input yields zeroed stats.
func Evaluate(week calendar.Window, habits []habit.Habit, weekCounts map[string]int, totalCheckins int) habit.QuotaStats {
	stats := habit.QuotaStats{
		WeekStart:           week.Start,
		WeekEnd:             week.End,
		TotalCheckins:       totalCheckins,
		TotalHabits:         len(habits),
		CurrentWeekProgress: make([]habit.HabitProgress, 0, len(habits)),
	}
	for _, h := range habits {
		p := Progress(h, weekCounts[h.ID])
		if p.IsMet {
			stats.WeeklyQuotasMet++
		}
		stats.CurrentWeekProgress = append(stats.CurrentWeekProgress, p)
	}
	return stats
}

func Progress(h habit.Habit, completed int) habit.HabitProgress {
	return habit.HabitProgress{
		HabitID:   h.ID,
		HabitName: h.Name,
		Target:    h.TargetPerWeek,
		Completed: completed,
		IsMet:     completed >= h.TargetPerWeek,
	}
}

// Remaining is how many more check-ins the habit needs this week.
func Remaining(p habit.HabitProgress) int {
	return max(p.Target-p.Completed, 0)
}
