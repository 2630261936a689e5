package quota

import (
	"reflect"
	"testing"

	"github.com/brk3/habitbattles/pkg/calendar"
	"github.com/brk3/habitbattles/pkg/habit"
)

var week = calendar.WeekOf(calendar.MustParseDate("2024-05-01"))

func TestEvaluate_Empty(t *testing.T) {
	got := Evaluate(week, nil, nil, 0)
	if got.WeeklyQuotasMet != 0 || got.TotalHabits != 0 || got.TotalCheckins != 0 {
		t.Errorf("expected zeroed stats, got %+v", got)
	}
	if got.CurrentWeekProgress == nil || len(got.CurrentWeekProgress) != 0 {
		t.Errorf("expected empty non-nil progress, got %#v", got.CurrentWeekProgress)
	}
}

func TestEvaluate_MetIffCompletedReachesTarget(t *testing.T) {
	for target := 1; target <= 7; target++ {
		for completed := 0; completed <= 7; completed++ {
			h := habit.Habit{ID: "h", Name: "x", TargetPerWeek: target}
			stats := Evaluate(week, []habit.Habit{h}, map[string]int{"h": completed}, completed)
			want := completed >= target
			if stats.CurrentWeekProgress[0].IsMet != want {
				t.Errorf("target=%d completed=%d: IsMet=%v, want %v", target, completed, !want, want)
			}
			wantMet := 0
			if want {
				wantMet = 1
			}
			if stats.WeeklyQuotasMet != wantMet {
				t.Errorf("target=%d completed=%d: WeeklyQuotasMet=%d", target, completed, stats.WeeklyQuotasMet)
			}
		}
	}
}

func TestEvaluate_Aggregate(t *testing.T) {
	habits := []habit.Habit{
		{ID: "a", Name: "run", TargetPerWeek: 3},
		{ID: "b", Name: "read", TargetPerWeek: 5},
		{ID: "c", Name: "sleep", TargetPerWeek: 1},
	}
	counts := map[string]int{"a": 3, "b": 2}

	got := Evaluate(week, habits, counts, 42)
	if got.WeeklyQuotasMet != 1 {
		t.Errorf("WeeklyQuotasMet = %d, want 1", got.WeeklyQuotasMet)
	}
	if got.TotalHabits != 3 || got.TotalCheckins != 42 {
		t.Errorf("totals = %d habits, %d checkins", got.TotalHabits, got.TotalCheckins)
	}
	if got.WeekStart != calendar.MustParseDate("2024-04-29") || got.WeekEnd != calendar.MustParseDate("2024-05-05") {
		t.Errorf("week = %s..%s", got.WeekStart, got.WeekEnd)
	}
	if p := got.CurrentWeekProgress[2]; p.Completed != 0 || p.IsMet {
		t.Errorf("missing count should be 0/unmet, got %+v", p)
	}

	again := Evaluate(week, habits, counts, 42)
	if !reflect.DeepEqual(got, again) {
		t.Error("Evaluate is not idempotent")
	}
}

func TestRemaining(t *testing.T) {
	if got := Remaining(habit.HabitProgress{Target: 5, Completed: 2}); got != 3 {
		t.Errorf("Remaining = %d, want 3", got)
	}
	if got := Remaining(habit.HabitProgress{Target: 2, Completed: 4}); got != 0 {
		t.Errorf("Remaining = %d, want 0", got)
	}
}
