package habit

import (
	"time"

	"github.com/brk3/habitbattles/pkg/calendar"
)

type Habit struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Name          string    `json:"name" validate:"required,max=64"`
	TargetPerWeek int       `json:"target_per_week" validate:"min=1,max=7"`
	Timezone      string    `json:"timezone" validate:"omitempty,timezone"`
	CreatedAt     time.Time `json:"created_at"`
}

// HabitInput carries the user-editable fields of a Habit. Nil fields are
// left unchanged on update.
type HabitInput struct {
	Name          *string `json:"name,omitempty"`
	TargetPerWeek *int    `json:"target_per_week,omitempty"`
	Timezone      *string `json:"timezone,omitempty"`
}

type CheckIn struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	HabitID   string        `json:"habit_id"`
	Date      calendar.Date `json:"checkin_date"`
	CreatedAt time.Time     `json:"created_at"`
}

type HabitWithProgress struct {
	Habit
	DoneToday    bool `json:"done_today"`
	DoneThisWeek int  `json:"done_this_week"`
}

type HabitProgress struct {
	HabitID   string `json:"habit_id"`
	HabitName string `json:"habit_name"`
	Target    int    `json:"target"`
	Completed int    `json:"completed"`
	IsMet     bool   `json:"is_met"`
}

type QuotaStats struct {
	WeekStart           calendar.Date   `json:"week_start"`
	WeekEnd             calendar.Date   `json:"week_end"`
	WeeklyQuotasMet     int             `json:"weekly_quotas_met"`
	TotalCheckins       int             `json:"total_checkins"`
	TotalHabits         int             `json:"total_habits"`
	CurrentWeekProgress []HabitProgress `json:"current_week_progress"`
}

type StreakData struct {
	DailyStreak     int            `json:"daily_streak"`
	WeeklyStreak    int            `json:"weekly_streak"`
	LastCheckinDate *calendar.Date `json:"last_checkin_date"`
}

type ViewMode string

const (
	ViewWeek  ViewMode = "week"
	ViewMonth ViewMode = "month"
	ViewYear  ViewMode = "year"
)

type CalendarDay struct {
	Date     calendar.Date `json:"date"`
	Count    int           `json:"count"`
	Level    int           `json:"level"`
	InPeriod bool          `json:"in_period"`
	IsToday  bool          `json:"is_today"`
}

type CalendarView struct {
	Mode      ViewMode              `json:"view"`
	Reference calendar.Date         `json:"reference_date"`
	Start     calendar.Date         `json:"window_start"`
	End       calendar.Date         `json:"window_end"`
	Days      []CalendarDay         `json:"days"`
	Counts    map[calendar.Date]int `json:"counts"`
	Previous  calendar.Date         `json:"previous"`
	Next      calendar.Date         `json:"next"`
}

type HabitSummary struct {
	Name          string         `json:"name"`
	CurrentStreak int            `json:"current_streak"`
	LongestStreak int            `json:"longest_streak"`
	FirstLogged   *calendar.Date `json:"first_logged"`
	TotalDaysDone int            `json:"total_days_done"`
	BestMonth     int            `json:"best_month"`
	ThisMonth     int            `json:"this_month"`
	LastWrite     *calendar.Date `json:"last_write"`
}
