// Package heatmap buckets check-in counts into week, month and year
// calendar windows.
package heatmap

import (
	"fmt"
	"strings"

	"github.com/brk3/habitbattles/internal/ledger"
	"github.com/brk3/habitbattles/pkg/calendar"
	"github.com/brk3/habitbattles/pkg/habit"
)

func ParseViewMode(s string) (habit.ViewMode, error) {
	switch m := habit.ViewMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return habit.ViewMonth, nil
	case habit.ViewWeek, habit.ViewMonth, habit.ViewYear:
		return m, nil
	}
	return "", &habit.ValidationError{Field: "view", Reason: fmt.Sprintf("unknown view %q", s)}
}

// Windows returns the displayed range and the period itself. They differ
// only for months, whose display is padded to whole Monday..Sunday weeks.
func Windows(mode habit.ViewMode, ref calendar.Date) (display, period calendar.Window) {
	switch mode {
	case habit.ViewWeek:
		w := calendar.WeekOf(ref)
		return w, w
	case habit.ViewYear:
		w := calendar.YearOf(ref)
		return w, w
	default:
		m := calendar.MonthOf(ref)
		return m.PadToWeeks(), m
	}
}

// Navigate moves ref by steps periods of mode. Month and year moves clamp
// to the end of shorter months.
func Navigate(mode habit.ViewMode, ref calendar.Date, steps int) calendar.Date {
	switch mode {
	case habit.ViewWeek:
		return ref.AddWeeks(steps)
	case habit.ViewYear:
		return ref.AddYears(steps)
	default:
		return ref.AddMonths(steps)
	}
}

// Level maps a day's count to a 0..4 intensity.
func Level(count int) int {
	switch {
	case count <= 0:
		return 0
	case count == 1:
		return 1
	case count <= 3:
		return 2
	case count <= 5:
		return 3
	default:
		return 4
	}
}

// Bucket lays out the window for mode around ref and fills in per-day
// counts from l. Days outside the period (month padding) are still counted.
func Bucket(mode habit.ViewMode, ref, today calendar.Date, l *ledger.Ledger) habit.CalendarView {
	display, period := Windows(mode, ref)

	view := habit.CalendarView{
		Mode:      mode,
		Reference: ref,
		Start:     display.Start,
		End:       display.End,
		Days:      make([]habit.CalendarDay, 0, display.Len()),
		Counts:    l.CountsByDate(display),
		Previous:  Navigate(mode, ref, -1),
		Next:      Navigate(mode, ref, 1),
	}
	for _, d := range display.Days() {
		n := view.Counts[d]
		view.Days = append(view.Days, habit.CalendarDay{
			Date:     d,
			Count:    n,
			Level:    Level(n),
			InPeriod: period.Contains(d),
			IsToday:  d == today,
		})
	}
	return view
}
