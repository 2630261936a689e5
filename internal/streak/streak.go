// Package streak computes consecutive-day and consecutive-week runs over a
// set of check-in dates.
//
// Both streaks allow one bucket of grace: a daily streak is still current
// if the last check-in was yesterday, and a weekly streak if the last
// active week was the previous one.
package streak

import (
	"slices"

	"github.com/brk3/habitbattles/pkg/calendar"
	"github.com/brk3/habitbattles/pkg/habit"
)

// Compute returns the daily and weekly streaks ending at today along with
// the most recent check-in date. dates may be unsorted and repeat.
func Compute(dates []calendar.Date, today calendar.Date) habit.StreakData {
	days := distinctDescending(dates)
	if len(days) == 0 {
		return habit.StreakData{}
	}
	last := days[0]
	return habit.StreakData{
		DailyStreak:     daily(days, today),
		WeeklyStreak:    weekly(days, today),
		LastCheckinDate: &last,
	}
}

func Daily(dates []calendar.Date, today calendar.Date) int {
	return daily(distinctDescending(dates), today)
}

func Weekly(dates []calendar.Date, today calendar.Date) int {
	return weekly(distinctDescending(dates), today)
}

// Longest is the longest run of consecutive days anywhere in dates.
func Longest(dates []calendar.Date) int {
	days := distinctDescending(dates)
	if len(days) == 0 {
		return 0
	}
	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i] == days[i-1].AddDays(-1) {
			run++
			longest = max(longest, run)
		} else {
			run = 1
		}
	}
	return longest
}

func daily(days []calendar.Date, today calendar.Date) int {
	return run(days, today, today.AddDays(-1), 1)
}

func weekly(days []calendar.Date, today calendar.Date) int {
	var weeks []calendar.Date
	for _, d := range days {
		ws := calendar.WeekStart(d)
		if len(weeks) == 0 || weeks[len(weeks)-1] != ws {
			weeks = append(weeks, ws)
		}
	}
	current := calendar.WeekStart(today)
	return run(weeks, current, current.AddDays(-7), 7)
}

// run counts buckets from the head of desc (distinct, descending) while each
// one sits exactly step days before its predecessor. The head must be
// anchor or grace.
func run(desc []calendar.Date, anchor, grace calendar.Date, step int) int {
	if len(desc) == 0 || (desc[0] != anchor && desc[0] != grace) {
		return 0
	}
	n := 1
	for i := 1; i < len(desc); i++ {
		if desc[i] != desc[i-1].AddDays(-step) {
			break
		}
		n++
	}
	return n
}

func distinctDescending(dates []calendar.Date) []calendar.Date {
	out := slices.Clone(dates)
	slices.SortFunc(out, func(a, b calendar.Date) int { return b.Compare(a) })
	return slices.Compact(out)
}
