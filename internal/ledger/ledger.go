// Package ledger holds a per-user snapshot of check-in facts and answers
// date-set questions over it.
package ledger

import (
	"slices"

	"github.com/brk3/habitbattles/pkg/calendar"
	"github.com/brk3/habitbattles/pkg/habit"
)

// Ledger is immutable once built and safe for concurrent readers.
type Ledger struct {
	byHabit map[string]map[calendar.Date]struct{}
	byDate  map[calendar.Date]int
	n       int
}

// New builds a ledger from raw records. Repeated (habit, date) pairs are
// counted once.
func New(checkIns []habit.CheckIn) *Ledger {
	l := &Ledger{
		byHabit: make(map[string]map[calendar.Date]struct{}),
		byDate:  make(map[calendar.Date]int),
	}
	for _, c := range checkIns {
		days := l.byHabit[c.HabitID]
		if days == nil {
			days = make(map[calendar.Date]struct{})
			l.byHabit[c.HabitID] = days
		}
		if _, seen := days[c.Date]; seen {
			continue
		}
		days[c.Date] = struct{}{}
		l.byDate[c.Date]++
		l.n++
	}
	return l
}

// Len is the number of distinct (habit, date) facts.
func (l *Ledger) Len() int { return l.n }

// CountsForWeek returns, for each of habitIDs, the number of days in w with
// a check-in. Habits without check-ins map to 0.
func (l *Ledger) CountsForWeek(habitIDs []string, w calendar.Window) map[string]int {
	out := make(map[string]int, len(habitIDs))
	for _, id := range habitIDs {
		n := 0
		for d := range l.byHabit[id] {
			if w.Contains(d) {
				n++
			}
		}
		out[id] = n
	}
	return out
}

// HabitsOn returns the subset of habitIDs checked in on d.
func (l *Ledger) HabitsOn(habitIDs []string, d calendar.Date) map[string]bool {
	out := make(map[string]bool)
	for _, id := range habitIDs {
		if _, ok := l.byHabit[id][d]; ok {
			out[id] = true
		}
	}
	return out
}

// DatesDescending lists the distinct dates with any check-in, most recent
// first.
func (l *Ledger) DatesDescending() []calendar.Date {
	out := make([]calendar.Date, 0, len(l.byDate))
	for d := range l.byDate {
		out = append(out, d)
	}
	sortDescending(out)
	return out
}

// HabitDatesDescending is DatesDescending restricted to one habit.
func (l *Ledger) HabitDatesDescending(habitID string) []calendar.Date {
	days := l.byHabit[habitID]
	out := make([]calendar.Date, 0, len(days))
	for d := range days {
		out = append(out, d)
	}
	sortDescending(out)
	return out
}

// CountOn is the number of habits checked in on d.
func (l *Ledger) CountOn(d calendar.Date) int {
	return l.byDate[d]
}

// CountsByDate returns the non-zero per-day counts inside w.
func (l *Ledger) CountsByDate(w calendar.Window) map[calendar.Date]int {
	out := make(map[calendar.Date]int)
	for d, n := range l.byDate {
		if w.Contains(d) {
			out[d] = n
		}
	}
	return out
}

func sortDescending(ds []calendar.Date) {
	slices.SortFunc(ds, func(a, b calendar.Date) int { return b.Compare(a) })
}
