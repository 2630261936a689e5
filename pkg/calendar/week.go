package calendar

// WeekStart returns the Monday on or before d.
func WeekStart(d Date) Date {
	return d.AddDays(-(d.ISOWeekday() - 1))
}

// Window is an inclusive range of dates.
type Window struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// WeekOf returns the Monday..Sunday window containing d.
func WeekOf(d Date) Window {
	start := WeekStart(d)
	return Window{Start: start, End: start.AddDays(6)}
}

// MonthOf returns the first..last day of d's month.
func MonthOf(d Date) Window {
	start := Date{Year: d.Year, Month: d.Month, Day: 1}
	return Window{Start: start, End: Date{Year: d.Year, Month: d.Month, Day: DaysIn(d.Year, d.Month)}}
}

// YearOf returns Jan 1..Dec 31 of d's year.
func YearOf(d Date) Window {
	return Window{
		Start: NewDate(d.Year, 1, 1),
		End:   NewDate(d.Year, 12, 31),
	}
}

// PadToWeeks widens w so it starts on a Monday and ends on a Sunday.
func (w Window) PadToWeeks() Window {
	return Window{Start: WeekStart(w.Start), End: WeekStart(w.End).AddDays(6)}
}

func (w Window) Contains(d Date) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

// Len is the number of days in the window, both ends included.
func (w Window) Len() int {
	if w.End.Before(w.Start) {
		return 0
	}
	return w.Start.DaysUntil(w.End) + 1
}

// Days lists every date in the window in ascending order.
func (w Window) Days() []Date {
	n := w.Len()
	out := make([]Date, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, w.Start.AddDays(i))
	}
	return out
}
