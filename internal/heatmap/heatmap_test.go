package heatmap

import (
	"testing"
	"time"

	"github.com/brk3/habitbattles/internal/ledger"
	"github.com/brk3/habitbattles/pkg/calendar"
	"github.com/brk3/habitbattles/pkg/habit"
)

func d(s string) calendar.Date { return calendar.MustParseDate(s) }

func TestParseViewMode(t *testing.T) {
	for in, want := range map[string]habit.ViewMode{"": habit.ViewMonth, "Week": habit.ViewWeek, " year ": habit.ViewYear} {
		got, err := ParseViewMode(in)
		if err != nil || got != want {
			t.Errorf("ParseViewMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseViewMode("decade"); !habit.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestBucket_Week(t *testing.T) {
	v := Bucket(habit.ViewWeek, d("2024-05-15"), d("2024-05-15"), ledger.New(nil))
	if len(v.Days) != 7 {
		t.Fatalf("len(Days) = %d, want 7", len(v.Days))
	}
	if v.Days[0].Date != d("2024-05-13") || v.Days[0].Date.Weekday() != time.Monday {
		t.Errorf("week starts %s", v.Days[0].Date)
	}
	if v.Days[6].Date != d("2024-05-19") {
		t.Errorf("week ends %s", v.Days[6].Date)
	}
	if !v.Days[2].IsToday {
		t.Error("Wednesday should be today")
	}
}

func TestBucket_MonthStartingWednesday(t *testing.T) {
	// May 2024 starts on a Wednesday and ends on a Friday.
	l := ledger.New([]habit.CheckIn{
		{HabitID: "a", Date: d("2024-04-29")},
		{HabitID: "b", Date: d("2024-04-29")},
		{HabitID: "a", Date: d("2024-05-10")},
	})
	v := Bucket(habit.ViewMonth, d("2024-05-10"), d("2024-05-20"), l)

	if v.Start != d("2024-04-29") {
		t.Errorf("Start = %s, want Monday two days before May 1", v.Start)
	}
	if v.End != d("2024-06-02") {
		t.Errorf("End = %s, want 2024-06-02", v.End)
	}
	if len(v.Days)%7 != 0 || len(v.Days) != 35 {
		t.Errorf("len(Days) = %d, want 35", len(v.Days))
	}
	first := v.Days[0]
	if first.InPeriod || first.Count != 2 || first.Level != 2 {
		t.Errorf("padding day = %+v, want out of period with count 2", first)
	}
	if !v.Days[2].InPeriod {
		t.Error("May 1 should be in period")
	}
	if v.Counts[d("2024-05-10")] != 1 {
		t.Errorf("Counts[May 10] = %d", v.Counts[d("2024-05-10")])
	}
	if v.Previous != d("2024-04-10") || v.Next != d("2024-06-10") {
		t.Errorf("navigation = %s / %s", v.Previous, v.Next)
	}
}

func TestBucket_Year(t *testing.T) {
	tests := []struct {
		ref  string
		want int
	}{
		{"2024-07-01", 366},
		{"2023-07-01", 365},
		{"2100-01-01", 365},
		{"2000-12-31", 366},
	}
	for _, tt := range tests {
		v := Bucket(habit.ViewYear, d(tt.ref), d(tt.ref), ledger.New(nil))
		if len(v.Days) != tt.want {
			t.Errorf("year of %s: %d days, want %d", tt.ref, len(v.Days), tt.want)
		}
		if v.Days[0].Date.Month != time.January || v.Days[0].Date.Day != 1 {
			t.Errorf("year of %s starts %s", tt.ref, v.Days[0].Date)
		}
	}
}

func TestNavigate_Clamps(t *testing.T) {
	if got := Navigate(habit.ViewMonth, d("2024-01-31"), 1); got != d("2024-02-29") {
		t.Errorf("Jan 31 + 1 month = %s", got)
	}
	if got := Navigate(habit.ViewYear, d("2024-02-29"), 1); got != d("2025-02-28") {
		t.Errorf("Feb 29 + 1 year = %s", got)
	}
	if got := Navigate(habit.ViewWeek, d("2024-12-30"), 1); got != d("2025-01-06") {
		t.Errorf("week forward = %s", got)
	}
}

func TestLevel(t *testing.T) {
	want := []int{0, 1, 2, 2, 3, 3, 4, 4}
	for n, w := range want {
		if got := Level(n); got != w {
			t.Errorf("Level(%d) = %d, want %d", n, got, w)
		}
	}
}
