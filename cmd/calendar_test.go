package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/brk3/habitbattles/internal/heatmap"
	"github.com/brk3/habitbattles/internal/ledger"
	"github.com/brk3/habitbattles/pkg/calendar"
	"github.com/brk3/habitbattles/pkg/habit"
)

func TestRenderCalendar_Month(t *testing.T) {
	ref := calendar.MustParseDate("2024-05-10")
	l := ledger.New([]habit.CheckIn{{HabitID: "h", Date: ref}})
	v := heatmap.Bucket(habit.ViewMonth, ref, ref, l)

	var out bytes.Buffer
	renderCalendar(&out, v)
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")

	// title, weekday header, five weeks, navigation
	if len(lines) != 8 {
		t.Fatalf("got %d lines:\n%s", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[1], "Mo  Tu") {
		t.Errorf("header = %q", lines[1])
	}
	if lines[2] != "29  30   1   2   3   4   5" {
		t.Errorf("first week = %q", lines[2])
	}
	if lines[6] != "27  28  29  30  31   1   2" {
		t.Errorf("last week = %q", lines[6])
	}
}

func TestRenderCalendar_Year(t *testing.T) {
	ref := calendar.MustParseDate("2024-06-01")
	v := heatmap.Bucket(habit.ViewYear, ref, ref, ledger.New(nil))

	var out bytes.Buffer
	renderCalendar(&out, v)
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 9 {
		t.Fatalf("got %d lines:\n%s", len(lines), out.String())
	}
	// 2024 starts on a Monday; 366 days span 53 week columns.
	if got := len([]rune(strings.TrimPrefix(lines[1], "Mo "))); got != 53 {
		t.Errorf("Monday row has %d cells, want 53", got)
	}
}
