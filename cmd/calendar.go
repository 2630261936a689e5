package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/brk3/habitbattles/internal/heatmap"
	"github.com/brk3/habitbattles/pkg/calendar"
	"github.com/brk3/habitbattles/pkg/habit"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	calendarView string
	calendarDate string
)

var levelGlyphs = []string{"·", "░", "▒", "▓", "█"}

var weekdayLabels = []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show a heatmap of check-ins",
	Long: `The "calendar" command draws a heatmap of check-ins for a week, a month
(padded to whole Monday to Sunday weeks) or a year. Darker cells mean more
check-ins that day.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := heatmap.ParseViewMode(calendarView)
		if err != nil {
			return err
		}
		var ref calendar.Date
		if calendarDate != "" {
			if ref, err = calendar.ParseDate(calendarDate); err != nil {
				return err
			}
		}
		v, err := newClient().Calendar(cmd.Context(), mode, ref)
		if err != nil {
			return err
		}
		renderCalendar(cmd.OutOrStdout(), v)
		return nil
	},
}

func renderCalendar(out io.Writer, v habit.CalendarView) {
	color.New(color.Bold).Fprintf(out, "%s view, %s to %s\n", v.Mode, v.Start, v.End)
	if len(v.Days) == 0 {
		return
	}
	if v.Mode == habit.ViewYear {
		renderYear(out, v)
	} else {
		renderWeeks(out, v)
	}
	fmt.Fprintf(out, "%s %s  %s %s\n", faint.Sprint("prev"), v.Previous, faint.Sprint("next"), v.Next)
}

// renderWeeks prints one Monday to Sunday row per week.
func renderWeeks(out io.Writer, v habit.CalendarView) {
	fmt.Fprintln(out, strings.Join(weekdayLabels, "  "))
	lead := v.Days[0].Date.ISOWeekday() - 1
	var row strings.Builder
	row.WriteString(strings.Repeat("    ", lead))
	for i, d := range v.Days {
		cell := fmt.Sprintf("%2d", d.Date.Day)
		switch {
		case !d.InPeriod:
			cell = faint.Sprint(cell)
		case d.Count > 0:
			cell = levelColor(d.Level).Sprint(cell)
		}
		if d.IsToday {
			cell = color.New(color.Underline).Sprint(cell)
		}
		row.WriteString(cell)
		if (lead+i+1)%7 == 0 || i == len(v.Days)-1 {
			fmt.Fprintln(out, strings.TrimRight(row.String(), " "))
			row.Reset()
		} else {
			row.WriteString("  ")
		}
	}
}

// renderYear prints seven weekday rows with one column per week.
func renderYear(out io.Writer, v habit.CalendarView) {
	lead := v.Days[0].Date.ISOWeekday() - 1
	weeks := (lead + len(v.Days) + 6) / 7
	grid := make([][]string, 7)
	for wd := range grid {
		grid[wd] = make([]string, weeks)
		for w := range grid[wd] {
			grid[wd][w] = " "
		}
	}
	for i, d := range v.Days {
		pos := lead + i
		grid[pos%7][pos/7] = levelCell(d.Level)
	}
	for wd, cells := range grid {
		fmt.Fprintf(out, "%s %s\n", weekdayLabels[wd], strings.Join(cells, ""))
	}
}

func levelCell(level int) string {
	if level == 0 {
		return faint.Sprint(levelGlyphs[0])
	}
	return levelColor(level).Sprint(levelGlyphs[level])
}

func levelColor(level int) *color.Color {
	if level >= 3 {
		return color.New(color.FgHiGreen, color.Bold)
	}
	return color.New(color.FgGreen)
}

func init() {
	calendarCmd.Flags().StringVarP(&calendarView, "view", "v", "month", "week, month or year")
	calendarCmd.Flags().StringVarP(&calendarDate, "date", "d", "", "reference date YYYY-MM-DD (default today)")
	rootCmd.AddCommand(calendarCmd)
}
