package cmd

import (
	"fmt"
	"io"

	"github.com/brk3/habitbattles/pkg/habit"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show weekly quota progress and streaks",
	Long: `The "stats" command shows how many habits have met their weekly target in
the current Monday to Sunday week, plus your daily and weekly streaks.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		q, err := c.QuotaStats(cmd.Context())
		if err != nil {
			return err
		}
		s, err := c.Streak(cmd.Context())
		if err != nil {
			return err
		}
		printStats(cmd.OutOrStdout(), q, s)
		return nil
	},
}

func printStats(out io.Writer, q habit.QuotaStats, s habit.StreakData) {
	bold := color.New(color.Bold)
	bold.Fprintf(out, "Week %s to %s\n", q.WeekStart, q.WeekEnd)
	fmt.Fprintf(out, "Quotas met: %d/%d   Total check-ins: %d\n", q.WeeklyQuotasMet, q.TotalHabits, q.TotalCheckins)
	for _, p := range q.CurrentWeekProgress {
		mark := color.YellowString("…")
		if p.IsMet {
			mark = color.GreenString("✓")
		}
		fmt.Fprintf(out, "  %s %s %d/%d\n", mark, padRight(p.HabitName, 24), p.Completed, p.Target)
	}

	last := "never"
	if s.LastCheckinDate != nil {
		last = s.LastCheckinDate.String()
	}
	fmt.Fprintln(out)
	bold.Fprintln(out, "Streaks")
	fmt.Fprintf(out, "  Daily:  %d day(s)\n", s.DailyStreak)
	fmt.Fprintf(out, "  Weekly: %d week(s)\n", s.WeeklyStreak)
	fmt.Fprintf(out, "  Last check-in: %s\n", last)
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
