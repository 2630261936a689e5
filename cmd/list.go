package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var faint = color.New(color.Faint)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List habits",
	Long: `The "list" command shows your habits with this week's progress. A tick
marks habits already checked in today.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		habits, err := newClient().ListHabits(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(habits) == 0 {
			fmt.Fprintln(out, "No habits yet, add one with 'habits habit add'.")
			return nil
		}
		for _, h := range habits {
			mark := " "
			if h.DoneToday {
				mark = color.GreenString("✓")
			}
			progress := fmt.Sprintf("%d/%d", h.DoneThisWeek, h.TargetPerWeek)
			if h.DoneThisWeek >= h.TargetPerWeek {
				progress = color.GreenString(progress)
			}
			fmt.Fprintf(out, "%s %s %s %s\n", mark, padRight(h.Name, 24), progress, faint.Sprint(h.ID))
		}
		return nil
	},
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	habitCmd.AddCommand(listCmd)
}
