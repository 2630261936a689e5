package cmd

import (
	"errors"
	"fmt"

	"github.com/brk3/habitbattles/pkg/habit"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var checkinCmd = &cobra.Command{
	Use:   "checkin <habit-id>",
	Short: "Check in a habit for today",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient().CheckIn(cmd.Context(), args[0])
		if errors.Is(err, habit.ErrDuplicateCheckIn) {
			fmt.Fprintln(cmd.OutOrStdout(), color.YellowString("Already checked in today"))
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.GreenString("✓ Checked in for"), c.Date)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkinCmd)
}
