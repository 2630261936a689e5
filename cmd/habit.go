package cmd

import (
	"fmt"

	"github.com/brk3/habitbattles/pkg/habit"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	addTarget    int
	addTimezone  string
	editName     string
	editTarget   int
	editTimezone string
)

var habitCmd = &cobra.Command{
	Use:   "habit",
	Short: "Manage habits",
}

var habitAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a habit with a weekly target",
	Long: `Create a habit. --target is how many days per week (1-7) you aim to
check it in. --timezone pins the habit to an IANA zone; otherwise the
server default is used.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := habit.HabitInput{Name: &args[0], TargetPerWeek: &addTarget}
		if addTimezone != "" {
			in.Timezone = &addTimezone
		}
		h, err := newClient().CreateHabit(cmd.Context(), in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d/week) %s\n",
			color.GreenString("✓ Added"), h.Name, h.TargetPerWeek, faint.Sprint(h.ID))
		return nil
	},
}

var habitEditCmd = &cobra.Command{
	Use:   "edit <habit-id>",
	Short: "Change a habit's name, target or timezone",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in habit.HabitInput
		if cmd.Flags().Changed("name") {
			in.Name = &editName
		}
		if cmd.Flags().Changed("target") {
			in.TargetPerWeek = &editTarget
		}
		if cmd.Flags().Changed("timezone") {
			in.Timezone = &editTimezone
		}
		if in == (habit.HabitInput{}) {
			return fmt.Errorf("nothing to change, pass --name, --target or --timezone")
		}
		h, err := newClient().UpdateHabit(cmd.Context(), args[0], in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d/week)\n", color.GreenString("✓ Updated"), h.Name, h.TargetPerWeek)
		return nil
	},
}

var habitRmCmd = &cobra.Command{
	Use:     "rm <habit-id>",
	Aliases: []string{"delete"},
	Short:   "Delete a habit and all of its check-ins",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().DeleteHabit(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.YellowString("✗ Deleted"), args[0])
		return nil
	},
}

func init() {
	habitAddCmd.Flags().IntVarP(&addTarget, "target", "t", 3, "check-ins per week (1-7)")
	habitAddCmd.Flags().StringVar(&addTimezone, "timezone", "", "IANA timezone for the habit")

	habitEditCmd.Flags().StringVar(&editName, "name", "", "new name")
	habitEditCmd.Flags().IntVarP(&editTarget, "target", "t", 0, "new weekly target (1-7)")
	habitEditCmd.Flags().StringVar(&editTimezone, "timezone", "", "new IANA timezone")

	habitCmd.AddCommand(habitAddCmd, habitEditCmd, habitRmCmd)
	rootCmd.AddCommand(habitCmd)
}
