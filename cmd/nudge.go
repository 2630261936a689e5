package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/brk3/habitbattles/internal/config"
	"github.com/brk3/habitbattles/internal/nudge"
	"github.com/brk3/habitbattles/internal/nudge/resend"
	"github.com/brk3/habitbattles/pkg/calendar"
	"github.com/spf13/cobra"
)

var nudgeDryRun bool

var nudgeCmd = &cobra.Command{
	Use:   "nudge",
	Short: "Send a reminder for streaks and weekly targets about to slip",
	Long: `The "nudge" command emails a reminder when a daily streak will end at
midnight (last check-in yesterday, less than nudge.threshold_hours left) or
when a habit needs a check-in on every remaining day of the week to reach
its target. Use --dry-run to print the reminder instead of sending it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := newNotifier(cfg.Nudge, cmd.OutOrStdout(), nudgeDryRun)
		if err != nil {
			return err
		}
		clock, err := calendar.NewClock(cfg.DefaultTimezone)
		if err != nil {
			return err
		}
		c := newClient()
		_, err = nudge.Run(cmd.Context(), c, n, clock.Now(c.Timezone), nudgeThreshold(cfg.Nudge))
		return err
	},
}

func nudgeThreshold(nc config.NudgeConfig) time.Duration {
	return time.Duration(nc.ThresholdHours) * time.Hour
}

func newNotifier(nc config.NudgeConfig, out io.Writer, dryRun bool) (nudge.Notifier, error) {
	if dryRun {
		return printNotifier{out: out}, nil
	}
	if nc.ResendAPIKey == "" {
		return nil, fmt.Errorf("nudge.resend_api_key or HABITS_RESEND_API_KEY must be set")
	}
	if nc.Email == "" {
		return nil, fmt.Errorf("nudge.email or HABITS_NOTIFY_EMAIL must be set")
	}
	return &resend.ResendNotifier{ApiKey: nc.ResendAPIKey, Email: nc.Email, From: nc.From}, nil
}

type printNotifier struct {
	out io.Writer
}

func (p printNotifier) SendNudge(_ context.Context, r nudge.Report) error {
	for _, name := range r.Expiring {
		fmt.Fprintf(p.out, "streak expiring in %dh: %s\n", r.HoursLeft, name)
	}
	for _, q := range r.QuotaRisk {
		fmt.Fprintf(p.out, "quota at risk: %s needs %d in %d days\n", q.HabitName, q.Remaining, q.DaysLeft)
	}
	return nil
}

func init() {
	nudgeCmd.Flags().BoolVar(&nudgeDryRun, "dry-run", false, "print the reminder instead of emailing it")
	rootCmd.AddCommand(nudgeCmd)
}
