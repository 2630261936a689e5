package cmd

import (
	"os"

	"github.com/brk3/habitbattles/internal/apiclient"
	"github.com/brk3/habitbattles/internal/config"
	"github.com/brk3/habitbattles/internal/logger"
	"github.com/spf13/cobra"
)

var (
	cfg        *config.Config
	configPath string
	timezone   string
)

var rootCmd = &cobra.Command{
	Use:   "habits",
	Short: "Track weekly habit quotas and streaks",
	Long: `
	Habits tracks recurring habits against a weekly target. Each habit can be
	checked in once per calendar day; the server works out weekly quotas,
	daily and weekly streaks and a calendar heatmap of your activity.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configPath != "" {
			cfg, err = config.LoadFile(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return err
		}
		return logger.Configure(cfg.Log.Format, cfg.Log.Level)
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// newClient returns an API client for the configured server. --tz takes
// precedence over the configured default timezone.
func newClient() *apiclient.Client {
	tz := timezone
	if tz == "" {
		tz = cfg.DefaultTimezone
	}
	return apiclient.New(cfg.APIBaseURL).WithToken(cfg.APIToken).WithTimezone(tz)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $HABITS_CONFIG or config.yaml)")
	rootCmd.PersistentFlags().StringVar(&timezone, "tz", "", "IANA timezone used to decide what 'today' is")
}
