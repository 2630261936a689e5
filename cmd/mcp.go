package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/brk3/habitbattles/internal/engine"
	"github.com/brk3/habitbattles/internal/mcp"
	"github.com/brk3/habitbattles/internal/storage/backend"
	"github.com/brk3/habitbattles/pkg/calendar"
	"github.com/spf13/cobra"
)

var mcpUser string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server on stdio",
	Long: `Start a Model Context Protocol server over stdin/stdout. It opens the
configured storage directly and acts as a single user (--user).

AVAILABLE TOOLS:

  list_habits       Habits with today's status and weekly count
  check_in          Check in a habit for today
  get_quota_stats   Weekly quota progress
  get_streak        Daily and weekly streaks
  get_calendar      Per-day counts for a week, month or year`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		clock, err := calendar.NewClock(cfg.DefaultTimezone)
		if err != nil {
			return err
		}
		st, err := backend.Open(ctx, cfg.Storage, clock.Today(timezone))
		if err != nil {
			return err
		}
		defer st.Close()

		return mcp.NewServer(engine.New(st, clock), mcpUser, timezone).Serve(ctx)
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpUser, "user", "anonymous", "user whose habits are served")
	rootCmd.AddCommand(mcpCmd)
}
