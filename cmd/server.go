package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brk3/habitbattles/internal/logger"
	"github.com/brk3/habitbattles/internal/nudge"
	"github.com/brk3/habitbattles/internal/server"
	"github.com/brk3/habitbattles/internal/storage/backend"
	"github.com/brk3/habitbattles/pkg/calendar"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return startServer(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

func startServer(ctx context.Context) error {
	clock, err := calendar.NewClock(cfg.DefaultTimezone)
	if err != nil {
		return err
	}
	st, err := backend.Open(ctx, cfg.Storage, clock.Today(""))
	if err != nil {
		return err
	}
	defer st.Close()

	srv, err := server.New(cfg, st, server.WithClock(clock))
	if err != nil {
		return err
	}

	if cfg.Nudge.Schedule != "" {
		c, err := scheduleNudges(ctx, srv, clock)
		if err != nil {
			return err
		}
		c.Start()
		defer c.Stop()
	}

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "addr", cfg.ListenAddr, "backend", cfg.Storage.Backend, "auth", cfg.AuthEnabled)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// scheduleNudges runs the nudge check for cfg.Nudge.UserID on the
// configured cron schedule, reading straight from the server's engine.
func scheduleNudges(ctx context.Context, srv *server.Server, clock *calendar.Clock) (*cron.Cron, error) {
	n, err := newNotifier(cfg.Nudge, os.Stdout, false)
	if err != nil {
		return nil, fmt.Errorf("nudge schedule: %w", err)
	}
	q := nudge.EngineQuerier{Engine: srv.Engine(), UserID: cfg.Nudge.UserID, Timezone: cfg.DefaultTimezone}

	log := logger.With("user_id", q.UserID, "schedule", cfg.Nudge.Schedule)
	c := cron.New(cron.WithLocation(clock.Default()))
	if _, err := c.AddFunc(cfg.Nudge.Schedule, func() {
		if _, err := nudge.Run(ctx, q, n, clock.Now(q.Timezone), nudgeThreshold(cfg.Nudge)); err != nil {
			log.ErrorContext(ctx, "Scheduled nudge failed", "error", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid nudge.schedule %q: %w", cfg.Nudge.Schedule, err)
	}
	log.Info("Nudges scheduled")
	return c, nil
}
