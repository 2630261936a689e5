// Package backend opens the storage.Store selected by configuration.
package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/brk3/habitbattles/internal/config"
	"github.com/brk3/habitbattles/internal/logger"
	"github.com/brk3/habitbattles/internal/storage"
	"github.com/brk3/habitbattles/internal/storage/bolt"
	"github.com/brk3/habitbattles/internal/storage/memory"
	"github.com/brk3/habitbattles/internal/storage/sqlstore"
	"github.com/brk3/habitbattles/pkg/calendar"
)

// Open returns the store for cfg.Backend. The fixture backend is seeded
// for cfg.FixtureUser with check-ins laid out relative to today.
func Open(ctx context.Context, cfg config.StorageConfig, today calendar.Date) (storage.Store, error) {
	backend := strings.ToLower(cfg.Backend)
	logger.Info("Opening storage", "backend", backend, "path", cfg.Path)

	switch backend {
	case "", "bolt":
		st, err := bolt.Open(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open bolt store: %w", err)
		}
		return st, nil
	case sqlstore.DriverSQLite, sqlstore.DriverPostgres:
		dsn := cfg.Path
		if backend == sqlstore.DriverPostgres {
			dsn = cfg.DSN
		}
		st, err := sqlstore.Open(backend, dsn)
		if err != nil {
			return nil, err
		}
		return st, nil
	case "fixture":
		st := memory.New()
		user := cfg.FixtureUser
		if user == "" {
			user = "anonymous"
		}
		if err := st.Seed(ctx, user, today); err != nil {
			return nil, fmt.Errorf("seed fixture store: %w", err)
		}
		logger.Warn("Using fixture storage, data is not persisted", "user_id", user)
		return st, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
