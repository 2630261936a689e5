// Package sqlstore implements storage.Store on database/sql, backed by
// either modernc.org/sqlite or PostgreSQL through lib/pq.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// timestampLayout is fixed width so created_at text sorts chronologically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS habits (
		id              TEXT PRIMARY KEY,
		user_id         TEXT NOT NULL,
		name            TEXT NOT NULL,
		target_per_week INTEGER NOT NULL,
		timezone        TEXT NOT NULL DEFAULT '',
		created_at      TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_habits_user ON habits(user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS checkins (
		id           TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL,
		habit_id     TEXT NOT NULL,
		checkin_date TEXT NOT NULL,
		created_at   TEXT NOT NULL,
		UNIQUE (user_id, habit_id, checkin_date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_checkins_user_date ON checkins(user_id, checkin_date)`,
	`CREATE TABLE IF NOT EXISTS api_keys (
		key_hash TEXT PRIMARY KEY,
		user_id  TEXT NOT NULL
	)`,
}

type dialect struct {
	driver     string
	numbered   bool
	isConflict func(error) bool
}

var dialects = map[string]dialect{
	DriverSQLite: {
		driver: "sqlite",
		isConflict: func(err error) bool {
			var e *sqlite.Error
			if !errors.As(err, &e) {
				return false
			}
			return e.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
				e.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
		},
	},
	DriverPostgres: {
		driver:   "postgres",
		numbered: true,
		isConflict: func(err error) bool {
			var e *pq.Error
			return errors.As(err, &e) && e.Code == "23505"
		},
	},
}

type Store struct {
	db      *sql.DB
	dialect dialect
}

// Open connects to the database and creates the schema if needed. For
// sqlite, dsn is a file path.
func Open(driver, dsn string) (*Store, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	if driver == DriverSQLite {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
		dsn = "file:" + dsn + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, dialect: d}
	if err := s.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders into $1, $2, ... for postgres.
func (s *Store) rebind(query string) string {
	if !s.dialect.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) exec(ctx context.Context, q string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.rebind(q), args...)
}

func (s *Store) query(ctx context.Context, q string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.rebind(q), args...)
}
