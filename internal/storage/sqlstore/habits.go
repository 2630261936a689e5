package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/brk3/habitbattles/internal/storage"
	"github.com/brk3/habitbattles/pkg/habit"
)

func (s *Store) ListHabits(ctx context.Context, userID string) ([]habit.Habit, error) {
	rows, err := s.query(ctx,
		`SELECT id, user_id, name, target_per_week, timezone, created_at
		 FROM habits WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	defer rows.Close()

	out := []habit.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *Store) GetHabit(ctx context.Context, userID, habitID string) (habit.Habit, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT id, user_id, name, target_per_week, timezone, created_at
		 FROM habits WHERE user_id = ? AND id = ?`), userID, habitID)
	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return habit.Habit{}, storage.ErrNotFound
	}
	return h, err
}

func (s *Store) PutHabit(ctx context.Context, h habit.Habit) error {
	_, err := s.exec(ctx,
		`INSERT INTO habits (id, user_id, name, target_per_week, timezone, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   name = excluded.name,
		   target_per_week = excluded.target_per_week,
		   timezone = excluded.timezone`,
		h.ID, h.UserID, h.Name, h.TargetPerWeek, h.Timezone, h.CreatedAt.UTC().Format(timestampLayout))
	if err != nil {
		return fmt.Errorf("put habit: %w", err)
	}
	return nil
}

func (s *Store) DeleteHabit(ctx context.Context, userID, habitID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM habits WHERE user_id = ? AND id = ?`), userID, habitID)
	if err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM checkins WHERE user_id = ? AND habit_id = ?`), userID, habitID); err != nil {
		return fmt.Errorf("delete checkins: %w", err)
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHabit(row scanner) (habit.Habit, error) {
	var (
		h       habit.Habit
		created string
	)
	if err := row.Scan(&h.ID, &h.UserID, &h.Name, &h.TargetPerWeek, &h.Timezone, &created); err != nil {
		return habit.Habit{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return habit.Habit{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	h.CreatedAt = t
	return h, nil
}
