package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brk3/habitbattles/internal/storage"
	"github.com/brk3/habitbattles/pkg/calendar"
	"github.com/brk3/habitbattles/pkg/habit"
)

func (s *Store) ListCheckIns(ctx context.Context, userID string, q storage.CheckInQuery) ([]habit.CheckIn, error) {
	var (
		where = []string{"user_id = ?"}
		args  = []any{userID}
	)
	if len(q.HabitIDs) > 0 {
		marks := strings.TrimSuffix(strings.Repeat("?, ", len(q.HabitIDs)), ", ")
		where = append(where, "habit_id IN ("+marks+")")
		for _, id := range q.HabitIDs {
			args = append(args, id)
		}
	}
	if !q.From.IsZero() {
		where = append(where, "checkin_date >= ?")
		args = append(args, q.From.String())
	}
	if !q.To.IsZero() {
		where = append(where, "checkin_date <= ?")
		args = append(args, q.To.String())
	}

	rows, err := s.query(ctx,
		`SELECT id, user_id, habit_id, checkin_date, created_at FROM checkins
		 WHERE `+strings.Join(where, " AND ")+` ORDER BY checkin_date`, args...)
	if err != nil {
		return nil, fmt.Errorf("list checkins: %w", err)
	}
	defer rows.Close()

	var out []habit.CheckIn
	for rows.Next() {
		var (
			c             habit.CheckIn
			date, created string
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.HabitID, &date, &created); err != nil {
			return nil, err
		}
		if c.Date, err = calendar.ParseDate(date); err != nil {
			return nil, err
		}
		if c.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", created, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) InsertCheckIn(ctx context.Context, c habit.CheckIn) error {
	_, err := s.exec(ctx,
		`INSERT INTO checkins (id, user_id, habit_id, checkin_date, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.HabitID, c.Date.String(), c.CreatedAt.UTC().Format(timestampLayout))
	if err != nil {
		if s.dialect.isConflict(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("insert checkin: %w", err)
	}
	return nil
}

func (s *Store) CountCheckIns(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM checkins WHERE user_id = ?`), userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count checkins: %w", err)
	}
	return n, nil
}
