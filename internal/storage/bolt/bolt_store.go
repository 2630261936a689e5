package bolt

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/brk3/habitbattles/internal/storage"
	"github.com/brk3/habitbattles/pkg/habit"
	"go.etcd.io/bbolt"
)

const (
	rootBucket     = "users"
	apiKeysBucket  = "apikeys"
	habitsBucket   = "habits"
	checkinsBucket = "checkins"
	defaultUserID  = "default"
)

// Store keeps each user's habits and check-ins in nested buckets:
//
//	users/<user>/habits/<habit id>            -> habit JSON
//	users/<user>/checkins/<habit id>/<date>   -> check-in JSON
//
// The check-in key doubles as the uniqueness constraint.
type Store struct {
	db *bbolt.DB
}

func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{rootBucket, apiKeysBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// userBucket returns the named sub-bucket for userID. In read-only
// transactions a missing bucket yields nil.
func userBucket(tx *bbolt.Tx, userID, name string) (*bbolt.Bucket, error) {
	if userID == "" {
		userID = defaultUserID
	}
	users := tx.Bucket([]byte(rootBucket))
	if !tx.Writable() {
		u := users.Bucket([]byte(userID))
		if u == nil {
			return nil, nil
		}
		return u.Bucket([]byte(name)), nil
	}
	u, err := users.CreateBucketIfNotExists([]byte(userID))
	if err != nil {
		return nil, err
	}
	return u.CreateBucketIfNotExists([]byte(name))
}

func checkInKey(habitID, date string) []byte {
	return fmt.Appendf(nil, "%s/%s", habitID, date)
}

func (s *Store) ListHabits(ctx context.Context, userID string) ([]habit.Habit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []habit.Habit{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket, err := userBucket(tx, userID, habitsBucket)
		if err != nil || bucket == nil {
			return err
		}
		return bucket.ForEach(func(_, v []byte) error {
			var h habit.Habit
			if err := json.Unmarshal(v, &h); err != nil {
				return err
			}
			out = append(out, h)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(out, func(a, b habit.Habit) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *Store) GetHabit(ctx context.Context, userID, habitID string) (habit.Habit, error) {
	if err := ctx.Err(); err != nil {
		return habit.Habit{}, err
	}
	var h habit.Habit
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket, err := userBucket(tx, userID, habitsBucket)
		if err != nil {
			return err
		}
		if bucket == nil {
			return storage.ErrNotFound
		}
		v := bucket.Get([]byte(habitID))
		if v == nil {
			return storage.ErrNotFound
		}
		return json.Unmarshal(v, &h)
	})
	return h, err
}

func (s *Store) PutHabit(ctx context.Context, h habit.Habit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	val, err := json.Marshal(h)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := userBucket(tx, h.UserID, habitsBucket)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(h.ID), val)
	})
}

func (s *Store) DeleteHabit(ctx context.Context, userID, habitID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		habits, err := userBucket(tx, userID, habitsBucket)
		if err != nil {
			return err
		}
		if habits.Get([]byte(habitID)) == nil {
			return storage.ErrNotFound
		}
		if err := habits.Delete([]byte(habitID)); err != nil {
			return err
		}

		checkins, err := userBucket(tx, userID, checkinsBucket)
		if err != nil {
			return err
		}
		c := checkins.Cursor()
		prefix := []byte(habitID + "/")
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Seek(prefix) {
			if err := c.Delete(); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) ListCheckIns(ctx context.Context, userID string, q storage.CheckInQuery) ([]habit.CheckIn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []habit.CheckIn
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket, err := userBucket(tx, userID, checkinsBucket)
		if err != nil || bucket == nil {
			return err
		}
		return bucket.ForEach(func(_, v []byte) error {
			var c habit.CheckIn
			if err := json.Unmarshal(v, &c); err != nil {
				return err
			}
			if q.Matches(c) {
				out = append(out, c)
			}
			return nil
		})
	})
	return out, err
}

func (s *Store) InsertCheckIn(ctx context.Context, c habit.CheckIn) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	val, err := json.Marshal(c)
	if err != nil {
		return err
	}
	key := checkInKey(c.HabitID, c.Date.String())
	// bbolt serializes writers, so the existence check and the put below
	// cannot interleave with another insert.
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := userBucket(tx, c.UserID, checkinsBucket)
		if err != nil {
			return err
		}
		if bucket.Get(key) != nil {
			return storage.ErrConflict
		}
		return bucket.Put(key, val)
	})
}

func (s *Store) CountCheckIns(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n := 0
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket, err := userBucket(tx, userID, checkinsBucket)
		if err != nil || bucket == nil {
			return err
		}
		n = bucket.Stats().KeyN
		return nil
	})
	return n, err
}

func (s *Store) PutAPIKey(keyHash, userID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(apiKeysBucket)).Put([]byte(keyHash), []byte(userID))
	})
}

func (s *Store) GetAPIKey(keyHash string) (string, bool, error) {
	var userID string
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket([]byte(apiKeysBucket)).Get([]byte(keyHash)); v != nil {
			userID = string(v)
		}
		return nil
	})
	return userID, userID != "", err
}

func (s *Store) ListAPIKeyHashes(userID string) ([]string, error) {
	hashes := []string{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(apiKeysBucket)).ForEach(func(k, v []byte) error {
			if string(v) == userID {
				hashes = append(hashes, string(k))
			}
			return nil
		})
	})
	return hashes, err
}

func (s *Store) DeleteAPIKey(keyHash string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(apiKeysBucket)).Delete([]byte(keyHash))
	})
}

var _ storage.Store = (*Store)(nil)
