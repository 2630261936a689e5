// Package memory is a process-local storage.Store used by tests and by the
// fixture backend.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/brk3/habitbattles/internal/storage"
	"github.com/brk3/habitbattles/pkg/calendar"
	"github.com/brk3/habitbattles/pkg/habit"
)

type checkInKey struct {
	userID, habitID string
	date            calendar.Date
}

type Store struct {
	mu       sync.RWMutex
	habits   map[string]map[string]habit.Habit // user -> id -> habit
	checkins map[checkInKey]habit.CheckIn
	apiKeys  map[string]string
}

func New() *Store {
	return &Store{
		habits:   make(map[string]map[string]habit.Habit),
		checkins: make(map[checkInKey]habit.CheckIn),
		apiKeys:  make(map[string]string),
	}
}

func (s *Store) ListHabits(_ context.Context, userID string) ([]habit.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []habit.Habit{}
	for _, h := range s.habits[userID] {
		out = append(out, h)
	}
	slices.SortFunc(out, func(a, b habit.Habit) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *Store) GetHabit(_ context.Context, userID, habitID string) (habit.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.habits[userID][habitID]
	if !ok {
		return habit.Habit{}, storage.ErrNotFound
	}
	return h, nil
}

func (s *Store) PutHabit(_ context.Context, h habit.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.habits[h.UserID] == nil {
		s.habits[h.UserID] = make(map[string]habit.Habit)
	}
	s.habits[h.UserID][h.ID] = h
	return nil
}

func (s *Store) DeleteHabit(_ context.Context, userID, habitID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.habits[userID][habitID]; !ok {
		return storage.ErrNotFound
	}
	delete(s.habits[userID], habitID)
	for k := range s.checkins {
		if k.userID == userID && k.habitID == habitID {
			delete(s.checkins, k)
		}
	}
	return nil
}

func (s *Store) ListCheckIns(_ context.Context, userID string, q storage.CheckInQuery) ([]habit.CheckIn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []habit.CheckIn
	for k, c := range s.checkins {
		if k.userID == userID && q.Matches(c) {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b habit.CheckIn) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.HabitID, b.HabitID)
	})
	return out, nil
}

func (s *Store) InsertCheckIn(_ context.Context, c habit.CheckIn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := checkInKey{c.UserID, c.HabitID, c.Date}
	if _, exists := s.checkins[k]; exists {
		return storage.ErrConflict
	}
	s.checkins[k] = c
	return nil
}

func (s *Store) CountCheckIns(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for k := range s.checkins {
		if k.userID == userID {
			n++
		}
	}
	return n, nil
}

func (s *Store) PutAPIKey(keyHash, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKeys[keyHash] = userID
	return nil
}

func (s *Store) GetAPIKey(keyHash string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.apiKeys[keyHash]
	return u, ok, nil
}

func (s *Store) ListAPIKeyHashes(userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []string{}
	for h, u := range s.apiKeys {
		if u == userID {
			out = append(out, h)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (s *Store) DeleteAPIKey(keyHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.apiKeys, keyHash)
	return nil
}

func (s *Store) Close() error { return nil }

var _ storage.Store = (*Store)(nil)
