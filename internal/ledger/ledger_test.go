package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/brk3/habitbattles/internal/storage"
	"github.com/brk3/habitbattles/internal/storage/memory"
	"github.com/brk3/habitbattles/pkg/calendar"
	"github.com/brk3/habitbattles/pkg/habit"
)

func d(s string) calendar.Date { return calendar.MustParseDate(s) }

func ci(habitID, date string) habit.CheckIn {
	return habit.CheckIn{ID: habitID + date, UserID: "u", HabitID: habitID, Date: d(date)}
}

func TestNew_DeduplicatesHabitDate(t *testing.T) {
	l := New([]habit.CheckIn{ci("a", "2024-05-01"), ci("a", "2024-05-01"), ci("b", "2024-05-01")})
	if l.Len() != 2 {
		t.Errorf("Len() = %d, want 2", l.Len())
	}
	if got := l.CountOn(d("2024-05-01")); got != 2 {
		t.Errorf("CountOn = %d, want 2", got)
	}
}

func TestCountsForWeek(t *testing.T) {
	l := New([]habit.CheckIn{
		ci("a", "2024-04-28"), // previous Sunday
		ci("a", "2024-04-29"),
		ci("a", "2024-05-01"),
		ci("a", "2024-05-05"),
		ci("b", "2024-05-06"), // next Monday
	})
	w := calendar.WeekOf(d("2024-05-01"))
	got := l.CountsForWeek([]string{"a", "b", "c"}, w)

	want := map[string]int{"a": 3, "b": 0, "c": 0}
	for id, n := range want {
		if got[id] != n {
			t.Errorf("count[%s] = %d, want %d", id, got[id], n)
		}
	}
}

func TestHabitsOn(t *testing.T) {
	l := New([]habit.CheckIn{ci("a", "2024-05-01"), ci("b", "2024-05-02")})
	got := l.HabitsOn([]string{"a", "b"}, d("2024-05-01"))
	if !got["a"] || got["b"] {
		t.Errorf("HabitsOn = %v", got)
	}
}

func TestDatesDescending(t *testing.T) {
	l := New([]habit.CheckIn{
		ci("a", "2024-05-01"),
		ci("b", "2024-05-03"),
		ci("b", "2024-05-01"),
		ci("a", "2024-04-30"),
	})
	got := l.DatesDescending()
	want := []calendar.Date{d("2024-05-03"), d("2024-05-01"), d("2024-04-30")}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if hd := l.HabitDatesDescending("b"); len(hd) != 2 || hd[0] != d("2024-05-03") {
		t.Errorf("HabitDatesDescending(b) = %v", hd)
	}
}

func TestRecord_Duplicate(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	for _, date := range []string{"2024-04-29", "2024-04-30", "2024-05-01"} {
		if err := Record(ctx, store, ci("a", date)); err != nil {
			t.Fatalf("Record(%s) failed: %v", date, err)
		}
	}

	err := Record(ctx, store, ci("a", "2024-05-01"))
	if !errors.Is(err, habit.ErrDuplicateCheckIn) {
		t.Fatalf("expected ErrDuplicateCheckIn, got %v", err)
	}

	counts, err := CheckInsForWeek(ctx, store, "u", []string{"a"}, d("2024-04-29"), d("2024-05-05"))
	if err != nil {
		t.Fatalf("CheckInsForWeek failed: %v", err)
	}
	if counts["a"] != 3 {
		t.Errorf("count after duplicate = %d, want 3", counts["a"])
	}

	if err := Record(ctx, store, ci("a", "2024-05-02")); err != nil {
		t.Fatalf("Record(Thu) failed: %v", err)
	}
	counts, _ = CheckInsForWeek(ctx, store, "u", []string{"a"}, d("2024-04-29"), d("2024-05-05"))
	if counts["a"] != 4 {
		t.Errorf("count after Thursday = %d, want 4", counts["a"])
	}
}

// racyStore hides existing rows from the pre-check so the insert path
// has to report the conflict.
type racyStore struct {
	*memory.Store
	insertErr error
}

func (r racyStore) ListCheckIns(context.Context, string, storage.CheckInQuery) ([]habit.CheckIn, error) {
	return nil, nil
}

func (r racyStore) InsertCheckIn(ctx context.Context, c habit.CheckIn) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	return r.Store.InsertCheckIn(ctx, c)
}

func TestRecord_StoreConflictIsDuplicate(t *testing.T) {
	err := Record(context.Background(), racyStore{Store: memory.New(), insertErr: storage.ErrConflict}, ci("a", "2024-05-01"))
	if !errors.Is(err, habit.ErrDuplicateCheckIn) {
		t.Fatalf("expected ErrDuplicateCheckIn, got %v", err)
	}
}

func TestRecord_StoreFailure(t *testing.T) {
	boom := errors.New("disk on fire")
	err := Record(context.Background(), racyStore{Store: memory.New(), insertErr: boom}, ci("a", "2024-05-01"))
	if !errors.Is(err, habit.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected cause to be wrapped, got %v", err)
	}
}

func TestCheckInsForDay(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	_ = store.InsertCheckIn(ctx, ci("a", "2024-05-01"))
	_ = store.InsertCheckIn(ctx, ci("b", "2024-05-02"))

	got, err := CheckInsForDay(ctx, store, "u", []string{"a", "b"}, d("2024-05-01"))
	if err != nil {
		t.Fatalf("CheckInsForDay failed: %v", err)
	}
	if len(got) != 1 || !got["a"] {
		t.Errorf("CheckInsForDay = %v", got)
	}

	dates, err := AllCheckInDatesDescending(ctx, store, "u")
	if err != nil {
		t.Fatalf("AllCheckInDatesDescending failed: %v", err)
	}
	if len(dates) != 2 || dates[0] != d("2024-05-02") {
		t.Errorf("dates = %v", dates)
	}
}
