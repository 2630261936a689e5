package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brk3/habitbattles/internal/config"
	"github.com/brk3/habitbattles/internal/server"
	"github.com/brk3/habitbattles/internal/storage/memory"
	"github.com/brk3/habitbattles/pkg/calendar"
	"github.com/brk3/habitbattles/pkg/habit"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	clock, err := calendar.NewClock("UTC")
	if err != nil {
		t.Fatalf("NewClock: %v", err)
	}
	clock = clock.WithNow(func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) })

	s, err := server.New(&config.Config{}, memory.New(), server.WithClock(clock))
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return New(ts.URL + "/")
}

func ptr[T any](v T) *T { return &v }

func TestClient_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	h, err := c.CreateHabit(ctx, habit.HabitInput{Name: ptr("guitar"), TargetPerWeek: ptr(2)})
	if err != nil {
		t.Fatalf("CreateHabit: %v", err)
	}
	if _, err := c.CheckIn(ctx, h.ID); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}

	habits, err := c.ListHabits(ctx)
	if err != nil {
		t.Fatalf("ListHabits: %v", err)
	}
	if len(habits) != 1 || !habits[0].DoneToday || habits[0].DoneThisWeek != 1 {
		t.Fatalf("habits = %+v", habits)
	}

	q, err := c.QuotaStats(ctx)
	if err != nil {
		t.Fatalf("QuotaStats: %v", err)
	}
	if q.TotalCheckins != 1 || q.WeeklyQuotasMet != 0 {
		t.Errorf("quota = %+v", q)
	}

	s, err := c.Streak(ctx)
	if err != nil {
		t.Fatalf("Streak: %v", err)
	}
	if s.DailyStreak != 1 {
		t.Errorf("streak = %+v", s)
	}

	v, err := c.Calendar(ctx, habit.ViewWeek, calendar.MustParseDate("2024-05-01"))
	if err != nil {
		t.Fatalf("Calendar: %v", err)
	}
	if len(v.Days) != 7 || v.Counts[calendar.MustParseDate("2024-05-01")] != 1 {
		t.Errorf("week view = %+v", v)
	}

	sum, err := c.GetHabitSummary(ctx, h.ID)
	if err != nil {
		t.Fatalf("GetHabitSummary: %v", err)
	}
	if sum.Name != "guitar" || sum.TotalDaysDone != 1 {
		t.Errorf("summary = %+v", sum)
	}

	updated, err := c.UpdateHabit(ctx, h.ID, habit.HabitInput{Name: ptr("bass")})
	if err != nil || updated.Name != "bass" {
		t.Fatalf("UpdateHabit: %+v, %v", updated, err)
	}
	if err := c.DeleteHabit(ctx, h.ID); err != nil {
		t.Fatalf("DeleteHabit: %v", err)
	}
	if _, err := c.Version(ctx); err != nil {
		t.Fatalf("Version: %v", err)
	}
}

func TestClient_ErrorMapping(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	if _, err := c.CreateHabit(ctx, habit.HabitInput{Name: ptr("x"), TargetPerWeek: ptr(9)}); !habit.IsValidation(err) {
		t.Errorf("invalid target: got %v, want validation error", err)
	}
	if _, err := c.CheckIn(ctx, "missing"); !errors.Is(err, habit.ErrNotFound) {
		t.Errorf("unknown habit: got %v, want ErrNotFound", err)
	}

	h, err := c.CreateHabit(ctx, habit.HabitInput{Name: ptr("run"), TargetPerWeek: ptr(3)})
	if err != nil {
		t.Fatalf("CreateHabit: %v", err)
	}
	if _, err := c.CheckIn(ctx, h.ID); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if _, err := c.CheckIn(ctx, h.ID); !errors.Is(err, habit.ErrDuplicateCheckIn) {
		t.Errorf("second check-in: got %v, want ErrDuplicateCheckIn", err)
	}
}

func TestClient_SendsHeaders(t *testing.T) {
	var auth, tz string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		tz = r.Header.Get("X-Timezone")
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	c := New(ts.URL).WithToken("hab_live_abc").WithTimezone("Europe/Dublin")
	_, err := c.ListHabits(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized", err)
	}
	if auth != "Bearer hab_live_abc" || tz != "Europe/Dublin" {
		t.Fatalf("headers: auth=%q tz=%q", auth, tz)
	}
}
