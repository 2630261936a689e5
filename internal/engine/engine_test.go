package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/brk3/habitbattles/internal/storage"
	"github.com/brk3/habitbattles/internal/storage/memory"
	"github.com/brk3/habitbattles/pkg/calendar"
	"github.com/brk3/habitbattles/pkg/habit"
)

const user = "u1"

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) set(s string) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	c.now = t
}

func newTestEngine(t *testing.T, store storage.Store) (*Engine, *testClock) {
	t.Helper()
	tc := &testClock{}
	tc.set("2024-05-01T12:00:00Z") // Wednesday
	clock, err := calendar.NewClock("UTC")
	if err != nil {
		t.Fatalf("NewClock failed: %v", err)
	}
	return New(store, clock.WithNow(tc.Now)), tc
}

func ptr[T any](v T) *T { return &v }

func mustCreate(t *testing.T, e *Engine, name string, target int) habit.Habit {
	t.Helper()
	h, err := e.CreateHabit(context.Background(), user, habit.HabitInput{Name: ptr(name), TargetPerWeek: ptr(target)})
	if err != nil {
		t.Fatalf("CreateHabit(%q) failed: %v", name, err)
	}
	return h
}

func TestCreateHabit_Validation(t *testing.T) {
	tests := []struct {
		name  string
		in    habit.HabitInput
		field string
	}{
		{"target zero", habit.HabitInput{Name: ptr("run"), TargetPerWeek: ptr(0)}, "target_per_week"},
		{"target eight", habit.HabitInput{Name: ptr("run"), TargetPerWeek: ptr(8)}, "target_per_week"},
		{"blank name", habit.HabitInput{Name: ptr("   "), TargetPerWeek: ptr(3)}, "name"},
		{"long name", habit.HabitInput{Name: ptr(strings.Repeat("x", 65)), TargetPerWeek: ptr(3)}, "name"},
		{"missing name", habit.HabitInput{TargetPerWeek: ptr(3)}, "name"},
		{"bad timezone", habit.HabitInput{Name: ptr("run"), TargetPerWeek: ptr(3), Timezone: ptr("Mars/Olympus")}, "timezone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.New()
			e, _ := newTestEngine(t, store)

			_, err := e.CreateHabit(context.Background(), user, tt.in)
			var ve *habit.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.field {
				t.Errorf("Field = %q, want %q", ve.Field, tt.field)
			}
			if hs, _ := store.ListHabits(context.Background(), user); len(hs) != 0 {
				t.Errorf("store mutated on validation failure: %v", hs)
			}
		})
	}
}

func TestCreateHabit_TrimsAndDefaults(t *testing.T) {
	e, _ := newTestEngine(t, memory.New())
	h := mustCreate(t, e, "  Read  ", 7)
	if h.Name != "Read" {
		t.Errorf("Name = %q, want trimmed", h.Name)
	}
	if h.Timezone != "UTC" {
		t.Errorf("Timezone = %q, want default UTC", h.Timezone)
	}
	if h.ID == "" {
		t.Error("expected generated id")
	}
	// 64 characters is still fine
	mustCreate(t, e, strings.Repeat("é", 64), 1)
}

func TestUpdateHabit(t *testing.T) {
	e, _ := newTestEngine(t, memory.New())
	ctx := context.Background()
	h := mustCreate(t, e, "run", 3)

	got, err := e.UpdateHabit(ctx, user, h.ID, habit.HabitInput{TargetPerWeek: ptr(5)})
	if err != nil {
		t.Fatalf("UpdateHabit failed: %v", err)
	}
	if got.Name != "run" || got.TargetPerWeek != 5 {
		t.Errorf("unexpected habit after update: %+v", got)
	}
	if _, err := e.UpdateHabit(ctx, user, h.ID, habit.HabitInput{TargetPerWeek: ptr(9)}); !habit.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
	if _, err := e.UpdateHabit(ctx, "someone-else", h.ID, habit.HabitInput{Name: ptr("mine")}); !errors.Is(err, habit.ErrNotFound) {
		t.Errorf("expected ErrNotFound for other user, got %v", err)
	}
}

func TestCheckIn_WeekScenario(t *testing.T) {
	e, tc := newTestEngine(t, memory.New())
	ctx := context.Background()
	h := mustCreate(t, e, "run", 3)

	for _, day := range []string{"2024-04-29", "2024-04-30", "2024-05-01"} {
		tc.set(day + "T09:00:00Z")
		if _, err := e.CheckIn(ctx, user, h.ID, ""); err != nil {
			t.Fatalf("CheckIn on %s failed: %v", day, err)
		}
	}

	stats, err := e.GetQuotaStats(ctx, user, "UTC")
	if err != nil {
		t.Fatalf("GetQuotaStats failed: %v", err)
	}
	p := stats.CurrentWeekProgress[0]
	if p.Completed != 3 || !p.IsMet || stats.WeeklyQuotasMet != 1 {
		t.Fatalf("after Mon-Wed: %+v", stats)
	}

	tc.set("2024-05-01T20:00:00Z")
	if _, err := e.CheckIn(ctx, user, h.ID, ""); !errors.Is(err, habit.ErrDuplicateCheckIn) {
		t.Fatalf("expected duplicate, got %v", err)
	}
	again, _ := e.GetQuotaStats(ctx, user, "UTC")
	if again.CurrentWeekProgress[0].Completed != 3 || again.TotalCheckins != 3 {
		t.Errorf("duplicate changed counts: %+v", again)
	}
	listed, err := e.ListHabits(ctx, user, "UTC")
	if err != nil {
		t.Fatalf("ListHabits failed: %v", err)
	}
	if len(listed) != 1 || !listed[0].DoneToday || listed[0].DoneThisWeek != 3 {
		t.Errorf("duplicate changed progress: %+v", listed)
	}

	tc.set("2024-05-02T09:00:00Z")
	if _, err := e.CheckIn(ctx, user, h.ID, ""); err != nil {
		t.Fatalf("CheckIn Thursday failed: %v", err)
	}
	stats, _ = e.GetQuotaStats(ctx, user, "UTC")
	if stats.CurrentWeekProgress[0].Completed != 4 {
		t.Errorf("Completed = %d, want 4", stats.CurrentWeekProgress[0].Completed)
	}
	if stats.WeekStart != calendar.MustParseDate("2024-04-29") {
		t.Errorf("WeekStart = %s", stats.WeekStart)
	}
}

func TestCheckIn_UsesTimezone(t *testing.T) {
	e, tc := newTestEngine(t, memory.New())
	h := mustCreate(t, e, "run", 3)

	// 02:00 UTC on May 1 is still April 30 in Los Angeles.
	tc.set("2024-05-01T02:00:00Z")
	c, err := e.CheckIn(context.Background(), user, h.ID, "America/Los_Angeles")
	if err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}
	if c.Date != calendar.MustParseDate("2024-04-30") {
		t.Errorf("Date = %s, want 2024-04-30", c.Date)
	}
}

func TestCheckIn_EmptyTimezoneMatchesReads(t *testing.T) {
	e, _ := newTestEngine(t, memory.New())
	ctx := context.Background()
	// UTC+14: already May 2 while the default zone is on May 1.
	h, err := e.CreateHabit(ctx, user, habit.HabitInput{Name: ptr("run"), TargetPerWeek: ptr(3), Timezone: ptr("Pacific/Kiritimati")})
	if err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}

	c, err := e.CheckIn(ctx, user, h.ID, "")
	if err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}
	if c.Date != calendar.MustParseDate("2024-05-01") {
		t.Errorf("Date = %s, want default-zone 2024-05-01", c.Date)
	}

	streak, err := e.GetStreakData(ctx, user, "")
	if err != nil {
		t.Fatalf("GetStreakData failed: %v", err)
	}
	if streak.DailyStreak != 1 || streak.WeeklyStreak != 1 {
		t.Errorf("streak = %+v, want daily 1 weekly 1", streak)
	}
	listed, err := e.ListHabits(ctx, user, "")
	if err != nil {
		t.Fatalf("ListHabits failed: %v", err)
	}
	if !listed[0].DoneToday || listed[0].DoneThisWeek != 1 {
		t.Errorf("progress = %+v, want done today", listed[0])
	}
	s, err := e.HabitSummary(ctx, user, h.ID, "")
	if err != nil {
		t.Fatalf("HabitSummary failed: %v", err)
	}
	if s.CurrentStreak != 1 {
		t.Errorf("summary streak = %d, want 1", s.CurrentStreak)
	}
}

func TestCheckIn_UnknownHabit(t *testing.T) {
	e, _ := newTestEngine(t, memory.New())
	if _, err := e.CheckIn(context.Background(), user, "nope", ""); !errors.Is(err, habit.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetStreakData(t *testing.T) {
	store := memory.New()
	e, tc := newTestEngine(t, store)
	ctx := context.Background()
	h := mustCreate(t, e, "run", 3)

	empty, err := e.GetStreakData(ctx, user, "UTC")
	if err != nil {
		t.Fatalf("GetStreakData failed: %v", err)
	}
	if empty.DailyStreak != 0 || empty.WeeklyStreak != 0 || empty.LastCheckinDate != nil {
		t.Errorf("empty streak = %+v", empty)
	}

	// D, D-1, D-2 where D is yesterday
	for _, day := range []string{"2024-04-28", "2024-04-29", "2024-04-30"} {
		tc.set(day + "T10:00:00Z")
		if _, err := e.CheckIn(ctx, user, h.ID, ""); err != nil {
			t.Fatalf("CheckIn failed: %v", err)
		}
	}
	tc.set("2024-05-01T10:00:00Z")

	got, err := e.GetStreakData(ctx, user, "UTC")
	if err != nil {
		t.Fatalf("GetStreakData failed: %v", err)
	}
	if got.DailyStreak != 3 {
		t.Errorf("DailyStreak = %d, want 3", got.DailyStreak)
	}
	// Apr 28 is a Sunday, so two consecutive weeks are active.
	if got.WeeklyStreak != 2 {
		t.Errorf("WeeklyStreak = %d, want 2", got.WeeklyStreak)
	}
	if got.LastCheckinDate == nil || *got.LastCheckinDate != calendar.MustParseDate("2024-04-30") {
		t.Errorf("LastCheckinDate = %v", got.LastCheckinDate)
	}

	// unknown zones fall back instead of failing
	if _, err := e.GetStreakData(ctx, user, "Nowhere/Special"); err != nil {
		t.Errorf("unknown timezone should not error: %v", err)
	}
}

func TestGetCalendarView(t *testing.T) {
	store := memory.New()
	e, _ := newTestEngine(t, store)
	ctx := context.Background()
	a := mustCreate(t, e, "a", 1)
	b := mustCreate(t, e, "b", 1)
	for _, c := range []habit.CheckIn{
		{ID: "1", UserID: user, HabitID: a.ID, Date: calendar.MustParseDate("2024-04-29")},
		{ID: "2", UserID: user, HabitID: b.ID, Date: calendar.MustParseDate("2024-04-29")},
		{ID: "3", UserID: user, HabitID: a.ID, Date: calendar.MustParseDate("2024-05-01")},
	} {
		if err := store.InsertCheckIn(ctx, c); err != nil {
			t.Fatalf("InsertCheckIn failed: %v", err)
		}
	}

	v, err := e.GetCalendarView(ctx, user, habit.ViewMonth, calendar.Date{}, "UTC")
	if err != nil {
		t.Fatalf("GetCalendarView failed: %v", err)
	}
	if v.Reference != calendar.MustParseDate("2024-05-01") {
		t.Errorf("Reference = %s, want today", v.Reference)
	}
	if v.Counts[calendar.MustParseDate("2024-04-29")] != 2 {
		t.Errorf("padding day count = %d, want 2", v.Counts[calendar.MustParseDate("2024-04-29")])
	}
	if !v.Days[2].IsToday {
		t.Error("expected May 1 to be flagged as today")
	}

	week, err := e.GetCalendarView(ctx, user, habit.ViewWeek, calendar.MustParseDate("2024-05-05"), "UTC")
	if err != nil {
		t.Fatalf("GetCalendarView(week) failed: %v", err)
	}
	if len(week.Days) != 7 || week.Start != calendar.MustParseDate("2024-04-29") {
		t.Errorf("week view = %s..%s (%d days)", week.Start, week.End, len(week.Days))
	}
}

func TestListHabits_Progress(t *testing.T) {
	e, tc := newTestEngine(t, memory.New())
	ctx := context.Background()
	a := mustCreate(t, e, "a", 2)
	mustCreate(t, e, "b", 2)

	tc.set("2024-04-30T08:00:00Z")
	_, _ = e.CheckIn(ctx, user, a.ID, "")
	tc.set("2024-05-01T08:00:00Z")
	_, _ = e.CheckIn(ctx, user, a.ID, "")

	got, err := e.ListHabits(ctx, user, "UTC")
	if err != nil {
		t.Fatalf("ListHabits failed: %v", err)
	}
	if len(got) != 2 || got[0].Name != "a" {
		t.Fatalf("ListHabits = %+v", got)
	}
	if !got[0].DoneToday || got[0].DoneThisWeek != 2 {
		t.Errorf("a progress = %+v", got[0])
	}
	if got[1].DoneToday || got[1].DoneThisWeek != 0 {
		t.Errorf("b progress = %+v", got[1])
	}
}

func TestDeleteHabit_Cascades(t *testing.T) {
	e, _ := newTestEngine(t, memory.New())
	ctx := context.Background()
	h := mustCreate(t, e, "a", 2)
	_, _ = e.CheckIn(ctx, user, h.ID, "")

	if err := e.DeleteHabit(ctx, user, h.ID); err != nil {
		t.Fatalf("DeleteHabit failed: %v", err)
	}
	stats, _ := e.GetQuotaStats(ctx, user, "")
	if stats.TotalCheckins != 0 || stats.TotalHabits != 0 {
		t.Errorf("stats after delete = %+v", stats)
	}
	if err := e.DeleteHabit(ctx, user, h.ID); !errors.Is(err, habit.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestHabitSummary(t *testing.T) {
	store := memory.New()
	e, _ := newTestEngine(t, store)
	ctx := context.Background()
	h := mustCreate(t, e, "read", 3)

	for i, day := range []string{"2024-03-01", "2024-03-02", "2024-03-03", "2024-03-04", "2024-04-10", "2024-04-30", "2024-05-01"} {
		c := habit.CheckIn{ID: string(rune('a' + i)), UserID: user, HabitID: h.ID, Date: calendar.MustParseDate(day)}
		if err := store.InsertCheckIn(ctx, c); err != nil {
			t.Fatalf("InsertCheckIn failed: %v", err)
		}
	}

	s, err := e.HabitSummary(ctx, user, h.ID, "")
	if err != nil {
		t.Fatalf("HabitSummary failed: %v", err)
	}
	if s.Name != "read" || s.CurrentStreak != 2 || s.LongestStreak != 4 {
		t.Errorf("streaks = %+v", s)
	}
	if s.TotalDaysDone != 7 || s.BestMonth != 4 || s.ThisMonth != 1 {
		t.Errorf("volume = %+v", s)
	}
	if s.FirstLogged == nil || *s.FirstLogged != calendar.MustParseDate("2024-03-01") {
		t.Errorf("FirstLogged = %v", s.FirstLogged)
	}
	if s.LastWrite == nil || *s.LastWrite != calendar.MustParseDate("2024-05-01") {
		t.Errorf("LastWrite = %v", s.LastWrite)
	}
}

type brokenStore struct {
	*memory.Store
}

func (brokenStore) ListHabits(context.Context, string) ([]habit.Habit, error) {
	return nil, errors.New("connection refused")
}

func TestStoreFailure_IsUnavailable(t *testing.T) {
	e, _ := newTestEngine(t, brokenStore{memory.New()})
	_, err := e.GetQuotaStats(context.Background(), user, "UTC")
	if !errors.Is(err, habit.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
