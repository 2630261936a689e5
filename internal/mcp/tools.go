package mcp

import (
	"context"
	"fmt"

	"github.com/brk3/habitbattles/internal/heatmap"
	"github.com/brk3/habitbattles/pkg/calendar"
	"github.com/brk3/habitbattles/pkg/habit"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_habits",
		Description: "List habits with today's status and this week's check-in count",
	}, s.handleListHabits)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "check_in",
		Description: "Check in a habit for today",
	}, s.handleCheckIn)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_quota_stats",
		Description: "Weekly quota progress for every habit in the current Monday to Sunday week",
	}, s.handleQuotaStats)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_streak",
		Description: "Current daily and weekly streaks across all habits",
	}, s.handleStreak)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_calendar",
		Description: "Per-day check-in counts for a week, month or year",
	}, s.handleCalendar)
}

// Dates cross the tool boundary as YYYY-MM-DD strings.

type emptyInput struct{}

type habitItem struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	TargetPerWeek int    `json:"target_per_week"`
	DoneToday     bool   `json:"done_today"`
	DoneThisWeek  int    `json:"done_this_week"`
}

type listHabitsOutput struct {
	Habits []habitItem `json:"habits"`
}

type checkInInput struct {
	HabitID string `json:"habit_id" jsonschema:"ID of the habit to check in"`
}

type checkInOutput struct {
	HabitID     string `json:"habit_id"`
	CheckinDate string `json:"checkin_date"`
	Message     string `json:"message"`
}

type progressItem struct {
	HabitName string `json:"habit_name"`
	Target    int    `json:"target"`
	Completed int    `json:"completed"`
	IsMet     bool   `json:"is_met"`
}

type quotaOutput struct {
	WeekStart       string         `json:"week_start"`
	WeekEnd         string         `json:"week_end"`
	WeeklyQuotasMet int            `json:"weekly_quotas_met"`
	TotalHabits     int            `json:"total_habits"`
	TotalCheckins   int            `json:"total_checkins"`
	Progress        []progressItem `json:"progress"`
}

type streakOutput struct {
	DailyStreak     int    `json:"daily_streak"`
	WeeklyStreak    int    `json:"weekly_streak"`
	LastCheckinDate string `json:"last_checkin_date,omitempty"`
}

type calendarInput struct {
	View string `json:"view,omitempty" jsonschema:"week, month or year; defaults to month"`
	Date string `json:"date,omitempty" jsonschema:"reference date YYYY-MM-DD; defaults to today"`
}

type dayItem struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Level int    `json:"level"`
}

type calendarOutput struct {
	View     string    `json:"view"`
	Start    string    `json:"start"`
	End      string    `json:"end"`
	Previous string    `json:"previous"`
	Next     string    `json:"next"`
	Days     []dayItem `json:"days"`
}

func (s *Server) handleListHabits(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, listHabitsOutput, error) {
	habits, err := s.engine.ListHabits(ctx, s.userID, s.timezone)
	if err != nil {
		return nil, listHabitsOutput{}, err
	}
	out := listHabitsOutput{Habits: make([]habitItem, 0, len(habits))}
	for _, h := range habits {
		out.Habits = append(out.Habits, habitItem{
			ID:            h.ID,
			Name:          h.Name,
			TargetPerWeek: h.TargetPerWeek,
			DoneToday:     h.DoneToday,
			DoneThisWeek:  h.DoneThisWeek,
		})
	}
	return nil, out, nil
}

func (s *Server) handleCheckIn(ctx context.Context, _ *mcp.CallToolRequest, in checkInInput) (*mcp.CallToolResult, checkInOutput, error) {
	if in.HabitID == "" {
		return nil, checkInOutput{}, fmt.Errorf("habit_id is required")
	}
	c, err := s.engine.CheckIn(ctx, s.userID, in.HabitID, s.timezone)
	if err != nil {
		return nil, checkInOutput{}, err
	}
	return nil, checkInOutput{
		HabitID:     c.HabitID,
		CheckinDate: c.Date.String(),
		Message:     fmt.Sprintf("Checked in %s for %s", c.HabitID, c.Date),
	}, nil
}

func (s *Server) handleQuotaStats(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, quotaOutput, error) {
	stats, err := s.engine.GetQuotaStats(ctx, s.userID, s.timezone)
	if err != nil {
		return nil, quotaOutput{}, err
	}
	out := quotaOutput{
		WeekStart:       stats.WeekStart.String(),
		WeekEnd:         stats.WeekEnd.String(),
		WeeklyQuotasMet: stats.WeeklyQuotasMet,
		TotalHabits:     stats.TotalHabits,
		TotalCheckins:   stats.TotalCheckins,
		Progress:        make([]progressItem, 0, len(stats.CurrentWeekProgress)),
	}
	for _, p := range stats.CurrentWeekProgress {
		out.Progress = append(out.Progress, progressItem{
			HabitName: p.HabitName,
			Target:    p.Target,
			Completed: p.Completed,
			IsMet:     p.IsMet,
		})
	}
	return nil, out, nil
}

func (s *Server) handleStreak(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, streakOutput, error) {
	sd, err := s.engine.GetStreakData(ctx, s.userID, s.timezone)
	if err != nil {
		return nil, streakOutput{}, err
	}
	out := streakOutput{DailyStreak: sd.DailyStreak, WeeklyStreak: sd.WeeklyStreak}
	if sd.LastCheckinDate != nil {
		out.LastCheckinDate = sd.LastCheckinDate.String()
	}
	return nil, out, nil
}

func (s *Server) handleCalendar(ctx context.Context, _ *mcp.CallToolRequest, in calendarInput) (*mcp.CallToolResult, calendarOutput, error) {
	mode, err := heatmap.ParseViewMode(in.View)
	if err != nil {
		return nil, calendarOutput{}, err
	}
	var ref calendar.Date
	if in.Date != "" {
		if ref, err = calendar.ParseDate(in.Date); err != nil {
			return nil, calendarOutput{}, &habit.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
		}
	}
	v, err := s.engine.GetCalendarView(ctx, s.userID, mode, ref, s.timezone)
	if err != nil {
		return nil, calendarOutput{}, err
	}
	out := calendarOutput{
		View:     string(v.Mode),
		Start:    v.Start.String(),
		End:      v.End.String(),
		Previous: v.Previous.String(),
		Next:     v.Next.String(),
		Days:     make([]dayItem, 0, len(v.Days)),
	}
	for _, d := range v.Days {
		out.Days = append(out.Days, dayItem{Date: d.Date.String(), Count: d.Count, Level: d.Level})
	}
	return nil, out, nil
}
