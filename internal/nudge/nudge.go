// Package nudge finds streaks and weekly quotas about to slip and sends a
// reminder through a Notifier.
package nudge

import (
	"context"
	"fmt"
	"time"

	"github.com/brk3/habitbattles/internal/logger"
	"github.com/brk3/habitbattles/internal/quota"
	"github.com/brk3/habitbattles/pkg/calendar"
)

type Notifier interface {
	SendNudge(ctx context.Context, r Report) error
}

// QuotaRisk is a habit that needs a check-in on every remaining day of the
// week to meet its target.
type QuotaRisk struct {
	HabitName string
	Remaining int
	DaysLeft  int
}

type Report struct {
	// Expiring lists habits whose daily streak ends at midnight.
	Expiring  []string
	QuotaRisk []QuotaRisk
	HoursLeft int
}

func (r Report) Empty() bool {
	return len(r.Expiring) == 0 && len(r.QuotaRisk) == 0
}

// Check builds a Report for now, which must be in the user's zone.
// Streaks are only reported once fewer than threshold remain before
// midnight; quota risks are reported at any time of day.
func Check(ctx context.Context, q Querier, now time.Time, threshold time.Duration) (Report, error) {
	today := calendar.DateOf(now)
	midnight := today.AddDays(1).In(now.Location())
	untilMidnight := midnight.Sub(now)
	r := Report{HoursLeft: int(untilMidnight.Hours())}

	habits, err := q.ListHabits(ctx)
	if err != nil {
		return r, fmt.Errorf("list habits: %w", err)
	}
	done := make(map[string]bool, len(habits))
	for _, h := range habits {
		done[h.ID] = h.DoneToday
	}

	if untilMidnight <= threshold {
		yesterday := today.AddDays(-1)
		for _, h := range habits {
			if h.DoneToday {
				continue
			}
			s, err := q.GetHabitSummary(ctx, h.ID)
			if err != nil {
				return r, fmt.Errorf("summary %s: %w", h.ID, err)
			}
			if s.CurrentStreak > 0 && s.LastWrite != nil && *s.LastWrite == yesterday {
				r.Expiring = append(r.Expiring, h.Name)
			}
		}
	}

	stats, err := q.QuotaStats(ctx)
	if err != nil {
		return r, fmt.Errorf("quota stats: %w", err)
	}
	for _, p := range stats.CurrentWeekProgress {
		if p.IsMet {
			continue
		}
		// Days still open for a check-in, today included unless already done.
		daysLeft := today.DaysUntil(stats.WeekEnd) + 1
		if done[p.HabitID] {
			daysLeft--
		}
		remaining := quota.Remaining(p)
		if daysLeft > 0 && remaining == daysLeft {
			r.QuotaRisk = append(r.QuotaRisk, QuotaRisk{HabitName: p.HabitName, Remaining: remaining, DaysLeft: daysLeft})
		}
	}
	return r, nil
}

// Run checks and notifies when there is something to report.
func Run(ctx context.Context, q Querier, n Notifier, now time.Time, threshold time.Duration) (Report, error) {
	r, err := Check(ctx, q, now, threshold)
	if err != nil {
		return r, err
	}
	if r.Empty() {
		logger.InfoContext(ctx, "Nothing to nudge about")
		return r, nil
	}
	logger.InfoContext(ctx, "Sending nudge", "expiring", len(r.Expiring), "quota_risk", len(r.QuotaRisk), "hours_left", r.HoursLeft)
	if err := n.SendNudge(ctx, r); err != nil {
		return r, fmt.Errorf("send nudge: %w", err)
	}
	return r, nil
}
