package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/brk3/habitbattles/internal/server"
	"github.com/brk3/habitbattles/pkg/calendar"
	"github.com/brk3/habitbattles/pkg/habit"
	"github.com/brk3/habitbattles/pkg/versioninfo"
)

// ErrUnauthorized is returned for 401 responses.
var ErrUnauthorized = errors.New("unauthorized, set api_token or HABITS_API_TOKEN")

type Client struct {
	BaseURL  string
	Token    string
	Timezone string
	HTTP     *http.Client
}

func New(base string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(base, "/"),
		HTTP:    http.DefaultClient,
	}
}

// WithToken sets the bearer token sent on every request, an API key or a
// provider:jwt pair.
func (c *Client) WithToken(token string) *Client {
	c.Token = token
	return c
}

// WithTimezone sends tz as the X-Timezone header so dates resolve in the
// caller's zone.
func (c *Client) WithTimezone(tz string) *Client {
	c.Timezone = tz
	return c
}

func (c *Client) ListHabits(ctx context.Context) ([]habit.HabitWithProgress, error) {
	var resp server.HabitListResponse
	if err := c.do(ctx, http.MethodGet, "/habits/", nil, &resp); err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	return resp.Habits, nil
}

func (c *Client) GetHabit(ctx context.Context, habitID string) (habit.Habit, error) {
	var h habit.Habit
	if err := c.do(ctx, http.MethodGet, "/habits/"+url.PathEscape(habitID), nil, &h); err != nil {
		return h, fmt.Errorf("get habit %s: %w", habitID, err)
	}
	return h, nil
}

func (c *Client) CreateHabit(ctx context.Context, in habit.HabitInput) (habit.Habit, error) {
	var h habit.Habit
	if err := c.do(ctx, http.MethodPost, "/habits/", in, &h); err != nil {
		return h, fmt.Errorf("create habit: %w", err)
	}
	return h, nil
}

func (c *Client) UpdateHabit(ctx context.Context, habitID string, in habit.HabitInput) (habit.Habit, error) {
	var h habit.Habit
	if err := c.do(ctx, http.MethodPatch, "/habits/"+url.PathEscape(habitID), in, &h); err != nil {
		return h, fmt.Errorf("update habit %s: %w", habitID, err)
	}
	return h, nil
}

func (c *Client) DeleteHabit(ctx context.Context, habitID string) error {
	if err := c.do(ctx, http.MethodDelete, "/habits/"+url.PathEscape(habitID), nil, nil); err != nil {
		return fmt.Errorf("delete habit %s: %w", habitID, err)
	}
	return nil
}

func (c *Client) CheckIn(ctx context.Context, habitID string) (habit.CheckIn, error) {
	var out habit.CheckIn
	if err := c.do(ctx, http.MethodPost, "/habits/"+url.PathEscape(habitID)+"/checkins", nil, &out); err != nil {
		return out, fmt.Errorf("check in %s: %w", habitID, err)
	}
	return out, nil
}

func (c *Client) GetHabitSummary(ctx context.Context, habitID string) (habit.HabitSummary, error) {
	var resp server.HabitSummaryResponse
	if err := c.do(ctx, http.MethodGet, "/habits/"+url.PathEscape(habitID)+"/summary", nil, &resp); err != nil {
		return resp.HabitSummary, fmt.Errorf("summary %s: %w", habitID, err)
	}
	return resp.HabitSummary, nil
}

func (c *Client) QuotaStats(ctx context.Context) (habit.QuotaStats, error) {
	var out habit.QuotaStats
	if err := c.do(ctx, http.MethodGet, "/stats/quota", nil, &out); err != nil {
		return out, fmt.Errorf("quota stats: %w", err)
	}
	return out, nil
}

func (c *Client) Streak(ctx context.Context) (habit.StreakData, error) {
	var out habit.StreakData
	if err := c.do(ctx, http.MethodGet, "/stats/streak", nil, &out); err != nil {
		return out, fmt.Errorf("streak: %w", err)
	}
	return out, nil
}

// Calendar fetches the view for mode around ref. A zero ref means today.
func (c *Client) Calendar(ctx context.Context, mode habit.ViewMode, ref calendar.Date) (habit.CalendarView, error) {
	q := url.Values{}
	if mode != "" {
		q.Set("view", string(mode))
	}
	if !ref.IsZero() {
		q.Set("date", ref.String())
	}
	path := "/calendar"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out habit.CalendarView
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return out, fmt.Errorf("calendar: %w", err)
	}
	return out, nil
}

func (c *Client) Version(ctx context.Context) (versioninfo.VersionInfo, error) {
	var out versioninfo.VersionInfo
	if err := c.do(ctx, http.MethodGet, "/version", nil, &out); err != nil {
		return out, fmt.Errorf("version: %w", err)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if c.Timezone != "" {
		req.Header.Set("X-Timezone", c.Timezone)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		return statusError(res)
	}
	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

// statusError maps a failed response back onto the domain error taxonomy.
func statusError(res *http.Response) error {
	var e server.ErrorResponse
	_ = json.NewDecoder(res.Body).Decode(&e)
	msg := e.Error
	if msg == "" {
		msg = res.Status
	}

	switch res.StatusCode {
	case http.StatusBadRequest:
		return &habit.ValidationError{Field: "request", Reason: msg}
	case http.StatusNotFound:
		return habit.ErrNotFound
	case http.StatusConflict:
		return habit.ErrDuplicateCheckIn
	case http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s", habit.ErrStoreUnavailable, msg)
	case http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		return fmt.Errorf("unexpected status %s: %s", res.Status, msg)
	}
}
