package calendar

import (
	"fmt"
	"time"
)

// FallbackFunc is told about every timezone identifier the clock could
// not resolve, together with the location used instead.
type FallbackFunc func(requested string, used *time.Location)

// Clock resolves "today" for IANA timezone identifiers. Unknown or empty
// identifiers resolve to the clock's default location.
type Clock struct {
	now        func() time.Time
	def        *time.Location
	onFallback FallbackFunc
}

// NewClock returns a clock whose default location is defaultTZ. An empty
// name or "Local" selects the process local zone.
func NewClock(defaultTZ string) (*Clock, error) {
	loc, err := loadLocation(defaultTZ)
	if err != nil {
		return nil, fmt.Errorf("default timezone: %w", err)
	}
	return &Clock{now: time.Now, def: loc}, nil
}

// WithNow returns a copy of c reading the current instant from now.
func (c *Clock) WithNow(now func() time.Time) *Clock {
	cp := *c
	cp.now = now
	return &cp
}

// OnFallback returns a copy of c that reports fallbacks to fn.
func (c *Clock) OnFallback(fn FallbackFunc) *Clock {
	cp := *c
	cp.onFallback = fn
	return &cp
}

// Default is the location used when a timezone cannot be resolved.
func (c *Clock) Default() *time.Location {
	return c.def
}

// Location resolves tz. ok is false when the default location was used.
func (c *Clock) Location(tz string) (loc *time.Location, ok bool) {
	if tz == "" {
		return c.def, false
	}
	loc, err := loadLocation(tz)
	if err != nil {
		if c.onFallback != nil {
			c.onFallback(tz, c.def)
		}
		return c.def, false
	}
	return loc, true
}

// Now returns the current instant in tz.
func (c *Clock) Now(tz string) time.Time {
	loc, _ := c.Location(tz)
	return c.now().In(loc)
}

// Today returns the calendar date of the current instant in tz.
func (c *Clock) Today(tz string) Date {
	return DateOf(c.Now(tz))
}

// Yesterday returns the day before Today(tz).
func (c *Clock) Yesterday(tz string) Date {
	return c.Today(tz).AddDays(-1)
}

// CurrentWeek returns the Monday..Sunday window containing Today(tz).
func (c *Clock) CurrentWeek(tz string) Window {
	return WeekOf(c.Today(tz))
}

func loadLocation(tz string) (*time.Location, error) {
	if tz == "" || tz == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(tz)
}
