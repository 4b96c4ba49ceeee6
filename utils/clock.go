package utils

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/jinzhu/now"
)

const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05 MST"
)

// wallLayouts are accepted for timestamps supplied without a zone; they are read as civil time.
var wallLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	DateLayout,
}

// Clock anchors every date computation to one civil timezone.
type Clock struct {
	Location *time.Location
	NowFunc  func() time.Time

	cfg *now.Config
}

// NewClock loads the named IANA zone.
func NewClock(tz string) (*Clock, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	return &Clock{
		Location: loc,
		NowFunc:  time.Now,
		cfg:      &now.Config{TimeLocation: loc, WeekStartDay: time.Monday},
	}, nil
}

// MustClock is NewClock for zones known at compile time.
func MustClock(tz string) *Clock {
	c, err := NewClock(tz)
	if err != nil {
		panic(err)
	}
	return c
}

// Now returns the current instant expressed in the civil zone.
func (c *Clock) Now() time.Time {
	return c.NowFunc().In(c.Location)
}

// In expresses t in the civil zone.
func (c *Clock) In(t time.Time) time.Time {
	return t.In(c.Location)
}

// Storage is the representation written to the datastore: an absolute UTC instant.
func (c *Clock) Storage(t time.Time) time.Time {
	return t.UTC()
}

// ParseDate parses a strict YYYY-MM-DD calendar date as midnight in the civil zone.
func (c *Clock) ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), c.Location)
}

// EndOfDay is 23:59:59 civil time on the day containing t.
func (c *Clock) EndOfDay(t time.Time) time.Time {
	return c.cfg.With(t).EndOfDay().Truncate(time.Second)
}

// BeginningOfDay is 00:00:00 civil time on the day containing t.
func (c *Clock) BeginningOfDay(t time.Time) time.Time {
	return c.cfg.With(t).BeginningOfDay()
}

// ParseTimestamp accepts RFC 3339 values as absolute instants and zone-less values as civil wall
// time.
func (c *Clock) ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(c.Location), nil
	}
	for _, layout := range wallLayouts {
		if t, err := time.ParseInLocation(layout, s, c.Location); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// Format renders t as "2006-01-02 15:04:05 EST" in the civil zone.
func (c *Clock) Format(t time.Time) string {
	return c.In(t).Format(TimestampLayout)
}

// FormatDate renders the civil calendar date of t.
func (c *Clock) FormatDate(t time.Time) string {
	return c.In(t).Format(DateLayout)
}
