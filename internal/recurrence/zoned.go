package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

const (
	// DateLayout is the layout of date strings stored on templates
	DateLayout = "2006-01-02"
	// TimeLayout is the layout of time-of-day strings stored on templates
	TimeLayout = "15:04"

	dayStart = "00:00"
	dayEnd   = "23:59"
)

// LoadZone resolves an IANA timezone identifier. An empty name is UTC.
func LoadZone(tz string) (*time.Location, error) {
	if strings.TrimSpace(tz) == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidTimezone, tz, err)
	}
	return loc, nil
}

// StartInstant resolves a date and optional time of day in loc as the start of a slot.
// A missing time of day means the start of the day.
func StartInstant(date, clock string, loc *time.Location) (time.Time, error) {
	if clock == "" {
		clock = dayStart
	}
	return parseLocal(date, clock, loc)
}

// EndInstant resolves a date and optional time of day in loc as the end of a slot.
// A missing time of day means the last minute of the day.
func EndInstant(date, clock string, loc *time.Location) (time.Time, error) {
	if clock == "" {
		clock = dayEnd
	}
	return parseLocal(date, clock, loc)
}

func parseLocal(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	wall, err := time.Parse(DateLayout+" "+TimeLayout, date+" "+clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date %q time %q: %w", date, clock, err)
	}
	return ResolveWall(wall, loc), nil
}

// ResolveWall places the wall-clock fields of wall in loc, ignoring wall's own location.
// A wall time that does not exist in loc because of a daylight-saving gap moves forward
// by the length of the gap, so 02:30 on a spring-forward night becomes 03:30.
func ResolveWall(wall time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	want := floating(wall)
	t := time.Date(want.Year(), want.Month(), want.Day(), want.Hour(), want.Minute(), want.Second(), want.Nanosecond(), loc)
	if gap := want.Sub(floating(t)); gap > 0 {
		t = t.Add(gap)
	}
	return t
}

// floating copies the wall-clock fields of t into UTC
func floating(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// FormatDate renders t as a template date string
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatTime renders t as a template time-of-day string
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// Canonical renders t as an exclusion slot token: "20060102T150405Z" for UTC and
// "20060102T150405" for any other location.
func Canonical(t time.Time) string {
	if t.Location().String() == "UTC" {
		return t.UTC().Format(rrule.DateTimeFormat)
	}
	return t.Format(rrule.LocalDateTimeFormat)
}
