package request

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/benvon/smart-journal/internal/recurrence"
)

// ErrInvalidWindow is returned when the start/end query parameters do not form a window
var ErrInvalidWindow = errors.New("invalid time window")

// DefaultMaxSpan is the longest window accepted when no limit is configured
const DefaultMaxSpan = 2 * 366 * 24 * time.Hour

// ClientIP extracts the client IP from the request, respecting X-Forwarded-For and X-Real-IP.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return r.RemoteAddr
}

// Window is an inclusive time window read from a request
type Window struct {
	Start    time.Time
	End      time.Time
	Location *time.Location
}

// ParseWindow reads the start, end and timezone query parameters.
// The timezone parameter falls back to defaultTZ.
func ParseWindow(r *http.Request, defaultTZ string, maxSpan time.Duration) (Window, error) {
	q := r.URL.Query()
	tz := q.Get("timezone")
	if tz == "" {
		tz = defaultTZ
	}
	return NewWindow(q.Get("start"), q.Get("end"), tz, maxSpan)
}

// NewWindow builds a window from textual bounds. Bounds are RFC3339 instants or plain
// dates; a plain end date covers the whole day. tz only affects plain dates. Windows
// longer than maxSpan are rejected; a non-positive maxSpan means DefaultMaxSpan.
func NewWindow(start, end, tz string, maxSpan time.Duration) (Window, error) {
	loc, err := recurrence.LoadZone(tz)
	if err != nil {
		return Window{}, fmt.Errorf("%w: %w", ErrInvalidWindow, err)
	}

	from, err := parseBound(start, loc, false)
	if err != nil {
		return Window{}, fmt.Errorf("%w: start: %w", ErrInvalidWindow, err)
	}
	until, err := parseBound(end, loc, true)
	if err != nil {
		return Window{}, fmt.Errorf("%w: end: %w", ErrInvalidWindow, err)
	}
	if err := CheckSpan(from, until, maxSpan); err != nil {
		return Window{}, err
	}
	return Window{Start: from, End: until, Location: loc}, nil
}

// CheckSpan verifies that [start, end] is ordered and no longer than maxSpan.
// A non-positive maxSpan means DefaultMaxSpan.
func CheckSpan(start, end time.Time, maxSpan time.Duration) error {
	if maxSpan <= 0 {
		maxSpan = DefaultMaxSpan
	}
	if end.Before(start) {
		return fmt.Errorf("%w: end is before start", ErrInvalidWindow)
	}
	if end.Sub(start) > maxSpan {
		return fmt.Errorf("%w: window longer than %s", ErrInvalidWindow, maxSpan)
	}
	return nil
}

func parseBound(value string, loc *time.Location, endOfDay bool) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("missing value")
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	day, err := recurrence.StartInstant(value, "", loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognised time %q", value)
	}
	if endOfDay {
		return day.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}
	return day, nil
}
