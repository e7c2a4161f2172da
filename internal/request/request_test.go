package request

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientIP(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		wantIP  string
	}{
		{"x-forwarded-for", map[string]string{"X-Forwarded-For": "1.2.3.4"}, "", "1.2.3.4"},
		{"x-forwarded-for first", map[string]string{"X-Forwarded-For": " 1.2.3.4 , 5.6.7.8 "}, "", "1.2.3.4"},
		{"x-real-ip", map[string]string{"X-Real-IP": "9.9.9.9"}, "", "9.9.9.9"},
		{"remote addr", nil, "10.0.0.1:12345", "10.0.0.1:12345"},
		{"xff over xri", map[string]string{"X-Forwarded-For": "1.2.3.4", "X-Real-IP": "9.9.9.9"}, "", "1.2.3.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest("GET", "/", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if tt.remote != "" {
				r.RemoteAddr = tt.remote
			}
			got := ClientIP(r)
			if got != tt.wantIP {
				t.Errorf("ClientIP() = %q, want %q", got, tt.wantIP)
			}
		})
	}
}

func TestParseWindow(t *testing.T) {
	t.Parallel()
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}

	tests := []struct {
		name      string
		query     string
		wantStart time.Time
		wantEnd   time.Time
		wantErr   bool
	}{
		{
			name:      "rfc3339 bounds",
			query:     "start=2024-03-01T00:00:00Z&end=2024-03-02T12:00:00Z",
			wantStart: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC),
		},
		{
			name:      "plain dates cover the end day",
			query:     "start=2024-03-01&end=2024-03-01",
			wantStart: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 3, 1, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC),
		},
		{
			name:      "plain dates in timezone",
			query:     "start=2024-03-01&end=2024-03-31&timezone=Asia/Tokyo",
			wantStart: time.Date(2024, 3, 1, 0, 0, 0, 0, tokyo),
			wantEnd:   time.Date(2024, 4, 1, 0, 0, 0, 0, tokyo).Add(-time.Nanosecond),
		},
		{name: "missing start", query: "end=2024-03-01", wantErr: true},
		{name: "garbage end", query: "start=2024-03-01&end=tomorrow", wantErr: true},
		{name: "end before start", query: "start=2024-03-02&end=2024-03-01", wantErr: true},
		{name: "bad timezone", query: "start=2024-03-01&end=2024-03-02&timezone=Mars/Base", wantErr: true},
		{name: "two centuries", query: "start=1900-01-01&end=2100-12-31", wantErr: true},
		{
			name:      "two full years",
			query:     "start=2024-01-01&end=2025-12-31",
			wantStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest("GET", "/occurrences?"+tt.query, nil)
			w, err := ParseWindow(r, "UTC", 0)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidWindow) {
					t.Fatalf("ParseWindow() error = %v, want ErrInvalidWindow", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseWindow() error = %v", err)
			}
			if !w.Start.Equal(tt.wantStart) {
				t.Errorf("start = %v, want %v", w.Start, tt.wantStart)
			}
			if !w.End.Equal(tt.wantEnd) {
				t.Errorf("end = %v, want %v", w.End, tt.wantEnd)
			}
		})
	}
}

func TestNewWindow_RFC3339IgnoresZone(t *testing.T) {
	t.Parallel()
	w, err := NewWindow("2024-03-01T09:00:00+09:00", "2024-03-01T10:00:00+09:00", "America/New_York", 0)
	if err != nil {
		t.Fatalf("NewWindow() error = %v", err)
	}
	if !w.Start.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", w.Start)
	}
	if w.Location.String() != "America/New_York" {
		t.Errorf("location = %v", w.Location)
	}
}

func TestCheckSpan(t *testing.T) {
	t.Parallel()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		end     time.Time
		maxSpan time.Duration
		wantErr bool
	}{
		{name: "empty window", end: start, maxSpan: time.Hour},
		{name: "exactly the limit", end: start.Add(time.Hour), maxSpan: time.Hour},
		{name: "one instant over the limit", end: start.Add(time.Hour + time.Nanosecond), maxSpan: time.Hour, wantErr: true},
		{name: "reversed", end: start.Add(-time.Second), maxSpan: time.Hour, wantErr: true},
		{name: "default limit", end: start.Add(DefaultMaxSpan), maxSpan: 0},
		{name: "over default limit", end: start.Add(DefaultMaxSpan + time.Second), maxSpan: -1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := CheckSpan(start, tt.end, tt.maxSpan)
			if tt.wantErr != (err != nil) {
				t.Fatalf("CheckSpan() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidWindow) {
				t.Errorf("CheckSpan() error = %v, want ErrInvalidWindow", err)
			}
		})
	}
}

func TestNewWindow_MaxSpan(t *testing.T) {
	t.Parallel()
	if _, err := NewWindow("2024-03-01", "2024-03-07", "UTC", 24*time.Hour); !errors.Is(err, ErrInvalidWindow) {
		t.Errorf("NewWindow() error = %v, want ErrInvalidWindow", err)
	}
	if _, err := NewWindow("2024-03-01", "2024-03-07", "UTC", 7*24*time.Hour); err != nil {
		t.Errorf("NewWindow() error = %v", err)
	}
}
