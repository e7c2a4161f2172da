package logger

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitizeString(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		input     string
		maxLength int
		want      string
	}{
		{"empty", "", 10, ""},
		{"plain", "hello", 10, "hello"},
		{"control characters removed", "a\x00b\x1bc", 10, "abc"},
		{"newline kept", "a\nb", 10, "a\nb"},
		{"truncated", "abcdefghij", 4, "abcd..."},
		{"invalid utf8 dropped", "ok\xff", 10, "ok"},
		{"default max length", strings.Repeat("x", MaxGeneralStringLength+1), 0, strings.Repeat("x", MaxGeneralStringLength) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeString(tt.input, tt.maxLength); got != tt.want {
				t.Errorf("SanitizeString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizePath(t *testing.T) {
	t.Parallel()
	long := "/" + strings.Repeat("a", MaxPathLength)
	got := SanitizePath(long)
	if len(got) != MaxPathLength+3 {
		t.Errorf("SanitizePath() length = %d, want %d", len(got), MaxPathLength+3)
	}
	if got := SanitizePath("/api/v1/users/\x07bob"); got != "/api/v1/users/bob" {
		t.Errorf("SanitizePath() = %q", got)
	}
}

func TestSanitizeError(t *testing.T) {
	t.Parallel()
	if got := SanitizeError(nil); got != "" {
		t.Errorf("SanitizeError(nil) = %q, want empty", got)
	}
	if got := SanitizeError(errors.New("bad\x00 rule")); got != "bad rule" {
		t.Errorf("SanitizeError() = %q", got)
	}
}

func TestSanitizeOwnerAndRule(t *testing.T) {
	t.Parallel()
	if got := SanitizeOwner(strings.Repeat("o", MaxOwnerLength+5)); len(got) != MaxOwnerLength+3 {
		t.Errorf("SanitizeOwner() length = %d", len(got))
	}
	if got := SanitizeRule("FREQ=DAILY\x00"); got != "FREQ=DAILY" {
		t.Errorf("SanitizeRule() = %q", got)
	}
}
