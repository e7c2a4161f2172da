package logger

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxPathLength is the maximum length for URL paths in logs
	MaxPathLength = 500
	// MaxOwnerLength is the maximum length for owner identifiers in logs
	MaxOwnerLength = 128
	// MaxRuleLength is the maximum length for recurrence rules in logs
	MaxRuleLength = 512
	// MaxErrorMessageLength is the maximum length for error messages in logs
	MaxErrorMessageLength = 1000
	// MaxGeneralStringLength is the maximum length for general strings in logs
	MaxGeneralStringLength = 2000
)

// SanitizePath makes a URL path safe to log
func SanitizePath(path string) string {
	return SanitizeString(path, MaxPathLength)
}

// SanitizeString repairs invalid UTF-8, drops control characters and truncates to
// maxLength. A non-positive maxLength means MaxGeneralStringLength.
func SanitizeString(s string, maxLength int) string {
	if s == "" {
		return ""
	}
	if maxLength <= 0 {
		maxLength = MaxGeneralStringLength
	}
	s = filterRunes(s)
	if len(s) > maxLength {
		s = s[:maxLength] + "..."
	}
	return s
}

func filterRunes(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	var builder strings.Builder
	builder.Grow(len(s))
	for _, r := range s {
		if unicode.IsPrint(r) || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// SanitizeError makes an error message safe to log
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeString(err.Error(), MaxErrorMessageLength)
}

// SanitizeOwner makes an owner identifier taken from a URL safe to log
func SanitizeOwner(owner string) string {
	return SanitizeString(owner, MaxOwnerLength)
}

// SanitizeRule makes a user supplied recurrence rule safe to log
func SanitizeRule(rule string) string {
	return SanitizeString(rule, MaxRuleLength)
}
