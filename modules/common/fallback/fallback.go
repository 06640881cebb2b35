package fallback

import (
	"strconv"
	"strings"
)

// SafeString returns a trimmed string or the provided fallback.
func SafeString(value string, fallback string) string {
	s := strings.TrimSpace(value)
	if s != "" {
		return s
	}
	return fallback
}

// SafeInt parses a form value into int with a fallback.
func SafeInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && parsed > 0 {
		return parsed
	}
	return fallback
}

// SafeBool parses a form value into bool with a fallback.
func SafeBool(value string, fallback bool) bool {
	if value == "" {
		return fallback
	}
	if parsed, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
		return parsed
	}
	return fallback
}
