package domain

import "strings"

// CoalesceStr returns the first non-blank string from vals, trimmed.
func CoalesceStr(vals ...string) string {
	for _, v := range vals {
		if t := trim(v); t != "" {
			return t
		}
	}
	return ""
}

// ClampLevel bounds an impact/urgency value to [MinLevel, MaxLevel].
// Zero means "unset" and maps to DefaultLevel.
func ClampLevel(v int) int {
	switch {
	case v == 0:
		return DefaultLevel
	case v < MinLevel:
		return MinLevel
	case v > MaxLevel:
		return MaxLevel
	}
	return v
}

// EqualFold compares two labels ignoring case and surrounding whitespace.
func EqualFold(a, b string) bool {
	return strings.EqualFold(trim(a), trim(b))
}

func trim(s string) string {
	return strings.TrimSpace(s)
}
