package utils

import "strings"

// TruncateForLog keeps log lines about profile and catalog texts short. It
// trims s and cuts it to limit runes, so accented or non-Latin skills are never
// split mid-character, marking the cut with "...".
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
