package utils

import (
	"slices"
	"strings"
)

// Truncate cuts s to max runes, appending an ellipsis when anything was
// dropped. Used for push bodies, which carry a preview, not the message.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// Dedupe returns the unique non-empty values of ids, preserving first-seen
// order.
func Dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			continue
		}
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
