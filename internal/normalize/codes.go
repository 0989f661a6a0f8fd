package normalize

import (
	"strings"
)

// RegionKey is the case-insensitive comparison key for complex area names:
// whitespace collapsed, trimmed and uppercased.
func RegionKey(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// NormalizeCode trims whitespace and uppercases a directory identifier.
// Returns nil if the input is nil or the result is empty.
func NormalizeCode(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.ToUpper(strings.TrimSpace(*v))
	if s == "" {
		return nil
	}
	return &s
}
