package util

import "strings"

// StripCodeFences removes a markdown fence the model sometimes wraps around
// JSON output despite the strict-JSON instruction.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
