package util

import "strings"

// Ptr returns a pointer to the given value.
func Ptr[T any](v T) *T {
	return &v
}

// NilIfBlank returns nil for strings that are empty after trimming and a
// pointer to the trimmed string otherwise.
func NilIfBlank(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
