// Package sanitize strips markup from user-provided text before it is stored.
package sanitize

import (
	"html"
	"regexp"
	"strings"
)

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	spacePattern = regexp.MustCompile(`[ \t\f\v]+`)
)

// Text removes HTML tags, decodes entities and trims the result. Line breaks
// are kept so chat messages and long-form content survive.
func Text(s string) string {
	result := tagPattern.ReplaceAllString(s, "")
	result = html.UnescapeString(result)
	// Encoded tags become real tags after decoding.
	result = tagPattern.ReplaceAllString(result, "")

	lines := strings.Split(result, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spacePattern.ReplaceAllString(line, " "))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Line sanitizes a single-line field such as a title or group name.
func Line(s string) string {
	return strings.Join(strings.Fields(Text(s)), " ")
}

// LinePtr applies Line to an optional value.
func LinePtr(s *string) *string {
	if s == nil {
		return nil
	}
	result := Line(*s)
	return &result
}
