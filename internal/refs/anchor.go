package refs

import (
	"regexp"
	"strings"
)

var (
	nonAnchorChars = regexp.MustCompile(`[^a-z0-9-]`)
	dashRuns       = regexp.MustCompile(`-+`)
)

// Anchor converts a title or label into an HTML-id-safe slug.
func Anchor(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonAnchorChars.ReplaceAllString(s, "-")
	s = dashRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
