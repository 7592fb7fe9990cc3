package common

import (
	"regexp"
	"strings"
)

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)
	slugDashRuns     = regexp.MustCompile(`-{2,}`)
)

// Slugify converts a title into a URL-safe slug.
// "Night Differential Pay: A Complete Guide" -> "night-differential-pay-a-complete-guide"
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugInvalidChars.ReplaceAllString(slug, "-")
	slug = slugDashRuns.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// CountWords counts whitespace-separated words in markdown content.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
