package textutil

import (
	"regexp"
	"strings"
)

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. The result is trimmed of leading/trailing whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}

// Slug lowercases value, replaces whitespace runs with a single dash, and
// strips filesystem-unsafe characters. Returns "untitled" when nothing is left.
func Slug(value string) string {
	slug := strings.ToLower(strings.TrimSpace(value))
	slug = whitespaceRun.ReplaceAllString(slug, "-")
	slug = strings.Trim(SanitizeFileName(slug), "-.")
	if slug == "" {
		return "untitled"
	}
	return slug
}
