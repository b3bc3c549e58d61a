package textutil

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Head returns the first limit code points of text.
func Head(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	count := 0
	for i := range text {
		if count == limit {
			return text[:i]
		}
		count++
	}
	return text
}

// Tail returns the last limit code points of text.
func Tail(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	total := utf8.RuneCountInString(text)
	if total <= limit {
		return text
	}
	skip := total - limit
	count := 0
	for i := range text {
		if count == skip {
			return text[i:]
		}
		count++
	}
	return ""
}

// TitleCase capitalises each word for display.
func TitleCase(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return cases.Title(language.Und).String(value)
}
