package jsonrepair

import (
	"fmt"
	"regexp"
	"strings"
)

const maxFractionDigits = 10

var (
	openingFencePattern = regexp.MustCompile("^```[A-Za-z0-9_+-]*[ \\t]*\\r?\\n?")
	closingFencePattern = regexp.MustCompile("\\r?\\n?```$")
	longDecimalPattern  = regexp.MustCompile(fmt.Sprintf(`(\d+\.\d{%d})\d+`, maxFractionDigits))
)

// StripCodeFence removes a surrounding markdown code fence, with or without a
// language tag. Text without an opening fence is returned trimmed.
func StripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := openingFencePattern.ReplaceAllString(trimmed, "")
	body = closingFencePattern.ReplaceAllString(body, "")
	return strings.TrimSpace(body)
}

// TruncateLongDecimals collapses any run of more than ten fractional digits
// down to exactly ten.
func TruncateLongDecimals(text string) string {
	return longDecimalPattern.ReplaceAllString(text, "${1}")
}

// RepairTruncatedArray cuts text after its last closing brace and closes the
// array. It reports false when there is no brace to cut at.
func RepairTruncatedArray(text string) (string, bool) {
	idx := strings.LastIndex(text, "}")
	if idx < 0 {
		return "", false
	}
	return text[:idx+1] + "]", true
}

// Clean applies the text transforms that precede parsing: trim, strip a code
// fence, then truncate long decimals.
func Clean(raw string) string {
	return TruncateLongDecimals(StripCodeFence(raw))
}

// Snippet condenses text to a single bounded line for logs and error detail.
func Snippet(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "<empty>"
	}
	clean := strings.Join(strings.Fields(trimmed), " ")
	const limit = 160
	runes := []rune(clean)
	if len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}
