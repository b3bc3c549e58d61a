package textutil

import "testing"

func TestHeadCountsCodePoints(t *testing.T) {
	cases := []struct {
		text  string
		limit int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello", 3, "hel"},
		{"héllo", 2, "hé"},
		{"日本語テキスト", 3, "日本語"},
		{"abc", 0, ""},
	}
	for _, tc := range cases {
		if got := Head(tc.text, tc.limit); got != tc.want {
			t.Fatalf("Head(%q, %d) = %q, want %q", tc.text, tc.limit, got, tc.want)
		}
	}
}

func TestTailCountsCodePoints(t *testing.T) {
	cases := []struct {
		text  string
		limit int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello", 3, "llo"},
		{"naïve", 3, "ïve"},
		{"日本語テキスト", 4, "テキスト"},
		{"abc", -1, ""},
	}
	for _, tc := range cases {
		if got := Tail(tc.text, tc.limit); got != tc.want {
			t.Fatalf("Tail(%q, %d) = %q, want %q", tc.text, tc.limit, got, tc.want)
		}
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := map[string]string{
		"  Why: Rust?  ": "Why- Rust",
		"a/b\\c":         "a-b-c",
		"<quoted> \"x\"": "quoted x",
		"":               "",
	}
	for input, want := range tests {
		if got := SanitizeFileName(input); got != want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"The Future of  AI":   "the-future-of-ai",
		"  Why: Rust?  ":      "why--rust",
		"Tabs\tand\nnewlines": "tabs-and-newlines",
		"???":                 "untitled",
		"":                    "untitled",
		"Café Culture":        "café-culture",
	}
	for input, want := range tests {
		if got := Slug(input); got != want {
			t.Fatalf("Slug(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestTitleCase(t *testing.T) {
	if got := TitleCase("  the curious explainer "); got != "The Curious Explainer" {
		t.Fatalf("unexpected title %q", got)
	}
	if got := TitleCase(""); got != "" {
		t.Fatalf("expected empty title, got %q", got)
	}
}
