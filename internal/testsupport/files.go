package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// SampleSRT is a three-cue transcript lasting ten seconds.
const SampleSRT = `1
00:00:00,000 --> 00:00:03,000
Hello friends and welcome back to the workshop.

2
00:00:03,000 --> 00:00:06,500
Today we build a simple bookshelf from scrap pine.

3
00:00:06,500 --> 00:00:10,000
Grab your saw and let's get started.
`

// WriteTranscript writes content to dir/name and returns the path. An empty
// content writes SampleSRT.
func WriteTranscript(t testing.TB, dir, name, content string) string {
	t.Helper()

	if content == "" {
		content = SampleSRT
	}
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
