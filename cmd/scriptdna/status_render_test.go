package main

import (
	"fmt"
	"strings"
	"testing"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Provider", statusError, "missing key", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Provider:", "[ERROR] missing key")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithoutMessage(t *testing.T) {
	got := renderStatusLine("Settings", statusOK, "", false)
	if !strings.HasSuffix(got, "[OK]") {
		t.Fatalf("expected bare status, got %q", got)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Provider", statusWarn, "slow", true)
	if !strings.HasPrefix(got, statusStyles[statusWarn].color) {
		t.Fatalf("expected yellow prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestRenderSectionHeader(t *testing.T) {
	lines := renderSectionHeader(" Exported ", false)
	if len(lines) != 2 || lines[0] != "== Exported ==" || lines[1] != strings.Repeat("-", len(lines[0])) {
		t.Fatalf("unexpected header %q", lines)
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]string{"#", "Title"}, [][]string{{"1"}}, []columnAlignment{alignRight})
	if !strings.Contains(out, "TITLE") || !strings.Contains(out, "1") {
		t.Fatalf("unexpected table:\n%s", out)
	}
	if renderTable(nil, nil, nil) != "" {
		t.Fatal("expected empty table for no headers")
	}
}

func TestFormatSeconds(t *testing.T) {
	if got := formatSeconds(3725.9); got != "01:02:05" {
		t.Fatalf("formatSeconds = %q", got)
	}
}
