package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scriptdna/internal/export"
	"scriptdna/internal/services"
	"scriptdna/internal/stages"
	"scriptdna/internal/testsupport"
)

func TestRunWritesScriptFiles(t *testing.T) {
	server := testsupport.NewChatServer(t)
	env := setupCLITestEnv(t, testsupport.WithBaseURL(server.URL), testsupport.WithScript(600, 3))
	input := testsupport.WriteTranscript(t, env.baseDir, "workshop.srt", "")

	out, _, err := runCLI(t, []string{"run", input, "--strategy", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	requireContains(t, out, "The Workshop Host")
	requireContains(t, out, "Fix a Chair")
	requireContains(t, out, "Part 3/3")

	full := filepath.Join(env.cfg.Paths.ExportDir, export.FullScriptFileName("Fix a Chair"))
	content, err := os.ReadFile(full)
	if err != nil {
		t.Fatalf("read full script: %v", err)
	}
	if !strings.HasPrefix(string(content), "TITLE: Fix a Chair") || !strings.Contains(string(content), "=== PART 3 ===") {
		t.Fatalf("unexpected full script:\n%s", content)
	}
	for part := 1; part <= 3; part++ {
		if _, err := os.Stat(filepath.Join(env.cfg.Paths.ExportDir, export.PartFileName(part))); err != nil {
			t.Fatalf("missing part %d: %v", part, err)
		}
	}

	logs, err := filepath.Glob(filepath.Join(env.cfg.Paths.LogDir, "sessions", "*.log"))
	if err != nil || len(logs) != 1 {
		t.Fatalf("expected one session log, got %v (%v)", logs, err)
	}
}

func TestRunRejectsOutOfRangeStrategy(t *testing.T) {
	server := testsupport.NewChatServer(t)
	env := setupCLITestEnv(t, testsupport.WithBaseURL(server.URL))
	input := testsupport.WriteTranscript(t, env.baseDir, "workshop.srt", "")

	_, _, err := runCLI(t, []string{"run", input, "--strategy", "9"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "--strategy must be between 1 and 2") {
		t.Fatalf("expected strategy range error, got %v", err)
	}
}

func TestRunReportsMissingStrategies(t *testing.T) {
	server := testsupport.NewChatServer(t, testsupport.WithStageResponse(stages.StageStrategies, `[]`))
	env := setupCLITestEnv(t, testsupport.WithBaseURL(server.URL))
	input := testsupport.WriteTranscript(t, env.baseDir, "workshop.srt", "")

	_, _, err := runCLI(t, []string{"run", input}, env.configPath)
	if !errors.Is(err, services.ErrNoContent) || !strings.Contains(err.Error(), "no strategies were generated") {
		t.Fatalf("expected no-content error, got %v", err)
	}
}

func TestRunRejectsInvalidScriptFlags(t *testing.T) {
	env := setupCLITestEnv(t)
	input := testsupport.WriteTranscript(t, env.baseDir, "workshop.srt", "")

	if _, _, err := runCLI(t, []string{"run", input, "--parts", "21"}, env.configPath); err == nil {
		t.Fatal("expected parts validation error")
	}
}

func TestParsePrintsSegments(t *testing.T) {
	dir := t.TempDir()
	input := testsupport.WriteTranscript(t, dir, "workshop.srt", "")

	out, _, err := runCLI(t, []string{"parse", input}, "")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	requireContains(t, out, "workshop.srt")
	requireContains(t, out, "00:00:10")
	requireContains(t, out, "bookshelf")
}

func TestParseWarnsOnEmptyTranscript(t *testing.T) {
	input := testsupport.WriteTranscript(t, t.TempDir(), "junk.srt", "no cues here")
	out, _, err := runCLI(t, []string{"parse", input}, "")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	requireContains(t, out, "no valid subtitle blocks found")
	requireContains(t, out, "00:00:00")
}

func TestHealthReportsProviderAndNotifications(t *testing.T) {
	server := testsupport.NewChatServer(t)
	env := setupCLITestEnv(t, testsupport.WithBaseURL(server.URL))

	out, _, err := runCLI(t, []string{"health"}, env.configPath)
	if err != nil {
		t.Fatalf("health: %v\n%s", err, out)
	}
	requireContains(t, out, "Completion:")
	requireContains(t, out, "disabled")
}

func TestFailedStageNamesStage(t *testing.T) {
	if got := failedStage(errors.New("boom")); got != "run" {
		t.Fatalf("failedStage = %q", got)
	}
	err := fmt.Errorf("wrapped: %w", &stages.StageError{Stage: stages.StageDNA, Message: "x"})
	if got := failedStage(err); got != stages.StageDNA {
		t.Fatalf("failedStage = %q", got)
	}
}
