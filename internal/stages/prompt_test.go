package stages

import (
	"strings"
	"testing"

	"scriptdna/internal/generation"
)

func TestPartFraming(t *testing.T) {
	tests := []struct {
		part, total int
		contains    string
	}{
		{1, 1, "complete script"},
		{1, 4, "Do not conclude"},
		{4, 4, "conclusion"},
		{2, 4, "middle section"},
		{1, 0, "complete script"},
	}
	for _, tt := range tests {
		if got := PartFraming(tt.part, tt.total); !strings.Contains(got, tt.contains) {
			t.Errorf("PartFraming(%d, %d) = %q, want it to contain %q", tt.part, tt.total, got, tt.contains)
		}
	}
}

func TestBuildAnalyzeRequestCapsTranscript(t *testing.T) {
	text := strings.Repeat("é", AnalyzeTranscriptLimit+50)
	req := BuildAnalyzeRequest(text)
	if req.Tier != generation.TierFast || req.Stage != StageAnalyze {
		t.Fatalf("unexpected request metadata: %+v", req)
	}
	if got := strings.Count(req.Prompt, "é"); got != AnalyzeTranscriptLimit {
		t.Fatalf("prompt carries %d transcript runes, want %d", got, AnalyzeTranscriptLimit)
	}
	if req.Schema == nil || req.Schema.Type != generation.TypeObject {
		t.Fatalf("expected object schema, got %+v", req.Schema)
	}
}

func TestBuildDNARequestUsesProTier(t *testing.T) {
	req := BuildDNARequest("hello", Analysis{HookType: "Question", StructureSummary: "Linear."})
	if req.Tier != generation.TierPro || req.ThinkingBudget != DNAThinkingBudget {
		t.Fatalf("unexpected request: tier=%s budget=%d", req.Tier, req.ThinkingBudget)
	}
	for _, want := range []string{"Question", "Linear.", "hello"} {
		if !strings.Contains(req.Prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestBuildStrategiesRequestCapsContext(t *testing.T) {
	req := BuildStrategiesRequest(DNA{PersonaName: "P"}, strings.Repeat("ж", 5000))
	if got := strings.Count(req.Prompt, "ж"); got != StrategyContextLimit {
		t.Fatalf("context not capped: %d", got)
	}
	if req.Schema == nil || req.Schema.Type != generation.TypeArray {
		t.Fatalf("expected array schema")
	}
}

func TestBuildScriptPartRequestContext(t *testing.T) {
	cfg := ScriptConfig{TargetWordCount: 2000, Parts: 3, Instructions: "Keep it punchy."}
	first := BuildScriptPartRequest(ScriptPartInput{DNA: DNA{SystemPrompt: "VOICE"}, Topic: "Bees", Config: cfg, Part: 1, PreviousText: "ignored"})
	if strings.Contains(first.Prompt, "STORY SO FAR") || strings.Contains(first.Prompt, "ignored") {
		t.Fatal("part 1 must not carry previous context")
	}
	for _, want := range []string{"VOICE", `"Bees"`, "about 667 words", "Keep it punchy."} {
		if !strings.Contains(first.Prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, first.Prompt)
		}
	}

	previous := strings.Repeat("a", 500) + strings.Repeat("b", PreviousContextLimit)
	second := BuildScriptPartRequest(ScriptPartInput{Topic: "Bees", Config: cfg, Part: 2, PreviousText: previous})
	if !strings.Contains(second.Prompt, `"...`+strings.Repeat("b", PreviousContextLimit)+`"`) {
		t.Fatal("expected the last 2000 characters of previous text")
	}
	if strings.Contains(second.Prompt, strings.Repeat("a", 10)) {
		t.Fatal("previous context should be trimmed to its tail")
	}
	if second.Tier != generation.TierPro || second.ThinkingBudget != ScriptThinkingBudget {
		t.Fatalf("unexpected request metadata: %+v", second)
	}
}

func TestScriptConfig(t *testing.T) {
	if err := DefaultScriptConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	for _, cfg := range []ScriptConfig{{TargetWordCount: 100, Parts: 0}, {TargetWordCount: 100, Parts: 21}, {TargetWordCount: 0, Parts: 2}} {
		if err := cfg.Validate(); err == nil {
			t.Errorf("expected %+v to be rejected", cfg)
		}
	}
	if got := (ScriptConfig{TargetWordCount: 1000, Parts: 3}).WordsPerPart(); got != 333 {
		t.Fatalf("WordsPerPart = %d", got)
	}
	if got := (ScriptConfig{TargetWordCount: 1000, Parts: 0}).WordsPerPart(); got != 1000 {
		t.Fatalf("WordsPerPart with zero parts = %d", got)
	}
}

func TestPreviousText(t *testing.T) {
	parts := []ScriptPart{
		{PartNumber: 1, Content: []Row{{Text: "one"}, {Text: "two"}}},
		{PartNumber: 2, Content: []Row{{Text: "three"}}},
	}
	if got := PreviousText(parts); got != "one two three" {
		t.Fatalf("PreviousText = %q", got)
	}
}
