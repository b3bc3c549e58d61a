package stages

import (
	"fmt"
	"math"
	"strings"

	"scriptdna/internal/services"
	"scriptdna/internal/transcript"
)

// SentimentPoint is one sample of the emotional arc. Time is a percentage of
// the transcript (0-100) and Score runs from -1 to 1.
type SentimentPoint struct {
	Time  float64 `json:"time"`
	Score float64 `json:"score"`
}

// Analysis is the result of the Analyze stage.
type Analysis struct {
	HookType         string                   `json:"hookType"`
	StructureSummary string                   `json:"structureSummary"`
	KeyThemes        []string                 `json:"keyThemes"`
	SentimentArc     []SentimentPoint         `json:"sentimentArc"`
	PacingHeatmap    []transcript.PacingPoint `json:"pacingHeatmap"`
}

// DNA is the extracted persona: a name, a style summary, and a system prompt
// that makes a model write in the author's voice.
type DNA struct {
	PersonaName  string `json:"personaName"`
	StyleSummary string `json:"styleSummary"`
	SystemPrompt string `json:"systemPrompt"`
}

// Strategy is one proposed content idea.
type Strategy struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Concept    string `json:"concept"`
	WhyItWorks string `json:"whyItWorks"`
}

// ScriptConfig controls script length and segmentation.
type ScriptConfig struct {
	TargetWordCount int    `json:"targetWordCount"`
	Parts           int    `json:"parts"`
	Instructions    string `json:"instructions"`
}

const (
	DefaultTargetWordCount = 2000
	DefaultParts           = 5
	MaxParts               = 20
)

// DefaultScriptConfig returns the configuration used when the caller supplies none.
func DefaultScriptConfig() ScriptConfig {
	return ScriptConfig{TargetWordCount: DefaultTargetWordCount, Parts: DefaultParts}
}

// Validate rejects part counts outside 1-20 and non-positive word targets.
func (c ScriptConfig) Validate() error {
	if c.Parts < 1 || c.Parts > MaxParts {
		return services.Wrap(services.ErrValidation, "config", "validate",
			fmt.Sprintf("parts must be between 1 and %d, got %d", MaxParts, c.Parts), nil)
	}
	if c.TargetWordCount <= 0 {
		return services.Wrap(services.ErrValidation, "config", "validate",
			fmt.Sprintf("target word count must be positive, got %d", c.TargetWordCount), nil)
	}
	return nil
}

// WordsPerPart is the rounded per-part word target.
func (c ScriptConfig) WordsPerPart() int {
	parts := c.Parts
	if parts <= 0 {
		parts = 1
	}
	return int(math.Round(float64(c.TargetWordCount) / float64(parts)))
}

// Row is one paragraph of generated narration.
type Row struct {
	Text string `json:"text"`
}

// ScriptPart is one sequentially generated chunk of the script.
type ScriptPart struct {
	PartNumber int   `json:"partNumber"`
	Content    []Row `json:"content"`
}

// Join concatenates the part's row texts with sep.
func (p ScriptPart) Join(sep string) string {
	texts := make([]string, len(p.Content))
	for i, row := range p.Content {
		texts[i] = row.Text
	}
	return strings.Join(texts, sep)
}

// PreviousText concatenates all rows of all parts, in order, separated by
// single spaces. This is the continuity context handed to the next part.
func PreviousText(parts []ScriptPart) string {
	texts := make([]string, len(parts))
	for i, part := range parts {
		texts[i] = part.Join(" ")
	}
	return strings.Join(texts, " ")
}
