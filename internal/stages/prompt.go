package stages

import (
	"fmt"
	"strings"

	"scriptdna/internal/generation"
	"scriptdna/internal/textutil"
)

// Input caps, counted in code points.
const (
	AnalyzeTranscriptLimit = 25000
	DNATranscriptLimit     = 30000
	StrategyContextLimit   = 1000
	PreviousContextLimit   = 2000
)

// Thinking budgets for the pro tier stages.
const (
	DNAThinkingBudget    = 32768
	ScriptThinkingBudget = 8192
)

// AnalyzePrompt asks for the structural breakdown of a transcript. The
// transcript itself is appended after the instructions.
const AnalyzePrompt = `You study video transcripts and describe how they are built.

Read the transcript below and report:
- hookType: a short label for how the first few seconds grab attention.
- structureSummary: one or two sentences describing the narrative structure.
- keyThemes: the three most important themes.
- sentimentArc: about ten points tracing the emotional tone from start to end,
  each with "time" (percent of the way through, 0-100) and "score" (-1 negative to 1 positive).

Respond ONLY with a JSON object containing those four fields.

TRANSCRIPT:
`

// DNAPrompt asks for the author's persona and a reusable system prompt.
const DNAPrompt = `You are a ghostwriter who reverse-engineers a creator's voice.

Using the transcript and the structural analysis below, describe the author as a persona:
- personaName: a memorable name for the persona.
- styleSummary: a short paragraph on tone, vocabulary, rhythm and rhetorical habits.
- systemPrompt: detailed instructions that make another model write exactly like this author.
  Cover tone, words and phrases to avoid, formatting habits and how pacing is handled.

Respond ONLY with a JSON object containing those three fields.
`

// StrategiesPrompt asks for new content ideas that suit the persona.
const StrategiesPrompt = `You are a content strategist working with the creator described below.

Propose four new video ideas that fit this creator's voice and audience.
For each idea give an "id", a catchy "title", a one-paragraph "concept" and "whyItWorks",
a short explanation of why it suits this persona.

Respond ONLY with a JSON array of four objects.
`

// ScriptPrompt frames a single script part. Persona, topic, targets and
// continuity context are appended by BuildScriptPartRequest.
const ScriptPrompt = `Write as the persona described by the style DNA below. Stay in that voice throughout.

The result is narration only: no scene directions, no timestamps, no speaker names.
Aim for depth, clean logical flow, strong rhetoric and precise vocabulary, paced exactly
as the persona would pace it. It must be ready for a voiceover artist to read as-is.
`

const scriptOutputFormat = `Respond ONLY with a strict JSON array. Each element is one paragraph:
[{"text": "first paragraph"}, {"text": "second paragraph"}]`

// BuildAnalyzeRequest prepares the Analyze stage call.
func BuildAnalyzeRequest(transcriptText string) generation.Request {
	return generation.Request{
		Stage:  StageAnalyze,
		Tier:   generation.TierFast,
		Prompt: AnalyzePrompt + textutil.Head(transcriptText, AnalyzeTranscriptLimit),
		Schema: analysisSchema(),
	}
}

// BuildDNARequest prepares the Extract-DNA stage call.
func BuildDNARequest(transcriptText string, analysis Analysis) generation.Request {
	var b strings.Builder
	b.WriteString(DNAPrompt)
	b.WriteString("\nANALYSIS:\n")
	fmt.Fprintf(&b, "Hook: %s\n", analysis.HookType)
	fmt.Fprintf(&b, "Structure: %s\n", analysis.StructureSummary)
	b.WriteString("\nTRANSCRIPT:\n")
	b.WriteString(textutil.Head(transcriptText, DNATranscriptLimit))
	return generation.Request{
		Stage:          StageDNA,
		Tier:           generation.TierPro,
		Prompt:         b.String(),
		Schema:         dnaSchema(),
		ThinkingBudget: DNAThinkingBudget,
	}
}

// BuildStrategiesRequest prepares the Generate-Strategies stage call.
// contextText is usually the transcript's full text.
func BuildStrategiesRequest(dna DNA, contextText string) generation.Request {
	var b strings.Builder
	b.WriteString(StrategiesPrompt)
	fmt.Fprintf(&b, "\nPERSONA: %s\n", dna.PersonaName)
	fmt.Fprintf(&b, "STYLE: %s\n", dna.StyleSummary)
	b.WriteString("\nSAMPLE OF PAST CONTENT:\n")
	b.WriteString(textutil.Head(contextText, StrategyContextLimit))
	return generation.Request{
		Stage:  StageStrategies,
		Tier:   generation.TierFast,
		Prompt: b.String(),
		Schema: strategiesSchema(),
	}
}

// ScriptPartInput holds everything needed to write one part.
type ScriptPartInput struct {
	DNA    DNA
	Topic  string
	Config ScriptConfig
	// Part is 1-based.
	Part int
	// PreviousText is every earlier row, in order, joined by spaces.
	PreviousText string
}

// PartFraming returns the positional instruction for a part.
func PartFraming(part, total int) string {
	if total <= 0 {
		total = 1
	}
	first := part == 1
	last := part == total
	switch {
	case first && last:
		return "Write the complete script from opening to close."
	case first:
		return fmt.Sprintf("Write part 1 of %d: the intro and hook. Do not conclude the script yet.", total)
	case last:
		return fmt.Sprintf("Write part %d of %d: the conclusion and outro. Tie off every open thread.", part, total)
	default:
		return fmt.Sprintf("Write part %d of %d: a middle section. Carry on directly from the previous text.", part, total)
	}
}

// BuildScriptPartRequest prepares the Generate-Script-Part stage call.
func BuildScriptPartRequest(in ScriptPartInput) generation.Request {
	var b strings.Builder
	b.WriteString(ScriptPrompt)
	b.WriteString("\nSTYLE DNA:\n")
	b.WriteString(in.DNA.SystemPrompt)
	fmt.Fprintf(&b, "\n\nTOPIC: %q\n", in.Topic)
	fmt.Fprintf(&b, "Target length for this part: about %d words.\n", in.Config.WordsPerPart())
	if instructions := strings.TrimSpace(in.Config.Instructions); instructions != "" {
		fmt.Fprintf(&b, "Additional instructions: %s\n", instructions)
	}
	fmt.Fprintf(&b, "\nCURRENT STEP: %s\n", PartFraming(in.Part, in.Config.Parts))
	if in.Part > 1 {
		fmt.Fprintf(&b, "\nSTORY SO FAR (continue seamlessly): \"...%s\"\n", textutil.Tail(in.PreviousText, PreviousContextLimit))
	}
	b.WriteString("\n")
	b.WriteString(scriptOutputFormat)
	return generation.Request{
		Stage:          StageScript,
		Tier:           generation.TierPro,
		Prompt:         b.String(),
		Schema:         scriptRowsSchema(),
		ThinkingBudget: ScriptThinkingBudget,
	}
}
