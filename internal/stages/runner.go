package stages

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"scriptdna/internal/generation"
	"scriptdna/internal/jsonrepair"
	"scriptdna/internal/logging"
	"scriptdna/internal/services"
	"scriptdna/internal/transcript"
)

// Runner sends stage requests through a Generator and normalises the results.
type Runner struct {
	generator generation.Generator
	logger    *slog.Logger
}

// NewRunner constructs a Runner. A nil logger discards output.
func NewRunner(generator generation.Generator, logger *slog.Logger) *Runner {
	return &Runner{
		generator: generator,
		logger:    logging.NewComponentLogger(logger, "stages"),
	}
}

// Analyze runs the Analyze stage over a parsed transcript.
func (r *Runner) Analyze(ctx context.Context, data transcript.Data) (Analysis, error) {
	ctx = services.WithStage(ctx, StageAnalyze)
	raw, err := r.generate(ctx, BuildAnalyzeRequest(data.FullText), 0)
	if err != nil {
		return Analysis{}, err
	}
	analysis, err := ParseAnalysis(raw)
	if err != nil {
		return Analysis{}, r.parseFailed(ctx, StageAnalyze, 0, raw, err)
	}
	analysis.PacingHeatmap = transcript.PacingHeatmap(data.Segments)
	logging.WithContext(ctx, r.logger).Info("analysis ready",
		logging.String("hook_type", analysis.HookType),
		logging.Int("themes", len(analysis.KeyThemes)),
		logging.Int("sentiment_points", len(analysis.SentimentArc)),
	)
	return analysis, nil
}

// ExtractDNA runs the Extract-DNA stage.
func (r *Runner) ExtractDNA(ctx context.Context, transcriptText string, analysis Analysis) (DNA, error) {
	ctx = services.WithStage(ctx, StageDNA)
	raw, err := r.generate(ctx, BuildDNARequest(transcriptText, analysis), 0)
	if err != nil {
		return DNA{}, err
	}
	dna, err := ParseDNA(raw)
	if err != nil {
		return DNA{}, r.parseFailed(ctx, StageDNA, 0, raw, err)
	}
	logger := logging.WithContext(ctx, r.logger)
	if dna.SystemPrompt == "" {
		logging.WarnWithContext(logger, "persona has no system prompt", "dna_prompt_missing",
			logging.String(logging.FieldErrorHint, "re-run DNA extraction if scripts drift from the author's voice"),
			logging.String(logging.FieldImpact, "script parts are written without style instructions"),
		)
	}
	logger.Info("persona extracted",
		logging.String("persona", dna.PersonaName),
		logging.Int("system_prompt_chars", utf8.RuneCountInString(dna.SystemPrompt)),
	)
	return dna, nil
}

// GenerateStrategies runs the Generate-Strategies stage.
func (r *Runner) GenerateStrategies(ctx context.Context, dna DNA, contextText string) ([]Strategy, error) {
	ctx = services.WithStage(ctx, StageStrategies)
	raw, err := r.generate(ctx, BuildStrategiesRequest(dna, contextText), 0)
	if err != nil {
		return nil, err
	}
	strategies, shape, err := ParseStrategies(raw)
	if err != nil {
		return nil, r.parseFailed(ctx, StageStrategies, 0, raw, err)
	}
	logger := logging.WithContext(ctx, r.logger)
	r.logShape(logger, shape, raw, "strategy list")
	logger.Info("strategies ready", logging.Int("count", len(strategies)))
	return strategies, nil
}

// GenerateScriptPart runs the Generate-Script-Part stage for in.Part.
func (r *Runner) GenerateScriptPart(ctx context.Context, in ScriptPartInput) (ScriptPart, error) {
	if in.Part < 1 || in.Part > max(in.Config.Parts, 1) {
		return ScriptPart{}, services.Wrap(services.ErrValidation, StageScript, "generate part",
			fmt.Sprintf("part %d is outside 1-%d", in.Part, max(in.Config.Parts, 1)), nil)
	}
	ctx = services.WithPart(services.WithStage(ctx, StageScript), in.Part)
	raw, err := r.generate(ctx, BuildScriptPartRequest(in), in.Part)
	if err != nil {
		return ScriptPart{}, err
	}
	rows, shape, err := ParseScriptRows(raw)
	if err != nil {
		return ScriptPart{}, r.parseFailed(ctx, StageScript, in.Part, raw, err)
	}
	logger := logging.WithContext(ctx, r.logger)
	r.logShape(logger, shape, raw, "script rows")
	logger.Info("script part ready",
		logging.Int("rows", len(rows)),
		logging.Int("words", transcript.CountWords(joinRows(rows))),
		logging.Int("target_words", in.Config.WordsPerPart()),
	)
	return ScriptPart{PartNumber: in.Part, Content: rows}, nil
}

func (r *Runner) generate(ctx context.Context, req generation.Request, part int) (string, error) {
	logger := logging.WithContext(ctx, r.logger)
	if r.generator == nil {
		return "", services.Wrap(services.ErrConfiguration, req.Stage, "generate", "no generation provider configured", nil)
	}
	logger.Debug("generation request",
		logging.String("tier", string(req.Tier)),
		logging.Int("prompt_chars", utf8.RuneCountInString(req.Prompt)),
		logging.Int("thinking_budget", req.ThinkingBudget),
	)
	start := time.Now()
	raw, err := r.generator.Generate(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		var stageErr *StageError
		if errors.Is(err, services.ErrNoContent) {
			stageErr = noTextError(req.Stage, part, err)
		} else {
			stageErr = requestError(req.Stage, part, err)
		}
		logging.ErrorWithContext(logger, "generation failed", "generation_failed",
			logging.String("error_kind", services.Classify(stageErr)),
			logging.Duration("elapsed", elapsed),
			logging.String(logging.FieldErrorHint, "check provider credentials and connectivity, then retry the stage"),
			logging.Error(err),
		)
		return "", stageErr
	}
	if strings.TrimSpace(raw) == "" {
		logging.ErrorWithContext(logger, "generation returned no text", "generation_empty",
			logging.Duration("elapsed", elapsed),
			logging.String(logging.FieldErrorHint, "retry the stage; the model returned an empty response"),
		)
		return "", noTextError(req.Stage, part, services.ErrNoContent)
	}
	logger.Debug("generation response",
		logging.Duration("elapsed", elapsed),
		logging.Int("response_chars", utf8.RuneCountInString(raw)),
	)
	return raw, nil
}

func (r *Runner) parseFailed(ctx context.Context, stage string, part int, raw string, err error) error {
	logger := logging.WithContext(ctx, r.logger)
	logging.ErrorWithContext(logger, "model output could not be parsed", "stage_parse_failed",
		logging.String("raw_snippet", jsonrepair.Snippet(raw)),
		logging.Int("raw_chars", utf8.RuneCountInString(raw)),
		logging.String(logging.FieldErrorHint, "retry the stage; the model returned malformed JSON"),
		logging.Error(err),
	)
	logger.Debug("unparsed model output", logging.String("raw", raw))
	return parseError(stage, part, err)
}

func (r *Runner) logShape(logger *slog.Logger, shape Shape, raw, what string) {
	switch shape {
	case ShapeArray:
		return
	case ShapeUnrecognized:
		logging.WarnWithContext(logger, "unrecognized response shape", "response_shape_unrecognized",
			logging.String("expected", what),
			logging.String("raw_snippet", jsonrepair.Snippet(raw)),
			logging.String(logging.FieldErrorHint, "retry the stage if the result is empty"),
			logging.String(logging.FieldImpact, "stage produced no items"),
		)
	default:
		logger.Info("response shape unwrapped",
			logging.Args(logging.DecisionAttrs("response_shape", string(shape), "model wrapped the "+what+" in an object")...)...)
	}
}

func joinRows(rows []Row) string {
	return ScriptPart{Content: rows}.Join(" ")
}
