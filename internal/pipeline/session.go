package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"scriptdna/internal/generation"
	"scriptdna/internal/logging"
	"scriptdna/internal/services"
	"scriptdna/internal/stages"
	"scriptdna/internal/transcript"
)

// ErrDiscarded reports that a generation finished after the session was
// reset; its result was dropped.
var ErrDiscarded = errors.New("session was reset while generating; result discarded")

// Session is one in-memory pipeline run. It is safe for concurrent use, but
// only one generation runs at a time.
type Session struct {
	id     string
	runner *stages.Runner
	logger *slog.Logger

	mu        sync.Mutex
	state     state
	busy      bool
	epoch     uint64
	cancel    context.CancelFunc
	createdAt time.Time
	updatedAt time.Time
}

// NewSession creates an empty session backed by generator.
func NewSession(generator generation.Generator, logger *slog.Logger) *Session {
	return NewSessionWithID(uuid.NewString(), generator, logger)
}

// NewSessionWithID creates an empty session with a caller-chosen identifier.
func NewSessionWithID(id string, generator generation.Generator, logger *slog.Logger) *Session {
	logger = logging.NewComponentLogger(logger, "pipeline").With(logging.String(logging.FieldSessionID, id))
	now := time.Now()
	return &Session{
		id:        id,
		runner:    stages.NewRunner(generator, logger),
		logger:    logger,
		createdAt: now,
		updatedAt: now,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.state.snapshot()
	snap.ID = s.id
	snap.Busy = s.busy
	snap.CreatedAt = s.createdAt
	snap.UpdatedAt = s.updatedAt
	return snap
}

// Complete reports whether every configured script part exists.
func (s *Session) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.complete()
}

// Ingest parses SubRip text and replaces the session transcript. Everything
// downstream is cleared. A transcript without any valid block is stored as
// empty data; the stages run against an empty full text.
func (s *Session) Ingest(raw, name string) (transcript.Data, error) {
	return s.install(transcript.Parse(raw, name))
}

// IngestFile reads and ingests a SubRip file.
func (s *Session) IngestFile(path string) (transcript.Data, error) {
	data, err := transcript.ParseFile(path)
	if err != nil {
		return transcript.Data{}, services.Wrap(services.ErrValidation, "ingest", "read transcript", "", err)
	}
	return s.install(data)
}

func (s *Session) install(data transcript.Data) (transcript.Data, error) {
	if data.Empty() {
		logging.WarnWithContext(s.logger, "transcript has no valid subtitle blocks", "transcript_empty",
			logging.String("file", displayName(data.FileName)),
			logging.Int("skipped_blocks", data.SkippedBlocks),
			logging.String(logging.FieldErrorHint, "check that the file is SubRip text"),
			logging.String(logging.FieldImpact, "stages run against an empty transcript"),
		)
	} else if data.SkippedBlocks > 0 {
		logging.WarnWithContext(s.logger, "malformed subtitle blocks skipped", "transcript_blocks_skipped",
			logging.String("file", data.FileName),
			logging.Int("skipped_blocks", data.SkippedBlocks),
			logging.Int("segments", len(data.Segments)),
			logging.String(logging.FieldErrorHint, "check the file for broken timecodes"),
			logging.String(logging.FieldImpact, "skipped blocks are missing from the transcript"),
		)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.interruptLocked("ingest")
	s.state = state{transcript: &data}
	s.touchLocked()
	s.logger.Info("transcript ingested",
		logging.String("file", data.FileName),
		logging.Int("segments", len(data.Segments)),
		logging.Int("words", data.WordCount),
		logging.Float64("duration_seconds", data.Duration),
		logging.Int("avg_wpm", data.AvgWPM),
	)
	return data, nil
}

// Analyze runs the Analyze stage. Requires a transcript.
func (s *Session) Analyze(ctx context.Context) (stages.Analysis, error) {
	job, err := s.begin(ctx, stages.StageAnalyze, 0, func(st *state) error {
		return requireTranscript(st, stages.StageAnalyze)
	})
	if err != nil {
		return stages.Analysis{}, err
	}
	analysis, err := s.runner.Analyze(job.ctx, *job.input.transcript)
	err = s.finish(job, err, func(st *state) {
		st.analysis = &analysis
		st.clearAfterAnalysis()
	})
	if err != nil {
		return stages.Analysis{}, err
	}
	return analysis, nil
}

// ExtractDNA runs the Extract-DNA stage. Requires a transcript and an analysis.
func (s *Session) ExtractDNA(ctx context.Context) (stages.DNA, error) {
	job, err := s.begin(ctx, stages.StageDNA, 0, func(st *state) error {
		if err := requireTranscript(st, stages.StageDNA); err != nil {
			return err
		}
		if st.analysis == nil {
			return missing(stages.StageDNA, "an analysis")
		}
		return nil
	})
	if err != nil {
		return stages.DNA{}, err
	}
	dna, err := s.runner.ExtractDNA(job.ctx, job.input.transcript.FullText, *job.input.analysis)
	err = s.finish(job, err, func(st *state) {
		st.dna = &dna
		st.clearAfterDNA()
	})
	if err != nil {
		return stages.DNA{}, err
	}
	return dna, nil
}

// GenerateStrategies runs the Generate-Strategies stage. Requires a
// transcript and a persona.
func (s *Session) GenerateStrategies(ctx context.Context) ([]stages.Strategy, error) {
	job, err := s.begin(ctx, stages.StageStrategies, 0, func(st *state) error {
		if err := requireTranscript(st, stages.StageStrategies); err != nil {
			return err
		}
		if st.dna == nil {
			return missing(stages.StageStrategies, "a persona (run DNA extraction first)")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	strategies, err := s.runner.GenerateStrategies(job.ctx, *job.input.dna, job.input.transcript.FullText)
	err = s.finish(job, err, func(st *state) {
		st.strategies = strategies
		st.clearAfterStrategies()
	})
	if err != nil {
		return nil, err
	}
	return append([]stages.Strategy{}, strategies...), nil
}

// SelectStrategy picks the strategy whose title becomes the script topic.
// Config and parts are cleared.
func (s *Session) SelectStrategy(id string) (stages.Strategy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.idleLocked("select strategy"); err != nil {
		return stages.Strategy{}, err
	}
	if len(s.state.strategies) == 0 {
		return stages.Strategy{}, missing("select strategy", "generated strategies")
	}
	id = strings.TrimSpace(id)
	for _, candidate := range s.state.strategies {
		if candidate.ID == id {
			selected := candidate
			s.state.selected = &selected
			s.state.clearAfterSelection()
			s.touchLocked()
			s.logger.Info("strategy selected",
				logging.Args(append(logging.DecisionAttrs("strategy_selection", selected.ID, "selected by caller"),
					logging.String("title", selected.Title))...)...)
			return selected, nil
		}
	}
	return stages.Strategy{}, services.Wrap(services.ErrValidation, "select strategy", "lookup",
		fmt.Sprintf("unknown strategy id %q", id), nil)
}

// Configure sets the script configuration. Requires a selected strategy;
// generated parts are cleared.
func (s *Session) Configure(cfg stages.ScriptConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.idleLocked("configure script"); err != nil {
		return err
	}
	if s.state.selected == nil {
		return missing("configure script", "a selected strategy")
	}
	s.state.config = &cfg
	s.state.clearAfterConfig()
	s.touchLocked()
	s.logger.Info("script configured",
		logging.Int("target_words", cfg.TargetWordCount),
		logging.Int("parts", cfg.Parts),
		logging.Int("words_per_part", cfg.WordsPerPart()),
		logging.Bool("has_instructions", strings.TrimSpace(cfg.Instructions) != ""),
	)
	return nil
}

// GenerateNextPart writes the next script part in sequence. Requires a
// persona, a selected strategy, and a script configuration.
func (s *Session) GenerateNextPart(ctx context.Context) (stages.ScriptPart, error) {
	var part int
	job, err := s.begin(ctx, stages.StageScript, 0, func(st *state) error {
		if st.dna == nil {
			return missing(stages.StageScript, "a persona")
		}
		if st.selected == nil {
			return missing(stages.StageScript, "a selected strategy")
		}
		if st.config == nil {
			return missing(stages.StageScript, "a script configuration")
		}
		if st.complete() {
			return services.Wrap(services.ErrValidation, stages.StageScript, "generate part",
				fmt.Sprintf("all %d parts are already generated", st.config.Parts), nil)
		}
		part = st.nextPart()
		return nil
	})
	if err != nil {
		return stages.ScriptPart{}, err
	}
	in := stages.ScriptPartInput{
		DNA:          *job.input.dna,
		Topic:        job.input.selected.Title,
		Config:       *job.input.config,
		Part:         part,
		PreviousText: stages.PreviousText(job.input.parts),
	}
	ctx = services.WithPart(job.ctx, part)
	result, err := s.runner.GenerateScriptPart(ctx, in)
	err = s.finish(job, err, func(st *state) {
		st.parts = append(st.parts, result)
	})
	if err != nil {
		return stages.ScriptPart{}, err
	}
	return result, nil
}

// Reset discards all state and any in-flight result.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interruptLocked("reset")
	s.state = state{}
	s.touchLocked()
	s.logger.Info("session reset")
}

// ResetScript discards generated parts, keeping the configuration, so the
// script can be regenerated from part 1.
func (s *Session) ResetScript() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interruptLocked("reset script")
	s.state.clearAfterConfig()
	s.touchLocked()
	s.logger.Info("script reset")
}

// job is a generation that has passed its prerequisite checks.
type job struct {
	ctx    context.Context
	cancel context.CancelFunc
	stage  string
	epoch  uint64
	input  state
	start  time.Time
}

func (s *Session) begin(ctx context.Context, stage string, part int, check func(*state) error) (*job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.idleLocked(stage); err != nil {
		return nil, err
	}
	if err := check(&s.state); err != nil {
		return nil, err
	}
	ctx = services.WithSessionID(ctx, s.id)
	ctx = services.WithStage(ctx, stage)
	ctx = services.WithPart(ctx, part)
	ctx = services.WithRequestID(ctx, uuid.NewString())
	ctx, cancel := context.WithCancel(ctx)
	s.busy = true
	s.cancel = cancel
	return &job{
		ctx:    ctx,
		cancel: cancel,
		stage:  stage,
		epoch:  s.epoch,
		input:  s.state,
		start:  time.Now(),
	}, nil
}

// finish releases the busy flag and, when the epoch still matches and err is
// nil, commits the result.
func (s *Session) finish(j *job, err error, commit func(*state)) error {
	j.cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch == j.epoch {
		s.busy = false
		s.cancel = nil
	}
	logger := logging.WithContext(j.ctx, s.logger)
	elapsed := time.Since(j.start)
	if s.epoch != j.epoch {
		logger.Info("stage result discarded",
			logging.Args(append(logging.DecisionAttrs("stale_result", "discarded", "session changed while generating"),
				logging.Duration("elapsed", elapsed))...)...)
		return ErrDiscarded
	}
	if err != nil {
		logger.Info("stage failed; state unchanged",
			logging.String("error_kind", services.Classify(err)),
			logging.Bool("retryable", services.Retryable(err)),
			logging.Duration("elapsed", elapsed),
		)
		return err
	}
	commit(&s.state)
	s.touchLocked()
	logger.Info("stage committed",
		logging.String("progress", string(s.state.progress())),
		logging.Duration("elapsed", elapsed),
	)
	return nil
}

// interruptLocked cancels any in-flight generation and invalidates its result.
func (s *Session) interruptLocked(reason string) {
	s.epoch++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
		s.logger.Info("in-flight generation cancelled", logging.String("reason", reason))
	}
	s.busy = false
}

func (s *Session) idleLocked(operation string) error {
	if s.busy {
		return services.Wrap(services.ErrBusy, operation, "", "another generation is still running", nil)
	}
	return nil
}

func (s *Session) touchLocked() {
	s.updatedAt = time.Now()
}

func requireTranscript(st *state, stage string) error {
	if st.transcript == nil {
		return missing(stage, "a transcript")
	}
	return nil
}

func missing(operation, what string) error {
	return services.Wrap(services.ErrPrerequisite, operation, "", what+" is required", nil)
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "transcript"
	}
	return name
}
