package pipeline

import (
	"time"

	"scriptdna/internal/stages"
	"scriptdna/internal/transcript"
)

// state is the session's mutable data. Fields are nil until produced.
type state struct {
	transcript *transcript.Data
	analysis   *stages.Analysis
	dna        *stages.DNA
	strategies []stages.Strategy
	selected   *stages.Strategy
	config     *stages.ScriptConfig
	parts      []stages.ScriptPart
}

// Each clear drops one stage's output together with everything downstream.

func (s *state) clearAfterTranscript() {
	s.analysis = nil
	s.clearAfterAnalysis()
}

func (s *state) clearAfterAnalysis() {
	s.dna = nil
	s.clearAfterDNA()
}

func (s *state) clearAfterDNA() {
	s.strategies = nil
	s.clearAfterStrategies()
}

func (s *state) clearAfterStrategies() {
	s.selected = nil
	s.clearAfterSelection()
}

func (s *state) clearAfterSelection() {
	s.config = nil
	s.clearAfterConfig()
}

func (s *state) clearAfterConfig() {
	s.parts = nil
}

func (s *state) complete() bool {
	return s.config != nil && len(s.parts) >= s.config.Parts
}

func (s *state) nextPart() int {
	if s.config == nil || s.complete() {
		return 0
	}
	return len(s.parts) + 1
}

// Progress names the furthest stage a session has reached.
type Progress string

const (
	ProgressEmpty      Progress = "empty"
	ProgressIngested   Progress = "ingested"
	ProgressAnalyzed   Progress = "analyzed"
	ProgressDNA        Progress = "dna"
	ProgressStrategies Progress = "strategies"
	ProgressSelected   Progress = "selected"
	ProgressConfigured Progress = "configured"
	ProgressScripting  Progress = "scripting"
	ProgressComplete   Progress = "complete"
)

func (s *state) progress() Progress {
	switch {
	case s.complete():
		return ProgressComplete
	case len(s.parts) > 0:
		return ProgressScripting
	case s.config != nil:
		return ProgressConfigured
	case s.selected != nil:
		return ProgressSelected
	case s.strategies != nil:
		return ProgressStrategies
	case s.dna != nil:
		return ProgressDNA
	case s.analysis != nil:
		return ProgressAnalyzed
	case s.transcript != nil:
		return ProgressIngested
	default:
		return ProgressEmpty
	}
}

// Snapshot is a read-only copy of a session's state.
type Snapshot struct {
	ID               string               `json:"id"`
	Progress         Progress             `json:"progress"`
	Busy             bool                 `json:"busy"`
	Transcript       *transcript.Data     `json:"transcript,omitempty"`
	Analysis         *stages.Analysis     `json:"analysis,omitempty"`
	DNA              *stages.DNA          `json:"dna,omitempty"`
	Strategies       []stages.Strategy    `json:"strategies,omitempty"`
	SelectedStrategy *stages.Strategy     `json:"selectedStrategy,omitempty"`
	Config           *stages.ScriptConfig `json:"config,omitempty"`
	Parts            []stages.ScriptPart  `json:"parts"`
	NextPart         int                  `json:"nextPart"`
	Complete         bool                 `json:"complete"`
	CreatedAt        time.Time            `json:"createdAt"`
	UpdatedAt        time.Time            `json:"updatedAt"`
}

// Topic is the selected strategy's title, or "" before a selection.
func (s Snapshot) Topic() string {
	if s.SelectedStrategy == nil {
		return ""
	}
	return s.SelectedStrategy.Title
}

func (s *state) snapshot() Snapshot {
	snap := Snapshot{
		Progress: s.progress(),
		Parts:    append([]stages.ScriptPart{}, s.parts...),
		NextPart: s.nextPart(),
		Complete: s.complete(),
	}
	if s.transcript != nil {
		data := *s.transcript
		snap.Transcript = &data
	}
	if s.analysis != nil {
		analysis := *s.analysis
		snap.Analysis = &analysis
	}
	if s.dna != nil {
		dna := *s.dna
		snap.DNA = &dna
	}
	if s.strategies != nil {
		snap.Strategies = append([]stages.Strategy{}, s.strategies...)
	}
	if s.selected != nil {
		selected := *s.selected
		snap.SelectedStrategy = &selected
	}
	if s.config != nil {
		cfg := *s.config
		snap.Config = &cfg
	}
	return snap
}
