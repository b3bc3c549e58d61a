package stages

import (
	"context"
	"errors"
	"fmt"

	"scriptdna/internal/services"
)

// Stage names, used in errors, logs, and request metadata.
const (
	StageAnalyze    = "analyze"
	StageDNA        = "dna"
	StageStrategies = "strategies"
	StageScript     = "script"
)

// StageError reports a fatal stage failure. Message is a single human-readable
// line; Err carries the underlying cause for logs and errors.Is checks.
type StageError struct {
	Stage   string
	Part    int
	Message string
	Kind    error
	Err     error
}

func (e *StageError) Error() string {
	if e.Part > 0 {
		return fmt.Sprintf("Failed at part %d: %s", e.Part, e.Message)
	}
	return e.Message
}

func (e *StageError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

type stageMessages struct {
	noText  string
	parse   string
	request string
}

func messagesFor(stage string, part int) stageMessages {
	switch stage {
	case StageAnalyze:
		return stageMessages{"No analysis generated", "Failed to parse analysis results.", "Analysis request failed"}
	case StageDNA:
		return stageMessages{"No DNA extracted from model", "Failed to parse DNA results.", "DNA extraction request failed"}
	case StageStrategies:
		return stageMessages{"No strategies generated", "Failed to parse strategy results.", "Strategy request failed"}
	default:
		return stageMessages{
			fmt.Sprintf("No script generated for part %d", part),
			fmt.Sprintf("Failed to parse script for part %d", part),
			fmt.Sprintf("Script request failed for part %d", part),
		}
	}
}

func noTextError(stage string, part int, cause error) *StageError {
	return &StageError{Stage: stage, Part: part, Message: messagesFor(stage, part).noText, Kind: services.ErrNoContent, Err: cause}
}

func parseError(stage string, part int, cause error) *StageError {
	return &StageError{Stage: stage, Part: part, Message: messagesFor(stage, part).parse, Kind: services.ErrParse, Err: cause}
}

func requestError(stage string, part int, cause error) *StageError {
	kind := services.ErrTransient
	if errors.Is(cause, context.DeadlineExceeded) {
		kind = services.ErrTimeout
	}
	return &StageError{Stage: stage, Part: part, Message: messagesFor(stage, part).request, Kind: kind, Err: cause}
}
