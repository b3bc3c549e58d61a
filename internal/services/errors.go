package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrPrerequisite  = errors.New("missing prerequisite")
	ErrBusy          = errors.New("generation in progress")
	ErrNoContent     = errors.New("no content returned")
	ErrParse         = errors.New("malformed model output")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// Kind names used by Classify. Transports map these onto status codes.
const (
	KindValidation    = "validation"
	KindConfiguration = "configuration"
	KindPrerequisite  = "prerequisite"
	KindBusy          = "busy"
	KindNoContent     = "no_content"
	KindParse         = "parse"
	KindTimeout       = "timeout"
	KindTransient     = "transient"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify reports which marker an error carries. Unmarked errors are treated
// as transient so callers may retry them.
func Classify(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrPrerequisite):
		return KindPrerequisite
	case errors.Is(err, ErrBusy):
		return KindBusy
	case errors.Is(err, ErrNoContent):
		return KindNoContent
	case errors.Is(err, ErrParse):
		return KindParse
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	default:
		return KindTransient
	}
}

// Retryable reports whether repeating the failed operation from the last
// checkpoint can succeed without caller changes.
func Retryable(err error) bool {
	switch Classify(err) {
	case KindNoContent, KindParse, KindTimeout, KindTransient:
		return true
	default:
		return false
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
