// Package generation defines the boundary between the pipeline and the
// structured text generation providers.
//
// A stage describes what it needs as a Request (model tier, prompt, expected
// response shape, optional thinking budget) and receives raw text back. The
// text is untrusted: callers normalise and validate it themselves.
package generation

import "context"

// Tier selects between the cheap, fast model and the slower reasoning model.
type Tier string

const (
	TierFast Tier = "fast"
	TierPro  Tier = "pro"
)

// Request is a single structured generation call.
type Request struct {
	// Stage names the pipeline stage issuing the call, for logs only.
	Stage          string
	Tier           Tier
	Prompt         string
	Schema         *Schema
	ThinkingBudget int
}

// Generator submits a prompt and returns the model's raw text.
//
// Implementations return an error marked with services.ErrNoContent when the
// model produced nothing. An empty string with a nil error is treated the same
// way by callers.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a plain function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
