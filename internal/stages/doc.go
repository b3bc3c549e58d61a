// Package stages implements the four generation stages of the pipeline:
// transcript analysis, persona DNA extraction, strategy brainstorming, and
// script part writing.
//
// Every stage is split into a pure request builder (BuildXRequest), a pure
// response parser (ParseX), and a Runner method that sends the request through
// an injected generation.Generator. Parsers never trust the model: responses
// are normalised by jsonrepair, missing fields fall back to defaults, and
// wrapper shapes are recognised by an ordered list of extraction rules.
//
// Failures surface as *StageError values whose Error text is a single line
// safe to show to a user. The raw model output only ever reaches the logs.
package stages
