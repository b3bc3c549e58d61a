// Package pipeline owns a single ScriptDNA session: the parsed transcript and
// every stage result derived from it.
//
// A Session enforces stage prerequisites, clears downstream results when an
// upstream stage is redone, and runs at most one generation at a time. Results
// that arrive after a reset are discarded rather than committed.
package pipeline
