// Package logging assembles structured slog loggers and formatting helpers used
// across ScriptDNA.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so stage code can automatically
// tag log lines with session IDs, stages, script part numbers, and correlation
// IDs. Per-session log files are teed off the main logger and pruned by
// retention. The package also provides a no-op logger for tests and wiring
// code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// data with the same shape as the rest of the system.
package logging
