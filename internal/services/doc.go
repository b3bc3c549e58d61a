// Package services defines shared utilities consumed by the generation stages,
// the pipeline orchestrator, and the model providers.
//
// Key responsibilities:
//   - Context helpers that stamp session IDs, stage names, script part numbers,
//     and correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper so failures can be
//     classified (validation, prerequisite, no content, parse, transient)
//     without string matching.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
