// Package config loads, normalizes, and validates ScriptDNA configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENROUTER_API_KEY and GEMINI_API_KEY. The Config type centralizes every knob
// the CLI and HTTP API need: provider credentials and model tiers, script
// defaults, export and log directories.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
