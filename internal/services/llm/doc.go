// Package llm provides an OpenRouter chat-completions provider for the
// generation pipeline.
//
// Client implements generation.Generator: each Request becomes one JSON-only
// chat completion. The request tier picks between the configured fast and pro
// models, object schemas are forwarded as a json_schema response format, and
// a thinking budget becomes the reasoning token limit.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty completions, and
// network timeouts with exponential backoff (base 1s, max 10s, up to 3
// attempts by default). A Retry-After header overrides the backoff. Context
// cancellation aborts retries immediately.
//
// # Errors
//
// Failures are marked with services sentinels: empty completions with
// ErrNoContent, rejected credentials with ErrConfiguration, timeouts with
// ErrTimeout, and everything else with ErrTransient.
package llm
