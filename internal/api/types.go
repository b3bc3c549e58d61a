package api

import "scriptdna/internal/pipeline"

// SessionResponse wraps a session snapshot.
type SessionResponse struct {
	Session pipeline.Snapshot `json:"session"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Retryable bool   `json:"retryable"`
}

// SelectStrategyRequest is the body of POST /strategy.
type SelectStrategyRequest struct {
	ID string `json:"id"`
}

// ExportResponse lists files written by POST /export.
type ExportResponse struct {
	Files []string `json:"files"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`
	Sessions int    `json:"sessions"`
	Detail   string `json:"detail,omitempty"`
}
