package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"scriptdna/internal/generation"
	"scriptdna/internal/jsonrepair"
	"scriptdna/internal/logging"
	"scriptdna/internal/services"
)

const (
	jsonObjectFormat      = "json_object"
	jsonSchemaFormat      = "json_schema"
	defaultBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultHTTPTimeout    = 180 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryAttempts  = 3
)

// jsonOnlySystemPrompt precedes every stage prompt.
const jsonOnlySystemPrompt = "You are a structured writing assistant. Reply with valid JSON only: no prose, no markdown fences."

// Config captures the runtime settings required to talk to OpenRouter.
type Config struct {
	APIKey         string
	BaseURL        string
	FastModel      string
	ProModel       string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// Client wraps the OpenRouter chat completion API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

var _ generation.Generator = (*Client)(nil)

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger routes retry and failure diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRetryMaxAttempts overrides the default retry count (defaults to 3).
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs an OpenRouter client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			FastModel:      strings.TrimSpace(cfg.FastModel),
			ProModel:       strings.TrimSpace(cfg.ProModel),
			Referer:        strings.TrimSpace(cfg.Referer),
			Title:          strings.TrimSpace(cfg.Title),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient:       &http.Client{Timeout: timeout},
		logger:           logging.NewNop(),
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	if client.cfg.ProModel == "" {
		client.cfg.ProModel = client.cfg.FastModel
	}
	if client.cfg.FastModel == "" {
		client.cfg.FastModel = client.cfg.ProModel
	}
	client.logger = logging.NewComponentLogger(client.logger, "openrouter")
	return client
}

// Model returns the model name used for tier.
func (c *Client) Model(tier generation.Tier) string {
	if tier == generation.TierPro {
		return c.cfg.ProModel
	}
	return c.cfg.FastModel
}

// Generate issues one JSON-only chat completion for req and returns the raw
// content produced by the model.
func (c *Client) Generate(ctx context.Context, req generation.Request) (string, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", services.Wrap(services.ErrValidation, req.Stage, "openrouter", "prompt required", nil)
	}
	if c.cfg.APIKey == "" {
		return "", services.Wrap(services.ErrConfiguration, req.Stage, "openrouter", "api key required", nil)
	}
	model := c.Model(req.Tier)
	if model == "" {
		return "", services.Wrap(services.ErrConfiguration, req.Stage, "openrouter", fmt.Sprintf("no model configured for %s tier", req.Tier), nil)
	}
	payload := chatCompletionRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: jsonOnlySystemPrompt},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: responseFormat(req.Stage, req.Schema),
	}
	if req.ThinkingBudget > 0 {
		payload.Reasoning = &reasoningConfig{MaxTokens: req.ThinkingBudget}
	}
	content, err := c.completionContentWithRetry(ctx, payload, "openrouter "+stageLabel(req.Stage))
	if err != nil {
		return "", markError(req.Stage, err)
	}
	return content, nil
}

// HealthCheck issues a fast ping to verify the API key and fast model are usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.cfg.APIKey == "" {
		return services.Wrap(services.ErrConfiguration, "health", "openrouter", "api key required", nil)
	}
	payload := chatCompletionRequest{
		Model: c.cfg.FastModel,
		Messages: []chatMessage{
			{Role: "system", Content: jsonOnlySystemPrompt},
			{Role: "user", Content: `Respond with {"ok":true}`},
		},
		Temperature:    new(float64),
		ResponseFormat: map[string]any{"type": jsonObjectFormat},
	}
	content, err := c.completionContentWithRetry(ctx, payload, "openrouter health")
	if err != nil {
		return markError("health", err)
	}
	var parsed struct {
		OK bool `json:"ok"`
	}
	if err := jsonrepair.Decode(content, &parsed); err != nil {
		return services.Wrap(services.ErrParse, "health", "openrouter", "parse payload", err)
	}
	if !parsed.OK {
		return services.Wrap(services.ErrTransient, "health", "openrouter", "unexpected response", nil)
	}
	return nil
}

// responseFormat maps a schema onto OpenRouter's response_format. Only
// object-rooted schemas can be sent as json_schema; arrays fall back to
// json_object and rely on the prompt for their shape.
func responseFormat(stage string, schema *generation.Schema) map[string]any {
	if schema == nil || schema.Type != generation.TypeObject {
		return map[string]any{"type": jsonObjectFormat}
	}
	return map[string]any{
		"type": jsonSchemaFormat,
		"json_schema": map[string]any{
			"name":   stageLabel(stage) + "_result",
			"schema": schema.JSONSchema(),
		},
	}
}

func stageLabel(stage string) string {
	if stage = strings.TrimSpace(stage); stage != "" {
		return stage
	}
	return "generate"
}

func markError(stage string, err error) error {
	var emptyErr *emptyContentError
	var statusErr *httpStatusError
	switch {
	case errors.As(err, &emptyErr):
		return services.Wrap(services.ErrNoContent, stage, "openrouter", "", err)
	case errors.Is(err, context.DeadlineExceeded):
		return services.Wrap(services.ErrTimeout, stage, "openrouter", "", err)
	case errors.As(err, &statusErr) && (statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden):
		return services.Wrap(services.ErrConfiguration, stage, "openrouter", "credentials rejected", err)
	default:
		return services.Wrap(services.ErrTransient, stage, "openrouter", "", err)
	}
}
