package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"scriptdna/internal/generation"
	"scriptdna/internal/logging"
	"scriptdna/internal/services"
)

const jsonMIMEType = "application/json"

// Config captures the settings for the Gemini provider.
type Config struct {
	APIKey    string
	FastModel string
	ProModel  string
}

// Client generates structured text through the Gemini API.
type Client struct {
	cfg    Config
	client *genai.Client
	logger *slog.Logger
}

var _ generation.Generator = (*Client)(nil)

// NewClient builds a Gemini API client.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "gemini", "connect", "api key required", nil)
	}
	if cfg.FastModel == "" {
		cfg.FastModel = cfg.ProModel
	}
	if cfg.ProModel == "" {
		cfg.ProModel = cfg.FastModel
	}
	if cfg.FastModel == "" {
		return nil, services.Wrap(services.ErrConfiguration, "gemini", "connect", "model required", nil)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "gemini", "connect", "create client", err)
	}
	return &Client{cfg: cfg, client: client, logger: logging.NewComponentLogger(logger, "gemini")}, nil
}

// Close is a no-op; the SDK client holds no connection of its own.
func (c *Client) Close() error {
	return nil
}

// Model returns the model name used for tier.
func (c *Client) Model(tier generation.Tier) string {
	if tier == generation.TierPro {
		return c.cfg.ProModel
	}
	return c.cfg.FastModel
}

// Generate sends req to Gemini and returns the concatenated text parts of
// the first candidate that has any.
func (c *Client) Generate(ctx context.Context, req generation.Request) (string, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", services.Wrap(services.ErrValidation, req.Stage, "gemini", "prompt required", nil)
	}
	logging.WithContext(ctx, c.logger).Debug("gemini request",
		logging.String("model", c.Model(req.Tier)),
		logging.Int("thinking_budget", req.ThinkingBudget),
	)
	resp, err := c.client.Models.GenerateContent(ctx, c.Model(req.Tier), genai.Text(prompt), requestConfig(req))
	if err != nil {
		return "", markError(req.Stage, err)
	}
	if reason := blockReason(resp); reason != "" {
		return "", services.Wrap(services.ErrNoContent, req.Stage, "gemini",
			fmt.Sprintf("prompt blocked (%s)", reason), nil)
	}
	text := responseText(resp)
	if text == "" {
		return "", services.Wrap(services.ErrNoContent, req.Stage, "gemini",
			fmt.Sprintf("empty response (finish_reason=%s)", finishReason(resp)), nil)
	}
	return text, nil
}

// HealthCheck asks the fast model for a trivial JSON object.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.Generate(ctx, generation.Request{
		Stage:  "health",
		Tier:   generation.TierFast,
		Prompt: `Respond with {"ok":true}`,
	})
	return err
}

func requestConfig(req generation.Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: jsonMIMEType,
		ResponseSchema:   toGenaiSchema(req.Schema),
	}
	if req.ThinkingBudget > 0 {
		budget := int32(req.ThinkingBudget)
		cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: &budget}
	}
	return cfg
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		var b strings.Builder
		for _, part := range cand.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			b.WriteString(part.Text)
		}
		if text := strings.TrimSpace(b.String()); text != "" {
			return text
		}
	}
	return ""
}

func blockReason(resp *genai.GenerateContentResponse) string {
	if resp == nil || resp.PromptFeedback == nil {
		return ""
	}
	return string(resp.PromptFeedback.BlockReason)
}

func finishReason(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].FinishReason == "" {
		return "none"
	}
	return string(resp.Candidates[0].FinishReason)
}

func markError(stage string, err error) error {
	switch code := apiErrorCode(err); {
	case errors.Is(err, context.DeadlineExceeded):
		return services.Wrap(services.ErrTimeout, stage, "gemini", "", err)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return services.Wrap(services.ErrConfiguration, stage, "gemini", "credentials rejected", err)
	default:
		return services.Wrap(services.ErrTransient, stage, "gemini", "", err)
	}
}

func apiErrorCode(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code
	}
	return 0
}
