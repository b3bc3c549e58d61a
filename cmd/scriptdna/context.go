package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"scriptdna/internal/config"
	"scriptdna/internal/generation"
	"scriptdna/internal/logging"
	"scriptdna/internal/services/gemini"
	"scriptdna/internal/services/llm"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// provider is a configured generation backend.
type provider struct {
	name      string
	generator generation.Generator
	health    func(context.Context) error
	close     func() error
}

func (p *provider) Close() error {
	if p == nil || p.close == nil {
		return nil
	}
	return p.close()
}

// openProvider builds the generator selected by llm.provider.
func openProvider(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*provider, error) {
	if err := cfg.ValidateProvider(); err != nil {
		return nil, err
	}
	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		g := cfg.GetGemini()
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:    g.APIKey,
			FastModel: g.FastModel,
			ProModel:  g.ProModel,
		}, logger)
		if err != nil {
			return nil, err
		}
		return &provider{
			name:      config.ProviderGemini,
			generator: client,
			health:    client.HealthCheck,
			close:     client.Close,
		}, nil
	case config.ProviderOpenRouter:
		or := cfg.GetOpenRouter()
		client := llm.NewClient(llm.Config{
			APIKey:         or.APIKey,
			BaseURL:        or.BaseURL,
			FastModel:      or.FastModel,
			ProModel:       or.ProModel,
			Referer:        or.Referer,
			Title:          or.Title,
			TimeoutSeconds: or.TimeoutSeconds,
		}, llm.WithLogger(logger), llm.WithRetryMaxAttempts(or.RetryAttempts))
		return &provider{
			name:      config.ProviderOpenRouter,
			generator: client,
			health:    client.HealthCheck,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.LLM.Provider)
	}
}

func commandLogger(cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
