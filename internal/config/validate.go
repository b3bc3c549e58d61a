package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable. Provider credentials are
// checked separately by ValidateProvider so commands that never call a model
// work without them.
func (c *Config) Validate() error {
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateScript(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLLM() error {
	switch c.LLM.Provider {
	case ProviderOpenRouter, ProviderGemini:
	default:
		return fmt.Errorf("llm.provider must be %q or %q, got %q", ProviderOpenRouter, ProviderGemini, c.LLM.Provider)
	}
	if c.LLM.TimeoutSeconds <= 0 {
		return errors.New("llm.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateScript() error {
	if c.Script.TargetWordCount <= 0 {
		return errors.New("script.target_word_count must be positive")
	}
	if c.Script.Parts < 1 || c.Script.Parts > MaxParts {
		return fmt.Errorf("script.parts must be between 1 and %d", MaxParts)
	}
	return nil
}

// ValidateProvider ensures the selected provider has credentials.
func (c *Config) ValidateProvider() error {
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	switch c.LLM.Provider {
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("gemini.api_key is required. Set GEMINI_API_KEY env var or edit %s (create with 'scriptdna config init')", defaultPath)
		}
	default:
		if c.LLM.APIKey == "" {
			return fmt.Errorf("llm.api_key is required. Set OPENROUTER_API_KEY env var or edit %s (create with 'scriptdna config init')", defaultPath)
		}
	}
	return nil
}
