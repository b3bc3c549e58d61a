package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"scriptdna/internal/config"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"OPENROUTER_API_KEY", "GEMINI_API_KEY", "API_KEY"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaultConfigUsesEnvKeyAndExpandsPaths(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENROUTER_API_KEY", "or-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLogs := filepath.Join(tempHome, ".local", "share", "scriptdna", "logs")
	if cfg.Paths.LogDir != wantLogs {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogs)
	}
	if cfg.LLM.APIKey != "or-key" {
		t.Fatalf("expected API key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.Provider != config.ProviderOpenRouter {
		t.Fatalf("unexpected provider %q", cfg.LLM.Provider)
	}
	if cfg.Script.TargetWordCount != 2000 || cfg.Script.Parts != 5 {
		t.Fatalf("unexpected script defaults %+v", cfg.Script)
	}
	if cfg.API.Bind != "127.0.0.1:7488" {
		t.Fatalf("unexpected api bind: %q", cfg.API.Bind)
	}
	if err := cfg.ValidateProvider(); err != nil {
		t.Fatalf("expected provider to validate, got %v", err)
	}
}

func TestLoadCustomConfigOverrides(t *testing.T) {
	clearProviderEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("GEMINI_API_KEY", "gem-key")

	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := `
[paths]
export_dir = "~/scripts"

[llm]
provider = " Gemini "

[script]
target_word_count = 900
parts = 3
instructions = "  Keep it punchy.  "

[logging]
format = "JSON"
level = "DEBUG"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected explicit config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.ExportDir != filepath.Join(tempHome, "scripts") {
		t.Fatalf("unexpected export dir %q", cfg.Paths.ExportDir)
	}
	if cfg.LLM.Provider != config.ProviderGemini {
		t.Fatalf("expected gemini provider, got %q", cfg.LLM.Provider)
	}
	if cfg.Gemini.APIKey != "gem-key" {
		t.Fatalf("expected gemini key from env, got %q", cfg.Gemini.APIKey)
	}
	if cfg.Script.Parts != 3 || cfg.Script.TargetWordCount != 900 || cfg.Script.Instructions != "Keep it punchy." {
		t.Fatalf("unexpected script section %+v", cfg.Script)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging section %+v", cfg.Logging)
	}
}

func TestGeminiKeyFallsBackToAPIKeyEnv(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("API_KEY", "legacy-key")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Gemini.APIKey != "legacy-key" {
		t.Fatalf("expected API_KEY fallback, got %q", cfg.Gemini.APIKey)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"provider", func(c *config.Config) { c.LLM.Provider = "ollama" }, "llm.provider"},
		{"too many parts", func(c *config.Config) { c.Script.Parts = 21 }, "script.parts"},
		{"zero parts", func(c *config.Config) { c.Script.Parts = 0 }, "script.parts"},
		{"words", func(c *config.Config) { c.Script.TargetWordCount = -5 }, "script.target_word_count"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %s error, got %v", tc.want, err)
			}
		})
	}
}

func TestValidateProviderRequiresKey(t *testing.T) {
	cfg := config.Default()
	if err := cfg.ValidateProvider(); err == nil || !strings.Contains(err.Error(), "OPENROUTER_API_KEY") {
		t.Fatalf("expected missing openrouter key error, got %v", err)
	}
	cfg.LLM.Provider = config.ProviderGemini
	if err := cfg.ValidateProvider(); err == nil || !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Fatalf("expected missing gemini key error, got %v", err)
	}
}

func TestSampleConfigParsesAndValidates(t *testing.T) {
	var cfg config.Config
	if err := toml.Unmarshal([]byte(config.SampleConfig()), &cfg); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config does not validate: %v", err)
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[llm]") {
		t.Fatalf("sample missing llm section: %s", data)
	}
}

func TestEncodeMasksSecrets(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.APIKey = "sk-or-1234567890abcdef"
	out, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if strings.Contains(out, "1234567890") {
		t.Fatalf("expected key to be masked, got %s", out)
	}
	if !strings.Contains(out, "sk-o****cdef") {
		t.Fatalf("expected masked key, got %s", out)
	}
}
