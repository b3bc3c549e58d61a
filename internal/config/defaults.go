package config

const (
	defaultConfigPath      = "~/.config/scriptdna/config.toml"
	projectConfigName      = "scriptdna.toml"
	defaultLogDir          = "~/.local/share/scriptdna/logs"
	defaultExportDir       = "~/.local/share/scriptdna/exports"
	defaultLogRetention    = 30
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultAPIBind         = "127.0.0.1:7488"
	defaultBaseURL         = "https://openrouter.ai/api/v1/chat/completions"
	defaultFastModel       = "google/gemini-2.5-flash"
	defaultProModel        = "google/gemini-2.5-pro"
	defaultReferer         = "https://github.com/scriptdna/scriptdna"
	defaultTitle           = "ScriptDNA"
	defaultTimeoutSeconds  = 180
	defaultRetryAttempts   = 3
	defaultGeminiFastModel = "gemini-2.5-flash"
	defaultGeminiProModel  = "gemini-2.5-pro"
	defaultTargetWordCount = 2000
	defaultParts           = 5
	defaultNtfyTimeout     = 10

	// ProviderOpenRouter routes generation through the OpenRouter chat API.
	ProviderOpenRouter = "openrouter"
	// ProviderGemini routes generation through the Google Gemini API.
	ProviderGemini = "gemini"

	// MaxParts is the largest part count a script may be split into.
	MaxParts = 20
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:    defaultLogDir,
			ExportDir: defaultExportDir,
		},
		LLM: LLM{
			Provider:       ProviderOpenRouter,
			BaseURL:        defaultBaseURL,
			FastModel:      defaultFastModel,
			ProModel:       defaultProModel,
			Referer:        defaultReferer,
			Title:          defaultTitle,
			TimeoutSeconds: defaultTimeoutSeconds,
			RetryAttempts:  defaultRetryAttempts,
		},
		Gemini: Gemini{
			FastModel: defaultGeminiFastModel,
			ProModel:  defaultGeminiProModel,
		},
		Script: Script{
			TargetWordCount: defaultTargetWordCount,
			Parts:           defaultParts,
		},
		API: API{
			Bind: defaultAPIBind,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetention,
		},
	}
}
