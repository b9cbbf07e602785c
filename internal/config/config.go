package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Provider names accepted in LLM_PROVIDER / the deployment file.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// EnvVars is the environment-driven configuration. GOOGLE_API_KEY is
// required when the Gemini provider is selected (the default), so a
// process without a credential never starts serving traffic.
type EnvVars struct {
	AppEnv       string        `envconfig:"APP_ENV" default:"dev"`
	Port         int           `envconfig:"PORT" default:"5001"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"120s"`

	LLMProvider string `envconfig:"LLM_PROVIDER" default:"gemini"`

	GoogleAPIKey  string `envconfig:"GOOGLE_API_KEY"`
	GeminiBaseURL string `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta"`
	GeminiModel   string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash-exp"`

	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	OpenAIModel   string `envconfig:"OPENAI_MODEL" default:"gpt-4.1"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// fileOverrides is the optional deployment file shape. Only the fields a
// deployment actually wants to pin need to be present.
type fileOverrides struct {
	Port     int    `yaml:"port"`
	Provider string `yaml:"provider"`
	Gemini   struct {
		BaseURL string `yaml:"base_url"`
		Model   string `yaml:"model"`
	} `yaml:"gemini"`
	OpenAI struct {
		BaseURL string `yaml:"base_url"`
		Model   string `yaml:"model"`
	} `yaml:"openai"`
}

// Config is the resolved service configuration after merging the
// environment with the optional deployment file.
type Config struct {
	AppEnv       string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	Provider string

	GoogleAPIKey  string
	GeminiBaseURL string
	GeminiModel   string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	LogLevel string
}

// APIKey returns the credential for the selected provider.
func (c *Config) APIKey() string {
	if c.Provider == ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.GoogleAPIKey
}

// Load resolves the configuration from the environment and, when file is
// non-empty and exists, from a YAML deployment file layered on top.
// It fails when the selected provider has no API key.
func Load(file string) (*Config, error) {
	var v EnvVars
	if err := envconfig.Process("", &v); err != nil {
		return nil, fmt.Errorf("processing env: %w", err)
	}

	cfg := &Config{
		AppEnv:        v.AppEnv,
		Port:          v.Port,
		ReadTimeout:   v.ReadTimeout,
		WriteTimeout:  v.WriteTimeout,
		Provider:      v.LLMProvider,
		GoogleAPIKey:  v.GoogleAPIKey,
		GeminiBaseURL: v.GeminiBaseURL,
		GeminiModel:   v.GeminiModel,
		OpenAIAPIKey:  v.OpenAIAPIKey,
		OpenAIBaseURL: v.OpenAIBaseURL,
		OpenAIModel:   v.OpenAIModel,
		LogLevel:      v.LogLevel,
	}

	if file != "" {
		if err := applyFile(file, cfg); err != nil {
			return nil, err
		}
	}

	switch cfg.Provider {
	case ProviderGemini:
		if cfg.GoogleAPIKey == "" {
			return nil, fmt.Errorf("GOOGLE_API_KEY not found in environment variables")
		}
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not found in environment variables")
		}
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}

	return cfg, nil
}

func applyFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	var raw fileOverrides
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if raw.Provider != "" {
		cfg.Provider = raw.Provider
	}
	if raw.Gemini.BaseURL != "" {
		cfg.GeminiBaseURL = raw.Gemini.BaseURL
	}
	if raw.Gemini.Model != "" {
		cfg.GeminiModel = raw.Gemini.Model
	}
	if raw.OpenAI.BaseURL != "" {
		cfg.OpenAIBaseURL = raw.OpenAI.BaseURL
	}
	if raw.OpenAI.Model != "" {
		cfg.OpenAIModel = raw.OpenAI.Model
	}
	return nil
}
