// Package config handles application configuration using Viper.
// Viper supports YAML files, environment variables, and defaults, merged in priority order.
// Go convention: configuration is loaded into structs, not accessed as raw key-value pairs.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Provider names accepted by llm.document_provider / llm.market_provider.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Config is the root configuration struct. Nested structs organize related settings.
// `mapstructure` tags tell Viper how to map YAML/env keys to struct fields.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	CORS      CORSConfig      `mapstructure:"cors"`
	LLM       LLMConfig       `mapstructure:"llm"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Session   SessionConfig   `mapstructure:"session"`
	Trace     TraceConfig     `mapstructure:"trace"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	MaxUploadMB int64  `mapstructure:"max_upload_mb"`
}

type StorageConfig struct {
	DatabasePath string `mapstructure:"database_path"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LLMConfig struct {
	// DocumentProvider and MarketProvider pick exactly one backend per operation.
	// There is no fallback: one submission is one outbound call.
	DocumentProvider string          `mapstructure:"document_provider"`
	MarketProvider   string          `mapstructure:"market_provider"`
	RequestTimeout   time.Duration   `mapstructure:"request_timeout"`
	RatePerMinute    int             `mapstructure:"rate_per_minute"`
	Gemini           GeminiConfig    `mapstructure:"gemini"`
	Anthropic        AnthropicConfig `mapstructure:"anthropic"`
	OpenAI           OpenAIConfig    `mapstructure:"openai"`
}

type GeminiConfig struct {
	// APIKey may be left empty; the genai SDK then reads GEMINI_API_KEY / GOOGLE_API_KEY.
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type AnthropicConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// OpenAIConfig serves market predictions only, and only with a model that
// searches the web on its own (the *-search-preview family).
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type SessionConfig struct {
	MaxSessions int `mapstructure:"max_sessions"`
}

type TraceConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from a YAML file and environment variables.
// In Go, functions return errors as the last return value; callers must check them.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults: these apply when neither file nor env provides a value
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_mb", 20)
	v.SetDefault("storage.database_path", "./storage/marko.db")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("llm.document_provider", ProviderGemini)
	v.SetDefault("llm.market_provider", ProviderGemini)
	v.SetDefault("llm.request_timeout", 90*time.Second)
	v.SetDefault("llm.rate_per_minute", 30)
	// Every key needs a default, even an empty one: AutomaticEnv only
	// resolves keys Viper already knows, so MARKO_LLM_ANTHROPIC_API_KEY
	// would be ignored without these.
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", "gemini-2.5-flash")
	v.SetDefault("llm.gemini.base_url", "")
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("llm.anthropic.base_url", "")
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", "gpt-4o-search-preview")
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("rate_limit.requests_per_second", 2)
	v.SetDefault("rate_limit.burst", 5)
	v.SetDefault("session.max_sessions", 1000)
	v.SetDefault("trace.enabled", false)
	v.SetDefault("log.level", "info")

	// Read from YAML config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Read config file (ignore "not found"; defaults + env are enough)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Environment variables override everything.
	// MARKO_ prefix + nested keys: MARKO_LLM_GEMINI_MODEL=gemini-2.5-pro → llm.gemini.model
	v.SetEnvPrefix("MARKO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects provider combinations the backends cannot serve.
func (c *Config) Validate() error {
	c.LLM.DocumentProvider = strings.ToLower(strings.TrimSpace(c.LLM.DocumentProvider))
	c.LLM.MarketProvider = strings.ToLower(strings.TrimSpace(c.LLM.MarketProvider))

	switch c.LLM.DocumentProvider {
	case ProviderGemini, ProviderAnthropic:
	case ProviderOpenAI:
		return fmt.Errorf("llm.document_provider: %s cannot read document uploads", ProviderOpenAI)
	default:
		return fmt.Errorf("llm.document_provider: unknown provider %q", c.LLM.DocumentProvider)
	}

	switch c.LLM.MarketProvider {
	case ProviderGemini, ProviderAnthropic:
	case ProviderOpenAI:
		// Chat completions have no search tool; only the search-preview
		// models ground their answers in live web results.
		if !strings.Contains(strings.ToLower(c.LLM.OpenAI.Model), "search") {
			return fmt.Errorf("llm.market_provider: %s needs a web search model such as gpt-4o-search-preview, got %q",
				ProviderOpenAI, c.LLM.OpenAI.Model)
		}
	default:
		return fmt.Errorf("llm.market_provider: unknown provider %q", c.LLM.MarketProvider)
	}

	if c.LLM.RequestTimeout <= 0 {
		return fmt.Errorf("llm.request_timeout must be positive")
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be positive")
	}
	return nil
}

// Address returns the listen address string like "0.0.0.0:8080".
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// MaxUploadBytes converts the configured upload limit to bytes.
func (s ServerConfig) MaxUploadBytes() int64 {
	return s.MaxUploadMB << 20
}
