package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// A path inside an empty temp dir: the "not found" error is only ignored
	// when no explicit path was given, so point at a real but minimal file.
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: info\n"), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	if cfg.Server.Address() != "0.0.0.0:8080" {
		t.Errorf("expected default address 0.0.0.0:8080, got %s", cfg.Server.Address())
	}
	if cfg.LLM.DocumentProvider != ProviderGemini || cfg.LLM.MarketProvider != ProviderGemini {
		t.Errorf("expected gemini providers by default, got %s/%s", cfg.LLM.DocumentProvider, cfg.LLM.MarketProvider)
	}
	if cfg.LLM.RequestTimeout != 90*time.Second {
		t.Errorf("expected 90s request timeout, got %s", cfg.LLM.RequestTimeout)
	}
	if cfg.Server.MaxUploadBytes() != 20<<20 {
		t.Errorf("expected 20MB upload limit, got %d", cfg.Server.MaxUploadBytes())
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 9000
llm:
  market_provider: anthropic
  request_timeout: 30s
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	// t.Setenv restores the previous value when the test ends.
	t.Setenv("MARKO_SERVER_PORT", "9191")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	if cfg.Server.Port != 9191 {
		t.Errorf("expected env to override port to 9191, got %d", cfg.Server.Port)
	}
	if cfg.LLM.MarketProvider != ProviderAnthropic {
		t.Errorf("expected market provider anthropic, got %s", cfg.LLM.MarketProvider)
	}
	if cfg.LLM.RequestTimeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %s", cfg.LLM.RequestTimeout)
	}
}

func TestLoad_SecretsFromEnvOnly(t *testing.T) {
	// Keys absent from the file must still resolve from the environment.
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: info\n"), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	t.Setenv("MARKO_LLM_GEMINI_API_KEY", "gm-from-env")
	t.Setenv("MARKO_LLM_ANTHROPIC_API_KEY", "sk-from-env")
	t.Setenv("MARKO_LLM_OPENAI_API_KEY", "oa-from-env")
	t.Setenv("MARKO_LLM_ANTHROPIC_BASE_URL", "http://127.0.0.1:9999")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	if cfg.LLM.Gemini.APIKey != "gm-from-env" {
		t.Errorf("expected gemini key from env, got %q", cfg.LLM.Gemini.APIKey)
	}
	if cfg.LLM.Anthropic.APIKey != "sk-from-env" {
		t.Errorf("expected anthropic key from env, got %q", cfg.LLM.Anthropic.APIKey)
	}
	if cfg.LLM.OpenAI.APIKey != "oa-from-env" {
		t.Errorf("expected openai key from env, got %q", cfg.LLM.OpenAI.APIKey)
	}
	if cfg.LLM.Anthropic.BaseURL != "http://127.0.0.1:9999" {
		t.Errorf("expected anthropic base url from env, got %q", cfg.LLM.Anthropic.BaseURL)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server: ServerConfig{MaxUploadMB: 20},
			LLM: LLMConfig{
				DocumentProvider: ProviderGemini,
				MarketProvider:   ProviderGemini,
				RequestTimeout:   time.Minute,
				OpenAI:           OpenAIConfig{Model: "gpt-4o-search-preview"},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"mixed case provider", func(c *Config) { c.LLM.MarketProvider = " OpenAI " }, false},
		{"openai market without search model", func(c *Config) {
			c.LLM.MarketProvider = ProviderOpenAI
			c.LLM.OpenAI.Model = "gpt-4o"
		}, true},
		{"openai cannot read documents", func(c *Config) { c.LLM.DocumentProvider = ProviderOpenAI }, true},
		{"unknown document provider", func(c *Config) { c.LLM.DocumentProvider = "mistral" }, true},
		{"unknown market provider", func(c *Config) { c.LLM.MarketProvider = "" }, true},
		{"zero timeout", func(c *Config) { c.LLM.RequestTimeout = 0 }, true},
		{"zero upload limit", func(c *Config) { c.Server.MaxUploadMB = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
