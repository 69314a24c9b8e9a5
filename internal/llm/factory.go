package llm

import (
	"context"
	"fmt"

	"github.com/Takita08/Marko-Docu-Ai/internal/config"
)

// New builds the client for one provider name from config.
// Swapping a provider is a config change (llm.document_provider /
// llm.market_provider), not a code change.
func New(ctx context.Context, cfg config.LLMConfig, provider string) (Client, error) {
	switch provider {
	case config.ProviderGemini:
		return NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.BaseURL)
	case config.ProviderAnthropic:
		if cfg.Anthropic.APIKey == "" {
			return nil, fmt.Errorf("llm.anthropic.api_key is not set")
		}
		return NewAnthropicClient(cfg.Anthropic.APIKey, cfg.Anthropic.Model, cfg.Anthropic.BaseURL), nil
	case config.ProviderOpenAI:
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("llm.openai.api_key is not set")
		}
		return NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", provider)
	}
}

// Pair holds the backend chosen for each adapter operation. Both fields may
// point at the same client when one provider serves both.
type Pair struct {
	Document Client
	Market   Client
}

// NewPair builds the document and market clients, sharing one instance when
// the same provider is configured for both.
func NewPair(ctx context.Context, cfg config.LLMConfig) (*Pair, error) {
	doc, err := New(ctx, cfg, cfg.DocumentProvider)
	if err != nil {
		return nil, fmt.Errorf("document provider: %w", err)
	}
	if cfg.MarketProvider == cfg.DocumentProvider {
		return &Pair{Document: doc, Market: doc}, nil
	}
	market, err := New(ctx, cfg, cfg.MarketProvider)
	if err != nil {
		return nil, fmt.Errorf("market provider: %w", err)
	}
	return &Pair{Document: doc, Market: market}, nil
}
