// Package providers selects embedding and chat backends from configuration.
// Both binaries (bot and ingest) need the same selection logic, so it lives
// here rather than in either main.
package providers

import (
	"context"
	"fmt"

	"github.com/jordieb/landy/internal/config"
	"github.com/jordieb/landy/internal/embedding"
	"github.com/jordieb/landy/internal/embedding/googleembed"
	"github.com/jordieb/landy/internal/embedding/openaiembed"
	"github.com/jordieb/landy/internal/llm"
	"github.com/jordieb/landy/internal/llm/gemini"
	"github.com/jordieb/landy/internal/llm/openaichat"
)

func NewEmbedder(ctx context.Context, cfg config.Config) (embedding.Embedder, error) {
	switch cfg.EmbeddingProvider {
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for the %s embedding provider", cfg.EmbeddingProvider)
		}
		return openaiembed.NewClient(cfg.OpenAIAPIKey, cfg.EmbeddingModel), nil
	case config.ProviderGemini:
		if cfg.GoogleAPIKey == "" {
			return nil, fmt.Errorf("GOOGLE_API_KEY is required for the %s embedding provider", cfg.EmbeddingProvider)
		}
		return googleembed.NewClient(ctx, cfg.GoogleAPIKey, cfg.EmbeddingModel, int32(cfg.EmbeddingDim))
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbeddingProvider)
	}
}

func NewCompleter(ctx context.Context, cfg config.Config) (llm.Provider, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for the %s chat provider", cfg.LLMProvider)
		}
		return openaichat.NewClient(cfg.OpenAIAPIKey, cfg.ChatModel, cfg.Temperature), nil
	case config.ProviderGemini:
		if cfg.GoogleAPIKey == "" {
			return nil, fmt.Errorf("GOOGLE_API_KEY is required for the %s chat provider", cfg.LLMProvider)
		}
		return gemini.NewClient(ctx, cfg.GoogleAPIKey, cfg.ChatModel, cfg.Temperature)
	default:
		return nil, fmt.Errorf("unknown chat provider %q", cfg.LLMProvider)
	}
}
