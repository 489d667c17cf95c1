package llm

import (
	"context"
	"fmt"

	"github.com/mahmoud-mohsen97/Chat-Agents/llms/goopenai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"
)

// Provider names accepted by NewModel.
const (
	ProviderOpenAI       = "openai"
	ProviderGoogleAI     = "googleai"
	ProviderOpenAINative = "openai-native"
)

// ProviderConfig selects and configures a model provider.
type ProviderConfig struct {
	Provider       string
	Model          string
	APIKey         string
	BaseURL        string
	EmbeddingModel string
}

// NewModel builds the chat model for cfg.Provider.
func NewModel(ctx context.Context, cfg ProviderConfig) (llms.Model, error) {
	switch cfg.Provider {
	case ProviderOpenAI, "":
		return newLangchainOpenAI(cfg)
	case ProviderGoogleAI:
		return newGoogleAI(ctx, cfg)
	case ProviderOpenAINative:
		opts := []goopenai.Option{goopenai.WithAPIKey(cfg.APIKey)}
		if cfg.Model != "" {
			opts = append(opts, goopenai.WithModel(cfg.Model))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, goopenai.WithBaseURL(cfg.BaseURL))
		}
		return goopenai.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}

// NewEmbedder builds the embedder used by the vector index. The native OpenAI
// provider shares the langchaingo OpenAI embedding client.
func NewEmbedder(ctx context.Context, cfg ProviderConfig) (embeddings.Embedder, error) {
	var (
		client embeddings.EmbedderClient
		err    error
	)
	switch cfg.Provider {
	case ProviderGoogleAI:
		client, err = newGoogleAI(ctx, cfg)
	case ProviderOpenAI, ProviderOpenAINative, "":
		client, err = newLangchainOpenAI(cfg)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return embeddings.NewEmbedder(client)
}

func newLangchainOpenAI(cfg ProviderConfig) (*openai.LLM, error) {
	var opts []openai.Option
	if cfg.APIKey != "" {
		opts = append(opts, openai.WithToken(cfg.APIKey))
	}
	if cfg.Model != "" {
		opts = append(opts, openai.WithModel(cfg.Model))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	if cfg.EmbeddingModel != "" {
		opts = append(opts, openai.WithEmbeddingModel(cfg.EmbeddingModel))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI: %w", err)
	}
	return llm, nil
}

func newGoogleAI(ctx context.Context, cfg ProviderConfig) (*googleai.GoogleAI, error) {
	opts := []googleai.Option{googleai.WithAPIKey(cfg.APIKey)}
	if cfg.Model != "" {
		opts = append(opts, googleai.WithDefaultModel(cfg.Model))
	}
	if cfg.EmbeddingModel != "" {
		opts = append(opts, googleai.WithDefaultEmbeddingModel(cfg.EmbeddingModel))
	}
	llm, err := googleai.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google AI: %w", err)
	}
	return llm, nil
}
