package llm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"

	DefaultOpenAIModel          = "gpt-3.5-turbo"
	DefaultOpenAIEmbeddingModel = "text-embedding-3-small"
	DefaultOllamaModel          = "llama3"
	DefaultOllamaEmbeddingModel = "all-minilm"
)

var (
	ErrUnknownProvider = errors.New("unknown llm provider")
	ErrMissingAPIKey   = errors.New("openai api key is not set")
)

// Config selects the chat and embedding models.
type Config struct {
	Provider       string
	Model          string
	EmbeddingModel string
	BaseURL        string
	APIKey         string
}

// Models bundles the chat model with the embedder built for the same
// provider.
type Models struct {
	Chat     llms.Model
	Embedder embeddings.Embedder
}

// New builds chat and embedding models for cfg.Provider.
func New(cfg Config) (*Models, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI, "":
		return newOpenAI(cfg)
	case ProviderOllama:
		return newOllama(cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
}

func newOpenAI(cfg Config) (*Models, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	model := orDefault(cfg.Model, DefaultOpenAIModel)
	embeddingModel := orDefault(cfg.EmbeddingModel, DefaultOpenAIEmbeddingModel)

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(model),
		openai.WithEmbeddingModel(embeddingModel),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai embedder: %w", err)
	}

	return &Models{Chat: client, Embedder: embedder}, nil
}

func newOllama(cfg Config) (*Models, error) {
	serverURL := strings.TrimSuffix(strings.TrimSuffix(cfg.BaseURL, "/"), "/api")

	chatOpts := []ollama.Option{ollama.WithModel(orDefault(cfg.Model, DefaultOllamaModel))}
	embedOpts := []ollama.Option{ollama.WithModel(orDefault(cfg.EmbeddingModel, DefaultOllamaEmbeddingModel))}
	if serverURL != "" {
		chatOpts = append(chatOpts, ollama.WithServerURL(serverURL))
		embedOpts = append(embedOpts, ollama.WithServerURL(serverURL))
	}

	chat, err := ollama.New(chatOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama chat client: %w", err)
	}
	embedClient, err := ollama.New(embedOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama embedding client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(embedClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama embedder: %w", err)
	}

	return &Models{Chat: chat, Embedder: embedder}, nil
}

// ModelNames returns the chat and embedding model names New will use,
// defaults included.
func (cfg Config) ModelNames() (chat, embedding string) {
	if strings.EqualFold(cfg.Provider, ProviderOllama) {
		return orDefault(cfg.Model, DefaultOllamaModel), orDefault(cfg.EmbeddingModel, DefaultOllamaEmbeddingModel)
	}
	return orDefault(cfg.Model, DefaultOpenAIModel), orDefault(cfg.EmbeddingModel, DefaultOpenAIEmbeddingModel)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
