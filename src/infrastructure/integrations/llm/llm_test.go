package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{name: "openai", cfg: Config{Provider: "openai", APIKey: "sk-test"}},
		{name: "default provider", cfg: Config{APIKey: "sk-test"}},
		{name: "openai without key", cfg: Config{Provider: "openai"}, wantErr: ErrMissingAPIKey},
		{name: "ollama", cfg: Config{Provider: "ollama", BaseURL: "http://localhost:11434/api"}},
		{name: "ollama default url", cfg: Config{Provider: "Ollama"}},
		{name: "unknown", cfg: Config{Provider: "bard"}, wantErr: ErrUnknownProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			models, err := New(tt.cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, models.Chat)
			assert.NotNil(t, models.Embedder)
		})
	}
}

func TestConfigModelNames(t *testing.T) {
	tests := []struct {
		name          string
		cfg           Config
		wantChat      string
		wantEmbedding string
	}{
		{name: "openai defaults", cfg: Config{Provider: ProviderOpenAI}, wantChat: DefaultOpenAIModel, wantEmbedding: DefaultOpenAIEmbeddingModel},
		{name: "empty provider is openai", cfg: Config{}, wantChat: DefaultOpenAIModel, wantEmbedding: DefaultOpenAIEmbeddingModel},
		{name: "ollama defaults", cfg: Config{Provider: "Ollama"}, wantChat: DefaultOllamaModel, wantEmbedding: DefaultOllamaEmbeddingModel},
		{name: "explicit", cfg: Config{Provider: ProviderOllama, Model: "mistral", EmbeddingModel: "nomic-embed-text"}, wantChat: "mistral", wantEmbedding: "nomic-embed-text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat, embedding := tt.cfg.ModelNames()
			assert.Equal(t, tt.wantChat, chat)
			assert.Equal(t, tt.wantEmbedding, embedding)
		})
	}
}
