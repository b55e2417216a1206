package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"QDRANT_PORT", "QDRANT_USE_TLS", "EMBEDDING_DIMENSION",
		"CHAT_TEMPERATURE", "CHUNK_MAX_TOKENS", "RETRIEVAL_K",
		"LLM_PROVIDER", "EMBEDDING_PROVIDER", "BUILD_TIMESTAMP",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 6334, cfg.QdrantPort)
	assert.False(t, cfg.QdrantUseTLS)
	assert.Equal(t, 1536, cfg.EmbeddingDim)
	assert.Equal(t, 500, cfg.ChunkMaxTokens)
	assert.Equal(t, 1, cfg.RetrievalK)
	assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
}

func TestLoad_RejectsMalformedValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric port", "QDRANT_PORT", "abc"},
		{"non-numeric dimension", "EMBEDDING_DIMENSION", "lots"},
		{"non-numeric temperature", "CHAT_TEMPERATURE", "warm"},
		{"non-boolean tls flag", "QDRANT_USE_TLS", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.key)
		})
	}
}

func TestLoad_CollectsEveryMalformedValue(t *testing.T) {
	t.Setenv("QDRANT_PORT", "abc")
	t.Setenv("RETRIEVAL_K", "many")

	_, err := Load()
	require.Error(t, err)
	assert.ErrorContains(t, err, "QDRANT_PORT")
	assert.ErrorContains(t, err, "RETRIEVAL_K")
}

func TestLoad_RejectsUnknownProvider(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "cohere")
	_, err := Load()
	require.Error(t, err)
	assert.ErrorContains(t, err, "LLM_PROVIDER")
}
