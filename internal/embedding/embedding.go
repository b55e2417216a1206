package embedding

import "context"

// Embedder produces fixed-dimension vectors for text. The same embedder (same
// Model value) must be used at index build time and query time; the vector
// store checks this fingerprint before serving queries.
type Embedder interface {
	// Model identifies the provider/model pair, e.g. "openai/text-embedding-3-small".
	Model() string
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
