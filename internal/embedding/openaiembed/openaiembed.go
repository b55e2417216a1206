package openaiembed

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/jordieb/landy/internal/embedding"
	"github.com/jordieb/landy/internal/upstream"
	"github.com/jordieb/landy/pkg/logging"
)

type client struct {
	api    openai.Client
	model  string
	logger *logging.Logger
}

// NewClient returns an Embedder backed by the OpenAI embeddings endpoint.
func NewClient(apiKey string, model string) embedding.Embedder {
	return &client{
		api:    openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		logger: logging.NewLogger("openai_embedding"),
	}
}

func (c *client) Model() string {
	return "openai/" + c.model
}

func (c *client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	})
	if err != nil {
		c.logger.Error("embedding call failed", "error", err)
		return nil, upstream.Classify("openai embeddings", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embeddings: got %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = toFloat32(d.Embedding)
	}
	return vectors, nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}
