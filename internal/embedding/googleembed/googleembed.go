package googleembed

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/jordieb/landy/internal/embedding"
	"github.com/jordieb/landy/internal/upstream"
	"github.com/jordieb/landy/pkg/logging"
)

type client struct {
	genAi     *genai.Client
	model     string
	dimension int32
	logger    *logging.Logger
}

// NewClient returns an Embedder backed by the Gemini embedding models.
// dimension fixes OutputDimensionality so vectors from different providers
// stay interchangeable in the store.
func NewClient(ctx context.Context, apiKey string, model string, dimension int32) (embedding.Embedder, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("creating gemini embedding client: %w", err)
	}
	return &client{
		genAi:     c,
		model:     model,
		dimension: dimension,
		logger:    logging.NewLogger("google_embedding"),
	}, nil
}

func (c *client) Model() string {
	return "google/" + c.model
}

func (c *client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	result, err := c.genAi.Models.EmbedContent(ctx, c.model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &c.dimension,
		TaskType:             "RETRIEVAL_DOCUMENT",
	})
	if err != nil {
		c.logger.Error("embedding call failed", "error", err)
		return nil, upstream.Classify("gemini embeddings", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, errors.New("gemini embeddings: result count does not match input count")
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, e := range result.Embeddings {
		vectors[i] = e.Values
	}
	return vectors, nil
}
