package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/jordieb/landy/internal/llm"
	"github.com/jordieb/landy/internal/qa/prompt"
	"github.com/jordieb/landy/internal/upstream"
	"github.com/jordieb/landy/pkg/logging"
)

type client struct {
	genAi       *genai.Client
	model       string
	temperature float32
	logger      *logging.Logger
}

// NewClient returns a Provider backed by Gemini. The two-message prompt maps
// onto a system instruction plus a single user turn.
func NewClient(ctx context.Context, apiKey, model string, temperature float64) (llm.Provider, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &client{
		genAi:       c,
		model:       model,
		temperature: float32(temperature),
		logger:      logging.NewLogger("llm_gemini"),
	}, nil
}

func (c *client) Complete(ctx context.Context, messages []prompt.Message) (string, error) {
	var system string
	var user string
	for _, m := range messages {
		if m.Role == prompt.RoleSystem {
			system = m.Content
		} else {
			user = m.Content
		}
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	result, err := c.genAi.Models.GenerateContent(ctx, c.model, genai.Text(user), cfg)
	if err != nil {
		c.logger.Error("completion call failed", "error", err)
		return "", upstream.Classify("gemini chat", err)
	}
	text := result.Text()
	if text == "" {
		return "", errors.New("gemini chat: empty completion")
	}
	return text, nil
}
