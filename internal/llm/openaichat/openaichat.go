package openaichat

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/jordieb/landy/internal/llm"
	"github.com/jordieb/landy/internal/qa/prompt"
	"github.com/jordieb/landy/internal/upstream"
	"github.com/jordieb/landy/pkg/logging"
)

type client struct {
	api         openai.Client
	model       string
	temperature float64
	logger      *logging.Logger
}

// NewClient returns a Provider backed by the OpenAI chat completions
// endpoint.
func NewClient(apiKey, model string, temperature float64) llm.Provider {
	return &client{
		api:         openai.NewClient(option.WithAPIKey(apiKey)),
		model:       model,
		temperature: temperature,
		logger:      logging.NewLogger("openai_chat"),
	}
}

func (c *client) Complete(ctx context.Context, messages []prompt.Message) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Temperature: openai.Float(c.temperature),
	}
	for _, m := range messages {
		switch m.Role {
		case prompt.RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		c.logger.Error("completion call failed", "error", err)
		return "", upstream.Classify("openai chat", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai chat: response contained no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
