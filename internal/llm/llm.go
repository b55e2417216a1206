package llm

import (
	"context"

	"github.com/jordieb/landy/internal/qa/prompt"
)

// Provider sends an assembled prompt to a chat/completion model and returns
// the generated text verbatim. Model name and sampling temperature are fixed
// at construction, not per call. Implementations must support the
// system+user two-message structure and must surface rate-limit and timeout
// failures as upstream-classified errors, never swallow them.
type Provider interface {
	Complete(ctx context.Context, messages []prompt.Message) (string, error)
}
