// Package upstream classifies failures from remote model services so callers
// can tell a retryable condition (rate limit, timeout) from a hard one.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	"google.golang.org/genai"
)

var (
	ErrRateLimited = errors.New("upstream rate limited")
	ErrTimeout     = errors.New("upstream timed out")
)

// IsRetryable reports whether err represents a transient upstream failure.
// The pipeline itself never retries; the bot adapter uses this to phrase
// "try again shortly" instead of asking for a bug report.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTimeout)
}

// Classify wraps err with the matching sentinel when it carries a transient
// signature, and returns it unchanged otherwise. Both provider SDKs are
// recognized; which one produced the error depends on configuration.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, ErrTimeout, err)
	}

	var status int
	var openaiErr *openai.Error
	var genaiErr genai.APIError
	switch {
	case errors.As(err, &openaiErr):
		status = openaiErr.StatusCode
	case errors.As(err, &genaiErr):
		status = genaiErr.Code
	}

	switch status {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return fmt.Errorf("%s: %w: %w", op, ErrRateLimited, err)
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return fmt.Errorf("%s: %w: %w", op, ErrTimeout, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}
