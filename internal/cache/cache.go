// Package cache keeps an exact-match answer cache in Redis, keyed by the
// normalized form of the question so trivial rephrasings of punctuation and
// casing hit the same entry.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jordieb/landy/internal/textnorm"
	"github.com/jordieb/landy/pkg/logging"
)

const keyPrefix = "landy:answer:"

// AnswerCache stores generated answers with a TTL. A cache hit skips the
// retrieval and completion calls but never the transcript write.
type AnswerCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// New connects to Redis and verifies it responds. A dead Redis at startup is
// an error; the caller decides whether to run without caching.
func New(ctx context.Context, addr, password string, ttl time.Duration) (*AnswerCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:                  addr,
		Password:              password,
		ContextTimeoutEnabled: true,
		ReadTimeout:           5 * time.Second,
		WriteTimeout:          5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis is offline: %w", err)
	}

	return NewWithClient(client, ttl), nil
}

// NewWithClient wraps an existing client; used by tests with miniredis.
func NewWithClient(client *redis.Client, ttl time.Duration) *AnswerCache {
	return &AnswerCache{
		client: client,
		ttl:    ttl,
		logger: logging.NewLogger("answer_cache"),
	}
}

// Get returns the cached answer for question, if any. Cache errors are
// returned but callers treat them as a miss; the cache is never load-bearing.
func (c *AnswerCache) Get(ctx context.Context, question string) (string, bool, error) {
	answer, err := c.client.Get(ctx, cacheKey(question)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		c.logger.Error("cache lookup failed", "error", err)
		return "", false, err
	}
	c.logger.Debug("cache hit")
	return answer, true, nil
}

// Set stores answer under the normalized question for the configured TTL.
func (c *AnswerCache) Set(ctx context.Context, question, answer string) error {
	if err := c.client.Set(ctx, cacheKey(question), answer, c.ttl).Err(); err != nil {
		c.logger.Error("cache store failed", "error", err)
		return err
	}
	return nil
}

func (c *AnswerCache) Close() error {
	return c.client.Close()
}

func cacheKey(question string) string {
	sum := sha256.Sum256([]byte(textnorm.Normalize(question)))
	return keyPrefix + hex.EncodeToString(sum[:])
}
