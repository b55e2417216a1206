package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*AnswerCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewWithClient(client, ttl)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestAnswerCache_SetGet(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)
	ctx := context.Background()

	_, hit, err := c.Get(ctx, "how do I awaken?")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "how do I awaken?", "at level 50"))

	answer, hit, err := c.Get(ctx, "how do I awaken?")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "at level 50", answer)
}

func TestAnswerCache_NormalizedKey(t *testing.T) {
	// Rephrasings that normalize identically share one entry.
	c, _ := newTestCache(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "How do I awaken?", "at level 50"))

	answer, hit, err := c.Get(ctx, "how do i AWAKEN!!")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "at level 50", answer)
}

func TestAnswerCache_TTLExpiry(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "question", "answer"))

	mr.FastForward(2 * time.Minute)

	_, hit, err := c.Get(ctx, "question")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestAnswerCache_DistinctQuestions(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "what is fatigue?", "a daily limit"))

	_, hit, err := c.Get(ctx, "what are epics?")
	require.NoError(t, err)
	assert.False(t, hit)
}
