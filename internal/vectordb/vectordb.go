package vectordb

import (
	"context"
	"errors"
)

// ErrNoIndex reports that no usable index exists (never built, empty, or the
// backing store is unreachable). Callers surface it as "no answer available"
// rather than answering from an arbitrary chunk.
var ErrNoIndex = errors.New("vector index unavailable")

// ErrEmbedderMismatch reports that the persisted index was built with a
// different embedding model than the one configured now. Querying across
// mismatched embedders silently degrades relevance, so it is an error.
var ErrEmbedderMismatch = errors.New("index was built with a different embedding model")

// Chunk is one bounded-size span of source text, immutable once created.
type Chunk struct {
	ID         string
	DocID      string
	DocName    string
	Order      int
	Text       string
	TokenCount int
}

// Match is one retrieval result, nearest first at position zero.
type Match struct {
	Text    string
	DocName string
	Score   float32
}

// Index builds and queries a persisted similarity index. The index records
// which embedding model produced it; BuildOrLoad skips re-embedding when a
// complete index from the same model already exists, and Verify checks the
// same fingerprint without building anything, so serving binaries can refuse
// to start against an index from the wrong model.
type Index interface {
	BuildOrLoad(ctx context.Context, chunks []Chunk) error
	Verify(ctx context.Context) error
	Query(ctx context.Context, question string, k int) ([]Match, error)
}
