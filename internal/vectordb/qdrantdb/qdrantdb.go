package qdrantdb

import (
	"context"
	"fmt"
	"time"

	"github.com/qdrant/go-client/qdrant"

	"github.com/jordieb/landy/internal/embedding"
	"github.com/jordieb/landy/internal/vectordb"
	"github.com/jordieb/landy/pkg/logging"
)

// metaPointID is the reserved point holding the index fingerprint. It is
// written only after every chunk has been upserted, so its presence marks the
// collection as complete; a build that dies midway leaves no meta point and
// the next build starts over instead of trusting a partial index.
const metaPointID = "00000000-0000-0000-0000-000000000001"

const embedBatchSize = 100

type Config struct {
	Host       string
	Port       int
	UseTLS     bool
	Collection string
	Dimension  uint64
}

// pointsClient is the slice of the qdrant client the index uses. The real
// *qdrant.Client satisfies it; tests substitute an in-memory store.
type pointsClient interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	DeleteCollection(ctx context.Context, collectionName string) error
	CreateCollection(ctx context.Context, req *qdrant.CreateCollection) error
	Upsert(ctx context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, req *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Get(ctx context.Context, req *qdrant.GetPoints) ([]*qdrant.RetrievedPoint, error)
	Close() error
}

// Index implements vectordb.Index on a Qdrant collection. It owns the
// embedder so build and query are guaranteed to use the same model.
type Index struct {
	client     pointsClient
	collection string
	dimension  uint64
	embedder   embedding.Embedder
	logger     *logging.Logger
}

func New(cfg Config, embedder embedding.Embedder) (*Index, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant: %w", err)
	}

	return &Index{
		client:     client,
		collection: cfg.Collection,
		dimension:  cfg.Dimension,
		embedder:   embedder,
		logger:     logging.NewLogger("qdrant"),
	}, nil
}

// Close releases the underlying gRPC connection.
func (ix *Index) Close() error {
	return ix.client.Close()
}

// BuildOrLoad loads the persisted collection when it is complete and was
// built with the configured embedding model; otherwise it embeds every chunk
// and rebuilds from scratch. A fingerprint mismatch is an error, not a
// silent rebuild: the operator decides whether to re-ingest.
func (ix *Index) BuildOrLoad(ctx context.Context, chunks []vectordb.Chunk) error {
	exists, err := ix.client.CollectionExists(ctx, ix.collection)
	if err != nil {
		return fmt.Errorf("checking collection %q: %w", ix.collection, err)
	}

	if exists {
		model, complete, err := ix.readFingerprint(ctx)
		if err != nil {
			return err
		}
		if complete {
			if model != ix.embedder.Model() {
				return fmt.Errorf("collection %q built with %q, configured %q: %w",
					ix.collection, model, ix.embedder.Model(), vectordb.ErrEmbedderMismatch)
			}
			ix.logger.Info("Existing index loaded", "collection", ix.collection)
			return nil
		}

		// Incomplete leftover from a failed build. Drop and start over.
		ix.logger.Warn("Discarding incomplete index", "collection", ix.collection)
		if err := ix.client.DeleteCollection(ctx, ix.collection); err != nil {
			return fmt.Errorf("dropping incomplete collection: %w", err)
		}
	}

	return ix.build(ctx, chunks)
}

// Verify reports whether a complete index built with the configured embedding
// model is ready to serve queries. ErrNoIndex means ingest has not run (or a
// build died midway); ErrEmbedderMismatch means the stored vectors came from
// a different model and serving them would silently degrade retrieval.
func (ix *Index) Verify(ctx context.Context) error {
	exists, err := ix.client.CollectionExists(ctx, ix.collection)
	if err != nil {
		return fmt.Errorf("checking collection %q: %w", ix.collection, err)
	}
	if !exists {
		return vectordb.ErrNoIndex
	}

	model, complete, err := ix.readFingerprint(ctx)
	if err != nil {
		return err
	}
	if !complete {
		return fmt.Errorf("collection %q has no fingerprint: %w", ix.collection, vectordb.ErrNoIndex)
	}
	if model != ix.embedder.Model() {
		return fmt.Errorf("collection %q built with %q, configured %q: %w",
			ix.collection, model, ix.embedder.Model(), vectordb.ErrEmbedderMismatch)
	}
	return nil
}

// Rebuild drops any existing collection and indexes the chunks from scratch.
func (ix *Index) Rebuild(ctx context.Context, chunks []vectordb.Chunk) error {
	exists, err := ix.client.CollectionExists(ctx, ix.collection)
	if err != nil {
		return fmt.Errorf("checking collection %q: %w", ix.collection, err)
	}
	if exists {
		if err := ix.client.DeleteCollection(ctx, ix.collection); err != nil {
			return fmt.Errorf("dropping collection %q: %w", ix.collection, err)
		}
	}
	return ix.build(ctx, chunks)
}

func (ix *Index) build(ctx context.Context, chunks []vectordb.Chunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("no chunks to index: %w", vectordb.ErrNoIndex)
	}

	err := ix.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: ix.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     ix.dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("creating collection %q: %w", ix.collection, err)
	}

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		if err := ix.upsertBatch(ctx, chunks[start:end]); err != nil {
			return err
		}
		ix.logger.Debug("Indexed batch", "through", end, "total", len(chunks))
	}

	if err := ix.writeFingerprint(ctx, len(chunks)); err != nil {
		return err
	}
	ix.logger.Info("Index built", "collection", ix.collection, "chunks", len(chunks))
	return nil
}

func (ix *Index) upsertBatch(ctx context.Context, batch []vectordb.Chunk) error {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text
	}

	vectors, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding batch: %w", err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("mismatch: got %d vectors for %d chunks", len(vectors), len(batch))
	}

	points := make([]*qdrant.PointStruct, len(batch))
	for i, c := range batch {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(c.ID),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"content":       c.Text,
				"doc_name":      c.DocName,
				"source_doc_id": c.DocID,
				"chunk_order":   c.Order,
				"token_count":   c.TokenCount,
			}),
		}
	}

	_, err = ix.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: ix.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

// Query embeds the question with the build-time embedder and returns the
// top-k nearest chunks, nearest first.
func (ix *Index) Query(ctx context.Context, question string, k int) ([]vectordb.Match, error) {
	exists, err := ix.client.CollectionExists(ctx, ix.collection)
	if err != nil {
		return nil, fmt.Errorf("checking collection %q: %w", ix.collection, err)
	}
	if !exists {
		return nil, vectordb.ErrNoIndex
	}

	vector, err := ix.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}

	result, err := ix.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: ix.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
		Filter: &qdrant.Filter{
			MustNot: []*qdrant.Condition{
				qdrant.NewMatchBool("meta", true),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("querying qdrant: %w", err)
	}
	if len(result) == 0 {
		return nil, vectordb.ErrNoIndex
	}

	matches := make([]vectordb.Match, len(result))
	for i, hit := range result {
		matches[i] = vectordb.Match{
			Text:    hit.Payload["content"].GetStringValue(),
			DocName: hit.Payload["doc_name"].GetStringValue(),
			Score:   hit.Score,
		}
	}
	return matches, nil
}

func (ix *Index) readFingerprint(ctx context.Context) (model string, complete bool, err error) {
	points, err := ix.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: ix.collection,
		Ids:            []*qdrant.PointId{qdrant.NewID(metaPointID)},
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return "", false, fmt.Errorf("reading index fingerprint: %w", err)
	}
	if len(points) == 0 {
		return "", false, nil
	}
	return points[0].Payload["embedding_model"].GetStringValue(), true, nil
}

func (ix *Index) writeFingerprint(ctx context.Context, chunkCount int) error {
	// Zero vector keeps the meta point out of any cosine top-k; the filter
	// on the "meta" flag excludes it outright.
	_, err := ix.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: ix.collection,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(metaPointID),
				Vectors: qdrant.NewVectors(make([]float32, ix.dimension)...),
				Payload: qdrant.NewValueMap(map[string]any{
					"meta":            true,
					"embedding_model": ix.embedder.Model(),
					"chunk_count":     chunkCount,
					"built_at":        time.Now().UTC().Unix(),
				}),
			},
		},
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("writing index fingerprint: %w", err)
	}
	return nil
}
