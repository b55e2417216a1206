// The ingest job extracts text from a corpus directory, normalizes and chunks
// it, then builds the Qdrant collection the bot answers from. Run it whenever
// the guides change or the embedding model does.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/jordieb/landy/internal/config"
	"github.com/jordieb/landy/internal/ingest"
	"github.com/jordieb/landy/internal/providers"
	"github.com/jordieb/landy/internal/vectordb/qdrantdb"
	"github.com/jordieb/landy/pkg/logging"
)

func main() {
	logging.Init()
	logger := logging.NewLogger("ingest")

	var (
		corpusDir string
		force     bool
	)
	flag.StringVar(&corpusDir, "corpus", "./corpus", "directory of documents to index")
	flag.BoolVar(&force, "force", false, "drop and rebuild the collection even if a complete index exists")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	docs, err := ingest.LoadCorpus(corpusDir)
	if err != nil {
		logger.Error("Failed to load corpus", "dir", corpusDir, "error", err)
		os.Exit(1)
	}
	if len(docs) == 0 {
		logger.Error("Corpus directory holds no supported documents", "dir", corpusDir)
		os.Exit(1)
	}
	logger.Info("Corpus loaded", "documents", len(docs))

	chunks := ingest.PrepareChunks(docs, cfg.ChunkMaxTokens)
	logger.Info("Corpus chunked", "chunks", len(chunks))

	embedder, err := providers.NewEmbedder(ctx, cfg)
	if err != nil {
		logger.Error("Embedding provider failed to initialize", "error", err)
		os.Exit(1)
	}

	index, err := qdrantdb.New(qdrantdb.Config{
		Host:       cfg.QdrantHost,
		Port:       cfg.QdrantPort,
		UseTLS:     cfg.QdrantUseTLS,
		Collection: cfg.CollectionName,
		Dimension:  uint64(cfg.EmbeddingDim),
	}, embedder)
	if err != nil {
		logger.Error("Qdrant is offline", "error", err)
		os.Exit(1)
	}
	defer index.Close()

	build := index.BuildOrLoad
	if force {
		build = index.Rebuild
	}
	if err := build(ctx, chunks); err != nil {
		logger.Error("Failed to build index", "error", err)
		os.Exit(1)
	}
	logger.Info("Ingest complete", "collection", cfg.CollectionName)
}
