// The mcp binary serves the QA pipeline over the Model Context Protocol on
// stdio, for agent runtimes that want to ask Landy questions directly.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jordieb/landy/internal/cache"
	"github.com/jordieb/landy/internal/config"
	"github.com/jordieb/landy/internal/mcpserver"
	"github.com/jordieb/landy/internal/providers"
	"github.com/jordieb/landy/internal/qa"
	"github.com/jordieb/landy/internal/qa/prompt"
	"github.com/jordieb/landy/internal/transcript"
	"github.com/jordieb/landy/internal/vectordb"
	"github.com/jordieb/landy/internal/vectordb/qdrantdb"
	"github.com/jordieb/landy/pkg/logging"
)

func main() {
	logging.Init()
	logger := logging.NewLogger("mcp")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := transcript.Connect(ctx, transcript.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		logger.Error("Postgres is offline", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.InitSchema(ctx); err != nil {
		logger.Error("Failed to apply schema", "error", err)
		os.Exit(1)
	}

	embedder, err := providers.NewEmbedder(ctx, cfg)
	if err != nil {
		logger.Error("Embedding provider failed to initialize", "error", err)
		os.Exit(1)
	}
	completer, err := providers.NewCompleter(ctx, cfg)
	if err != nil {
		logger.Error("Chat provider failed to initialize", "error", err)
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

	// Same gate as the bot: a missing index is tolerable, serving vectors
	// from a different embedding model is not.
	if err := index.Verify(ctx); err != nil {
		if !errors.Is(err, vectordb.ErrNoIndex) {
			logger.Error("Vector index is unusable", "error", err)
			os.Exit(1)
		}
		logger.Warn("Vector index is not ready; ask will report it", "error", err)
	}

	var answerCache qa.Cache
	if redisCache, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, config.AnswerCacheTTL); err != nil {
		logger.Warn("Redis is offline, continuing without the answer cache", "error", err)
	} else {
		answerCache = redisCache
		defer redisCache.Close()
	}

	service := qa.NewService(qa.Deps{
		Index:          index,
		Completer:      completer,
		Assembler:      prompt.NewAssembler(cfg.SystemTemplate),
		Store:          transcript.NewStore(db),
		Cache:          answerCache,
		RetrievalK:     cfg.RetrievalK,
		BuildVersion:   cfg.BuildVersion,
		BuildTimestamp: cfg.BuildTimestamp,
	})

	server, err := mcpserver.NewServer(service)
	if err != nil {
		logger.Error("Failed to create the MCP server", "error", err)
		os.Exit(1)
	}

	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("MCP server stopped", "error", err)
		os.Exit(1)
	}
}
