package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jordieb/landy/internal/bot"
	"github.com/jordieb/landy/internal/cache"
	"github.com/jordieb/landy/internal/config"
	"github.com/jordieb/landy/internal/providers"
	"github.com/jordieb/landy/internal/qa"
	"github.com/jordieb/landy/internal/qa/prompt"
	"github.com/jordieb/landy/internal/server"
	"github.com/jordieb/landy/internal/transcript"
	"github.com/jordieb/landy/internal/vectordb"
	"github.com/jordieb/landy/internal/vectordb/qdrantdb"
	"github.com/jordieb/landy/pkg/logging"
)

func main() {
	logging.Init()
	logger := logging.NewLogger("main")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.DiscordToken == "" {
		logger.Error("DISCORD_API_TOKEN is required")
		os.Exit(1)
	}

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	db, err := transcript.Connect(serviceContext, transcript.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		logger.Error("Postgres is offline", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.InitSchema(serviceContext); err != nil {
		logger.Error("Failed to apply schema", "error", err)
		os.Exit(1)
	}

	embedder, err := providers.NewEmbedder(serviceContext, cfg)
	if err != nil {
		logger.Error("Embedding provider failed to initialize", "error", err)
		os.Exit(1)
	}
	completer, err := providers.NewCompleter(serviceContext, cfg)
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

	// The bot serves answers from an index built by the ingest job. A missing
	// index just means /ask reports it until ingest runs; an index built with
	// a different embedding model must never be served.
	if err := index.Verify(serviceContext); err != nil {
		if !errors.Is(err, vectordb.ErrNoIndex) {
			logger.Error("Vector index is unusable", "error", err)
			os.Exit(1)
		}
		logger.Warn("Vector index is not ready; /ask will report it", "error", err)
	}

	// Redis is optional. Without it every question goes through the full
	// pipeline.
	var answerCache qa.Cache
	if redisCache, err := cache.New(serviceContext, cfg.RedisAddr, cfg.RedisPassword, config.AnswerCacheTTL); err != nil {
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

	discordBot, err := bot.New(cfg.DiscordToken, service, cfg.GuildID)
	if err != nil {
		logger.Error("Failed to create the Discord session", "error", err)
		os.Exit(1)
	}
	if err := discordBot.Start(); err != nil {
		logger.Error("Failed to connect to Discord", "error", err)
		os.Exit(1)
	}

	ops := server.New(cfg.OpsListenAddr, func(ctx context.Context) error {
		return db.PingContext(ctx)
	})
	go ops.Run()

	logger.Info("Landy is up", "version", cfg.BuildVersion)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	<-gracefulShutdown

	logger.Info("Shutting down")
	ops.Shutdown()
	if err := discordBot.Stop(); err != nil {
		logger.Error("Failed to close the Discord session", "error", err)
	}
	closeExternalServices()
	logger.Info("Bot stopped")
}
