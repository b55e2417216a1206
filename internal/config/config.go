package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Server and client timeouts shared across the process.
const (
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 10 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	PipelineTimeout = 60 * time.Second
	DatabaseTimeout = 10 * time.Second

	QdrantConnectionTimeout = 30 * time.Second

	// Per-user ask limits. Discord interactions are cheap; LLM calls are not.
	AskRatePerMinute = 4
	AskBurst         = 2

	AnswerCacheTTL = 24 * time.Hour
)

// Provider names recognized for LLM_PROVIDER / EMBEDDING_PROVIDER.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config carries every tunable the pipeline recognizes, loaded once at
// startup. Fields are plain values so tests can construct one literally.
type Config struct {
	// Discord
	DiscordToken string
	GuildID      string // empty registers the command globally

	// Relational store
	DatabaseURL string

	// Answer cache
	RedisAddr     string
	RedisPassword string

	// Vector store
	QdrantHost     string
	QdrantPort     int
	QdrantUseTLS   bool
	CollectionName string

	// Models
	LLMProvider       string
	EmbeddingProvider string
	ChatModel         string
	EmbeddingModel    string
	EmbeddingDim      int
	Temperature       float64

	// OpenAI / Google credentials
	OpenAIAPIKey string
	GoogleAPIKey string

	// Retrieval
	ChunkMaxTokens int
	RetrievalK     int

	// Prompt
	SystemTemplate string // empty means the built-in versioned template

	// Ops server
	OpsListenAddr string

	// Provenance stamped onto every transcript row
	BuildVersion   string
	BuildTimestamp time.Time
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first, matching how the bot is run in development.
func Load() (Config, error) {
	_ = godotenv.Load()

	var env envParser
	cfg := Config{
		DiscordToken:      os.Getenv("DISCORD_API_TOKEN"),
		GuildID:           os.Getenv("DISCORD_GUILD_ID"),
		DatabaseURL:       os.Getenv("DB_URI"),
		RedisAddr:         envOr("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		QdrantHost:        envOr("QDRANT_HOST", "127.0.0.1"),
		QdrantPort:        env.intOr("QDRANT_PORT", 6334),
		QdrantUseTLS:      env.boolOr("QDRANT_USE_TLS", false),
		CollectionName:    envOr("VECTOR_COLLECTION", "landy-docs"),
		LLMProvider:       envOr("LLM_PROVIDER", ProviderOpenAI),
		EmbeddingProvider: envOr("EMBEDDING_PROVIDER", ProviderOpenAI),
		ChatModel:         envOr("CHAT_MODEL", "gpt-4o"),
		EmbeddingModel:    envOr("EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingDim:      env.intOr("EMBEDDING_DIMENSION", 1536),
		Temperature:       env.floatOr("CHAT_TEMPERATURE", 0.9),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		GoogleAPIKey:      os.Getenv("GOOGLE_API_KEY"),
		ChunkMaxTokens:    env.intOr("CHUNK_MAX_TOKENS", 500),
		RetrievalK:        env.intOr("RETRIEVAL_K", 1),
		SystemTemplate:    os.Getenv("SYSTEM_TEMPLATE"),
		OpsListenAddr:     envOr("OPS_LISTEN_ADDR", ":3000"),
		BuildVersion:      envOr("BUILD_VERSION", "dev"),
		BuildTimestamp:    time.Now().UTC(),
	}

	if ts := os.Getenv("BUILD_TIMESTAMP"); ts != "" {
		parsed, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return Config{}, fmt.Errorf("invalid BUILD_TIMESTAMP: %w", err)
		}
		cfg.BuildTimestamp = parsed
	}

	if err := env.err(); err != nil {
		return Config{}, err
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.RetrievalK < 1 {
		return errors.New("RETRIEVAL_K must be at least 1")
	}
	if c.ChunkMaxTokens < 1 {
		return errors.New("CHUNK_MAX_TOKENS must be at least 1")
	}
	switch c.LLMProvider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	switch c.EmbeddingProvider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unknown EMBEDDING_PROVIDER %q", c.EmbeddingProvider)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envParser collects parse failures instead of silently falling back, so a
// typo like QDRANT_PORT=abc fails Load loudly rather than connecting to the
// default port.
type envParser struct {
	errs []error
}

func (p *envParser) err() error {
	return errors.Join(p.errs...)
}

func (p *envParser) bad(key, value string, err error) {
	p.errs = append(p.errs, fmt.Errorf("invalid %s=%q: %w", key, value, err))
}

func (p *envParser) intOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.bad(key, v, err)
		return fallback
	}
	return n
}

func (p *envParser) floatOr(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.bad(key, v, err)
		return fallback
	}
	return f
}

func (p *envParser) boolOr(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.bad(key, v, err)
		return fallback
	}
	return b
}
