package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds runtime configuration shared by the server, the demo and the activity worker.
type Config struct {
	// Server
	Port         int    `env:"PORT" envDefault:"8000" validate:"min=1,max=65535"`
	ActivityPort int    `env:"ACTIVITY_PORT" envDefault:"8001" validate:"min=1,max=65535"` // activity worker health
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat    string `env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json text"`

	// HelixDB
	HelixURL     string        `env:"HELIX_URL" envDefault:"http://localhost:6969" validate:"required,url"`
	HelixTimeout time.Duration `env:"HELIX_TIMEOUT" envDefault:"0s"` // 0 disables the client timeout

	// Read cache
	CacheProvider string        `env:"CACHE_PROVIDER" envDefault:"none" validate:"oneof=none redis"`
	RedisAddr     string        `env:"REDIS_ADDR" validate:"required_if=CacheProvider redis"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"30s" validate:"gt=0"`

	// Activity events
	EventsProvider      string `env:"EVENTS_PROVIDER" envDefault:"none" validate:"oneof=none nats"`
	NATSURL             string `env:"NATS_URL" validate:"required_if=EventsProvider nats"`
	EventsSubjectPrefix string `env:"EVENTS_SUBJECT_PREFIX" envDefault:"social" validate:"required"`

	// Embeddings (demo only)
	EmbedderProvider    string `env:"EMBEDDER_PROVIDER" envDefault:"fixed" validate:"oneof=fixed openai"`
	OpenAIKey           string `env:"OPENAI_API_KEY" validate:"required_if=EmbedderProvider openai"`
	EmbeddingModel      string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	EmbeddingDimensions int    `env:"EMBEDDING_DIMENSIONS" envDefault:"5" validate:"min=0"`

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

var validate = validator.New()

// Load reads an optional .env file, then environment variables with defaults, and validates the result.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "err", err)
	}
	return Parse()
}

// Parse reads configuration from the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
