package app

import (
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/openai/openai-go/v3"

	"helix-social/internal/cache"
	"helix-social/internal/config"
	"helix-social/internal/embeddings"
	"helix-social/internal/events"
	"helix-social/internal/helix"
	"helix-social/internal/logger"
	"helix-social/internal/metrics"
	"helix-social/internal/relay"
	"helix-social/internal/walkthrough"
)

// Deps bundles the runtime dependencies of the HTTP facade.
type Deps struct {
	Config config.Config
	Log    *slog.Logger
	// Helix is the query client handlers call; in the server it is a relay around the raw client.
	Helix   helix.Querier
	Metrics *metrics.Collector

	closers []func() error
}

// DemoDeps bundles what the scripted walkthrough needs.
type DemoDeps struct {
	Config   config.Config
	Log      *slog.Logger
	Helix    helix.Querier
	Embedder embeddings.Embedder
}

// ActivityDeps bundles what the activity tail worker needs.
type ActivityDeps struct {
	Config     config.Config
	Log        *slog.Logger
	Subscriber events.Subscriber

	closers []func() error
}

// Close releases connections opened by Build.
func (d Deps) Close() { closeAll(d.Log, d.closers) }

// Close releases connections opened by BuildActivity.
func (d ActivityDeps) Close() { closeAll(d.Log, d.closers) }

// Build loads env, config, and the facade's shared components.
func Build() (Deps, error) {
	cfg, log, err := loadBase()
	if err != nil {
		return Deps{}, err
	}

	var closers []func() error
	c, err := buildCache(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize cache: %w", err)
	}
	closers = append(closers, c.Close)

	pub, nc, err := buildPublisher(cfg, log)
	if err != nil {
		closeAll(log, closers)
		return Deps{}, fmt.Errorf("failed to initialize events: %w", err)
	}
	if nc != nil {
		closers = append(closers, func() error { nc.Close(); return nil })
	}

	var m *metrics.Collector
	opts := []relay.Option{relay.WithCache(c, cfg.CacheTTL), relay.WithPublisher(pub)}
	if cfg.MetricsEnabled {
		m = metrics.NewCollector("helix_social")
		opts = append(opts, relay.WithMetrics(m))
	}

	return Deps{
		Config:  cfg,
		Log:     log,
		Helix:   relay.New(buildHelix(cfg, log), log, opts...),
		Metrics: m,
		closers: closers,
	}, nil
}

// BuildDemo loads config and builds the raw client plus an embedder for the walkthrough.
func BuildDemo() (DemoDeps, error) {
	cfg, log, err := loadBase()
	if err != nil {
		return DemoDeps{}, err
	}
	emb, err := buildEmbedder(cfg, log)
	if err != nil {
		return DemoDeps{}, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	return DemoDeps{
		Config:   cfg,
		Log:      log,
		Helix:    buildHelix(cfg, log),
		Embedder: emb,
	}, nil
}

// BuildActivity loads config and connects the event subscriber.
func BuildActivity() (ActivityDeps, error) {
	cfg, log, err := loadBase()
	if err != nil {
		return ActivityDeps{}, err
	}
	if cfg.EventsProvider != "nats" {
		return ActivityDeps{}, fmt.Errorf("activity worker requires EVENTS_PROVIDER=nats, got %q", cfg.EventsProvider)
	}
	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return ActivityDeps{}, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return ActivityDeps{
		Config:     cfg,
		Log:        log,
		Subscriber: events.NewNATS(log, nc, cfg.EventsSubjectPrefix),
		closers:    []func() error{func() error { nc.Close(); return nil }},
	}, nil
}

func loadBase() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, logger.New(cfg.LogLevel, cfg.LogFormat), nil
}

func buildHelix(cfg config.Config, log *slog.Logger) *helix.Client {
	log.Info("using HelixDB", "url", cfg.HelixURL, "timeout", cfg.HelixTimeout)
	return helix.NewClient(cfg.HelixURL, helix.WithTimeout(cfg.HelixTimeout))
}

func buildCache(cfg config.Config, log *slog.Logger) (cache.Cache, error) {
	switch cfg.CacheProvider {
	case "none":
		return cache.NewNoOpCache(), nil
	case "redis":
		c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		log.Info("using Redis read cache", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
		return c, nil
	default:
		return nil, fmt.Errorf("invalid CACHE_PROVIDER: %s (valid options: none, redis)", cfg.CacheProvider)
	}
}

func buildPublisher(cfg config.Config, log *slog.Logger) (events.Publisher, *nats.Conn, error) {
	switch cfg.EventsProvider {
	case "none":
		return events.NoOpPublisher{}, nil, nil
	case "nats":
		nc, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("publishing activity events to NATS", "prefix", cfg.EventsSubjectPrefix)
		return events.NewNATS(log, nc, cfg.EventsSubjectPrefix), nc, nil
	default:
		return nil, nil, fmt.Errorf("invalid EVENTS_PROVIDER: %s (valid options: none, nats)", cfg.EventsProvider)
	}
}

func buildEmbedder(cfg config.Config, log *slog.Logger) (embeddings.Embedder, error) {
	switch cfg.EmbedderProvider {
	case "fixed":
		return walkthrough.DemoVectors(), nil
	case "openai":
		e, err := embeddings.NewOpenAIEmbedder(cfg.OpenAIKey, openai.EmbeddingModel(cfg.EmbeddingModel), cfg.EmbeddingDimensions)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI embedder: %w", err)
		}
		log.Info("using OpenAI embedder", "model", cfg.EmbeddingModel, "dimensions", cfg.EmbeddingDimensions)
		return e, nil
	default:
		return nil, fmt.Errorf("invalid EMBEDDER_PROVIDER: %s (valid options: fixed, openai)", cfg.EmbedderProvider)
	}
}

func closeAll(log *slog.Logger, closers []func() error) {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil && log != nil {
			log.Warn("close failed", "err", err)
		}
	}
}
