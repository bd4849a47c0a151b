// Package relay decorates a helix.Querier with metrics, an optional read cache and activity
// events. Whatever it returns is a response the upstream querier produced.
//
// With a cache configured, a cache hit answers a read without calling the upstream querier:
// the bytes returned were produced by HelixDB for the same query and parameters earlier,
// after the most recent write made through this relay. Without a cache every call is forwarded.
package relay

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"helix-social/internal/cache"
	"helix-social/internal/events"
	"helix-social/internal/helix"
	"helix-social/internal/metrics"
	"helix-social/internal/social"
)

const (
	publishAttempts = 3
	publishBackoff  = 100 * time.Millisecond
)

// Relay is a helix.Querier.
type Relay struct {
	upstream  helix.Querier
	log       *slog.Logger
	cache     cache.Cache
	cacheTTL  time.Duration
	publisher events.Publisher
	metrics   *metrics.Collector
}

var _ helix.Querier = (*Relay)(nil)

type Option func(*Relay)

// WithCache caches read-only query results for ttl.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(r *Relay) {
		r.cache = c
		r.cacheTTL = ttl
	}
}

// WithPublisher emits an event after every successful write.
func WithPublisher(p events.Publisher) Option {
	return func(r *Relay) { r.publisher = p }
}

// WithMetrics records query outcomes and latency.
func WithMetrics(m *metrics.Collector) Option {
	return func(r *Relay) { r.metrics = m }
}

func New(upstream helix.Querier, log *slog.Logger, opts ...Option) *Relay {
	r := &Relay{
		upstream:  upstream,
		log:       log,
		cache:     cache.NewNoOpCache(),
		publisher: events.NoOpPublisher{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Relay) Query(ctx context.Context, name string, params map[string]any) (json.RawMessage, error) {
	if social.IsMutation(name) {
		return r.write(ctx, name, params)
	}
	return r.read(ctx, name, params)
}

func (r *Relay) read(ctx context.Context, name string, params map[string]any) (json.RawMessage, error) {
	// The generation is read before going upstream, so a result fetched while a write
	// invalidates the cache lands under a key no later read will use.
	gen, err := r.cache.Generation(ctx)
	if err != nil {
		r.log.Warn("cache generation failed, bypassing cache", "query", name, "err", err)
		return r.call(ctx, name, params)
	}
	key, err := cache.GenerateKey(gen, name, params)
	if err != nil {
		r.log.Warn("cache key failed, bypassing cache", "query", name, "err", err)
		return r.call(ctx, name, params)
	}

	if cached, err := r.cache.Get(ctx, key); err != nil {
		r.log.Warn("cache read failed", "query", name, "err", err)
	} else if cached != nil {
		r.log.Debug("cache hit", "query", name)
		r.countCache(true)
		return cached, nil
	}
	r.countCache(false)

	raw, err := r.call(ctx, name, params)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, key, raw, r.cacheTTL); err != nil {
		// Log cache write failure but don't fail the request
		r.log.Warn("failed to cache result", "query", name, "err", err)
	}
	return raw, nil
}

func (r *Relay) write(ctx context.Context, name string, params map[string]any) (json.RawMessage, error) {
	raw, err := r.call(ctx, name, params)
	if err != nil {
		return nil, err
	}
	if err := r.cache.InvalidateAll(ctx); err != nil {
		r.log.Warn("cache invalidation failed", "query", name, "err", err)
	}

	ev := events.Event{Query: name, Params: params, Result: raw, OccurredAt: time.Now().UTC()}
	if err := events.PublishWithRetry(ctx, r.publisher, ev, publishAttempts, publishBackoff); err != nil {
		r.log.Error("failed to publish activity event", "query", name, "err", err)
	}
	return raw, nil
}

func (r *Relay) call(ctx context.Context, name string, params map[string]any) (json.RawMessage, error) {
	start := time.Now()
	raw, err := r.upstream.Query(ctx, name, params)
	if r.metrics != nil {
		r.metrics.ObserveQuery(name, err, time.Since(start))
	}
	return raw, err
}

func (r *Relay) countCache(hit bool) {
	if r.metrics == nil {
		return
	}
	if hit {
		r.metrics.CacheHits.Inc()
	} else {
		r.metrics.CacheMisses.Inc()
	}
}
