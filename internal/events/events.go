// Package events publishes and consumes notifications about writes made through the facade.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"helix-social/internal/retry"
)

// Event records one successful mutating query.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Query      string          `json:"query"`
	Params     map[string]any  `json:"params"`
	Result     json.RawMessage `json:"result"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type Handler func(context.Context, Event) error

// Publisher sends events to a broker.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Subscriber consumes events until ctx is done.
type Subscriber interface {
	Subscribe(ctx context.Context, handler Handler) error
}

// PublishWithRetry attempts to publish with retries and exponential backoff.
func PublishWithRetry(ctx context.Context, p Publisher, ev Event, attempts int, base time.Duration) error {
	return retry.Do(ctx, attempts, base, func(ctx context.Context) error {
		return p.Publish(ctx, ev)
	})
}

// NoOpPublisher drops every event. Used when EVENTS_PROVIDER=none.
type NoOpPublisher struct{}

func (NoOpPublisher) Publish(context.Context, Event) error { return nil }
