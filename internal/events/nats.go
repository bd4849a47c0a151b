package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// Conn is the subset of *nats.Conn used here.
type Conn interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
}

// NewNATS constructs a thin NATS-backed publisher and subscriber.
// Events go to "<prefix>.<query>".
func NewNATS(log *slog.Logger, nc Conn, prefix string) *NATS {
	return &NATS{log: log, nc: nc, prefix: prefix}
}

type NATS struct {
	log    *slog.Logger
	nc     Conn
	prefix string
}

// Subject returns the subject an event for query is published on.
func (n *NATS) Subject(query string) string {
	return n.prefix + "." + query
}

func (n *NATS) Publish(_ context.Context, ev Event) error {
	if ev.Query == "" {
		return errors.New("event query required")
	}
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return n.nc.Publish(n.Subject(ev.Query), body)
}

// Subscribe delivers every event under the prefix to handler until ctx is done.
func (n *NATS) Subscribe(ctx context.Context, handler Handler) error {
	sub, err := n.nc.Subscribe(n.prefix+".>", func(msg *nats.Msg) {
		n.handleMessage(ctx, msg, handler)
	})
	if err != nil {
		return err
	}
	<-ctx.Done()
	return sub.Unsubscribe()
}

func (n *NATS) handleMessage(ctx context.Context, msg *nats.Msg, handler Handler) {
	var ev Event
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		n.log.Error("failed to decode event", "subject", msg.Subject, "err", err)
		return
	}
	if err := handler(ctx, ev); err != nil {
		n.log.Error("event handler failed", "id", ev.ID, "query", ev.Query, "err", err)
	}
}
