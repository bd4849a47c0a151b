package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"helix-social/internal/app"
	"helix-social/internal/events"
	"helix-social/internal/httputil"
)

func main() {
	if err := run(); err != nil {
		slog.Default().Error("activity worker stopped", "err", err)
		os.Exit(1)
	}
}

func run() error {
	deps, err := app.BuildActivity()
	if err != nil {
		return fmt.Errorf("build dependencies: %w", err)
	}
	defer deps.Close()
	deps.Log.Info("activity worker starting", "prefix", deps.Config.EventsSubjectPrefix)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return deps.Subscriber.Subscribe(ctx, logEvent(deps.Log))
	})

	g.Go(func() error {
		return httputil.ServeHealth(ctx, deps.Log, fmt.Sprintf(":%d", deps.Config.ActivityPort), "activity")
	})

	// Wait for either to fail
	return g.Wait()
}

// logEvent writes one line per graph mutation.
func logEvent(log *slog.Logger) events.Handler {
	return func(_ context.Context, ev events.Event) error {
		log.Info("graph updated",
			"id", ev.ID,
			"query", ev.Query,
			"params", ev.Params,
			"result_bytes", len(ev.Result),
			"occurred_at", ev.OccurredAt,
		)
		return nil
	}
}
