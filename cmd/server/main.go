package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"helix-social/internal/app"
	"helix-social/internal/httputil"
	"helix-social/internal/social"
)

func main() {
	if err := run(); err != nil {
		slog.Default().Error("social API stopped", "err", err)
		os.Exit(1)
	}
}

// run returns once the server has shut down; deferred cleanup completes before main exits.
func run() error {
	deps, err := app.Build()
	if err != nil {
		return fmt.Errorf("build dependencies: %w", err)
	}
	defer deps.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", deps.Config.Port),
		Handler:           newRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
	deps.Log.Info("social API listening", "addr", srv.Addr)
	return httputil.Serve(ctx, srv)
}

var errTrailingData = errors.New("unexpected data after JSON body")

func newRouter(deps app.Deps) *chi.Mux {
	r := httputil.NewRouter(deps.Log)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	for _, q := range social.Queries() {
		r.Post("/"+q.Name, queryHandler(deps, q))
	}
	r.Get("/health", httputil.HealthHandler())
	return r
}

// queryHandler forwards the request body to the named query and relays the response verbatim.
func queryHandler(deps app.Deps, q social.Query) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := map[string]any{}
		if q.TakesParams {
			dec := json.NewDecoder(r.Body)
			dec.UseNumber()
			if err := dec.Decode(&params); err != nil {
				httputil.Fail(deps.Log, w, "invalid JSON", err, http.StatusBadRequest)
				return
			}
			// the body must hold exactly one JSON value
			if err := dec.Decode(&struct{}{}); err != io.EOF {
				httputil.Fail(deps.Log, w, "invalid JSON", errTrailingData, http.StatusBadRequest)
				return
			}
		}

		raw, err := deps.Helix.Query(r.Context(), q.Name, params)
		if err != nil {
			httputil.Fail(deps.Log.With("query", q.Name), w, http.StatusText(http.StatusInternalServerError), err, http.StatusInternalServerError)
			return
		}
		if err := httputil.WriteRaw(w, http.StatusOK, raw); err != nil {
			deps.Log.Warn("failed to write response", "query", q.Name, "err", err)
		}
	}
}
