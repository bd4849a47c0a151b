// Command demo walks through the social-network queries against a local HelixDB:
// it creates users, follows, posts and post embeddings, then reads them back.
package main

import (
	"context"
	"log/slog"
	"os"

	"helix-social/internal/app"
	"helix-social/internal/walkthrough"
)

func main() {
	deps, err := app.BuildDemo()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}

	if err := walkthrough.New(deps.Helix, deps.Embedder, os.Stdout).Run(context.Background()); err != nil {
		deps.Log.Error("walkthrough failed", "err", err)
		os.Exit(1)
	}
}
