package embeddings

import (
	"context"
	"fmt"
)

// Vector is the float64 slice HelixDB stores for a post embedding.
type Vector []float64

// Embedder turns post content into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (Vector, error)
}

// Fixed returns pre-assigned vectors keyed by exact text.
type Fixed map[string]Vector

func (f Fixed) Embed(_ context.Context, text string) (Vector, error) {
	v, ok := f[text]
	if !ok {
		return nil, fmt.Errorf("no fixed vector for %q", text)
	}
	out := make(Vector, len(v))
	copy(out, v)
	return out, nil
}
