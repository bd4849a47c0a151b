package embeddings

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixed(t *testing.T) {
	f := Fixed{"hello": {0.1, 0.2}}

	v, err := f.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, Vector{0.1, 0.2}, v)

	// returned vectors are copies
	v[0] = 9
	again, _ := f.Embed(context.Background(), "hello")
	assert.Equal(t, 0.1, again[0])

	_, err = f.Embed(context.Background(), "unknown")
	assert.Error(t, err)
}

func TestNewOpenAIEmbedderRequiresKey(t *testing.T) {
	_, err := NewOpenAIEmbedder("", "", 0)
	assert.Error(t, err)

	e, err := NewOpenAIEmbedder("key", "", 0)
	require.NoError(t, err)
	assert.Equal(t, openai.EmbeddingModelTextEmbedding3Small, e.model)
}

func TestOpenAIEmbedderSendsDimensions(t *testing.T) {
	var req map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &req)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"object": "list",
			"model": "text-embedding-3-small",
			"data": [{"object": "embedding", "index": 0, "embedding": [0.5, 0.25, 0.125]}],
			"usage": {"prompt_tokens": 3, "total_tokens": 3}
		}`))
	}))
	defer srv.Close()

	e, err := NewOpenAIEmbedder("key", openai.EmbeddingModelTextEmbedding3Small, 3,
		option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	require.NoError(t, err)

	v, err := e.Embed(context.Background(), "Loving the graph database capabilities")
	require.NoError(t, err)
	assert.Equal(t, Vector{0.5, 0.25, 0.125}, v)
	assert.Equal(t, "Loving the graph database capabilities", req["input"])
	assert.Equal(t, float64(3), req["dimensions"])
}
