package walkthrough

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"helix-social/internal/embeddings"
	"helix-social/internal/helix"
)

// fakeHelix records calls and hands out sequential ids.
type fakeHelix struct {
	calls  []call
	nextID int
	failOn string
	wrap   bool
}

type call struct {
	name   string
	params map[string]any
}

func (f *fakeHelix) Query(_ context.Context, name string, params map[string]any) (json.RawMessage, error) {
	f.calls = append(f.calls, call{name, params})
	if name == f.failOn {
		return nil, errors.New("connection refused")
	}
	var body string
	switch name {
	case "createUser":
		f.nextID++
		body = fmt.Sprintf(`{"user":{"id":"u%d","name":%q}}`, f.nextID, params["name"])
	case "createPost":
		f.nextID++
		body = fmt.Sprintf(`{"post":{"id":"p%d"}}`, f.nextID)
	default:
		body = `{"ok":true}`
	}
	if f.wrap {
		body = "[" + body + "]"
	}
	return json.RawMessage(body), nil
}

func TestRunOrderAndPayloads(t *testing.T) {
	f := &fakeHelix{}
	var out bytes.Buffer

	require.NoError(t, New(f, nil, &out).Run(context.Background()))

	names := make([]string, len(f.calls))
	for i, c := range f.calls {
		names[i] = c.name
	}
	assert.Equal(t, []string{
		"createUser", "createUser", "createUser",
		"createFollow", "createFollow", "createFollow",
		"createPost", "createPost", "createPost",
		"createPostEmbedding", "createPostEmbedding", "createPostEmbedding",
		"getUsers", "getPosts", "getPostsByUser", "getFollowing", "getFollowers",
		"searchPostEmbeddings",
	}, names)

	assert.Equal(t, map[string]any{"name": "Alice", "age": 25, "email": "alice@example.com"}, f.calls[0].params)
	// Alice=u1, Bob=u2, Charlie=u3
	assert.Equal(t, map[string]any{"follower_id": "u1", "followed_id": "u2"}, f.calls[3].params)
	assert.Equal(t, map[string]any{"follower_id": "u2", "followed_id": "u3"}, f.calls[4].params)
	assert.Equal(t, map[string]any{"follower_id": "u3", "followed_id": "u1"}, f.calls[5].params)
	assert.Equal(t, map[string]any{"user_id": "u1", "content": "Hello world! My first post on HelixDB"}, f.calls[6].params)
	assert.Equal(t, map[string]any{
		"post_id": "p4",
		"vector":  embeddings.Vector{0.1, 0.2, 0.3, 0.4, 0.5},
		"content": "Hello world! My first post on HelixDB",
	}, f.calls[9].params)
	assert.Equal(t, map[string]any{}, f.calls[12].params)
	assert.Equal(t, map[string]any{"user_id": "u1"}, f.calls[14].params)
	assert.Equal(t, map[string]any{"user_id": "u1"}, f.calls[15].params)
	assert.Equal(t, map[string]any{"user_id": "u2"}, f.calls[16].params)
	assert.Equal(t, map[string]any{
		"vector": embeddings.Vector{0.1, 0.2, 0.3, 0.4, 0.5},
		"k":      1,
	}, f.calls[17].params)

	printed := out.String()
	assert.Contains(t, printed, "Created Alice:")
	assert.Contains(t, printed, "Charlie follows Alice:")
	assert.Contains(t, printed, "Bob's Followers:")
	assert.Contains(t, printed, `"name": "Alice"`)
}

func TestRunReadsWrappedIDs(t *testing.T) {
	f := &fakeHelix{wrap: true}
	require.NoError(t, New(f, nil, &bytes.Buffer{}).Run(context.Background()))
	assert.Equal(t, "u1", f.calls[3].params["follower_id"])
}

func TestRunStopsOnFirstFailure(t *testing.T) {
	f := &fakeHelix{failOn: "createFollow"}
	var out bytes.Buffer

	err := New(f, nil, &out).Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "createFollow")
	assert.Len(t, f.calls, 4, "no query after the failing one")
	assert.False(t, strings.Contains(out.String(), "Creating posts"))
}

func TestRunUsesEmbedder(t *testing.T) {
	q := &fakeHelix{}
	emb := new(embeddings.MockEmbedder)
	emb.On("Embed", mock.Anything, mock.Anything).Return(embeddings.Vector{1, 0, 0}, nil).Times(3)

	require.NoError(t, New(q, emb, &bytes.Buffer{}).Run(context.Background()))

	last := q.calls[len(q.calls)-1]
	assert.Equal(t, embeddings.Vector{1, 0, 0}, last.params["vector"])
	emb.AssertExpectations(t)
}

func TestRunEmbedderFailure(t *testing.T) {
	q := &fakeHelix{}
	emb := new(embeddings.MockEmbedder)
	emb.On("Embed", mock.Anything, mock.Anything).Return(nil, errors.New("quota")).Once()

	err := New(q, emb, &bytes.Buffer{}).Run(context.Background())
	assert.ErrorContains(t, err, "quota")
}

func TestRunMissingID(t *testing.T) {
	q := new(helix.MockQuerier)
	q.On("Query", mock.Anything, "createUser", mock.Anything).Return(json.RawMessage(`{"unexpected":true}`), nil).Once()

	err := New(q, nil, &bytes.Buffer{}).Run(context.Background())
	assert.ErrorContains(t, err, "no user.id")
	q.AssertExpectations(t)
}

func TestIdOf(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{`{"user":{"id":"a"}}`, "a", false},
		{`[{"user":{"id":"b"}}]`, "b", false},
		{`{"users":[]}`, "", true},
	}
	for _, tt := range tests {
		got, err := idOf(json.RawMessage(tt.raw), "user")
		if tt.wantErr {
			assert.Error(t, err, tt.raw)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
