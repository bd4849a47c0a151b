// Package walkthrough populates a toy social network in HelixDB and reads it back.
package walkthrough

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tidwall/gjson"

	"helix-social/internal/embeddings"
	"helix-social/internal/helix"
	"helix-social/internal/social"
)

type user struct {
	Name  string
	Age   int
	Email string
}

type post struct {
	Author  int // index into users
	Content string
}

var (
	users = []user{
		{Name: "Alice", Age: 25, Email: "alice@example.com"},
		{Name: "Bob", Age: 30, Email: "bob@example.com"},
		{Name: "Charlie", Age: 28, Email: "charlie@example.com"},
	}

	// follower -> followed, by index into users
	follows = [][2]int{{0, 1}, {1, 2}, {2, 0}}

	posts = []post{
		{Author: 0, Content: "Hello world! My first post on HelixDB"},
		{Author: 1, Content: "Loving the graph database capabilities"},
		{Author: 2, Content: "Building cool social networks with Helix"},
	}

	searchK = 1
)

// DemoVectors maps each post's content to the dummy vector used when no real embedder is set.
func DemoVectors() embeddings.Fixed {
	return embeddings.Fixed{
		posts[0].Content: {0.1, 0.2, 0.3, 0.4, 0.5},
		posts[1].Content: {0.2, 0.3, 0.4, 0.5, 0.6},
		posts[2].Content: {0.3, 0.4, 0.5, 0.6, 0.7},
	}
}

// Runner executes the walkthrough. The first failing query aborts the run.
type Runner struct {
	q   helix.Querier
	emb embeddings.Embedder
	out io.Writer
}

// New builds a Runner. A nil embedder falls back to DemoVectors.
func New(q helix.Querier, emb embeddings.Embedder, out io.Writer) *Runner {
	if emb == nil {
		emb = DemoVectors()
	}
	return &Runner{q: q, emb: emb, out: out}
}

func (r *Runner) Run(ctx context.Context) error {
	fmt.Fprintln(r.out, "Creating 3 users...")
	userIDs := make([]string, len(users))
	for i, u := range users {
		raw, err := r.query(ctx, fmt.Sprintf("Created %s", u.Name), social.CreateUser, map[string]any{
			"name":  u.Name,
			"age":   u.Age,
			"email": u.Email,
		})
		if err != nil {
			return err
		}
		if userIDs[i], err = idOf(raw, "user"); err != nil {
			return fmt.Errorf("create user %s: %w", u.Name, err)
		}
	}

	fmt.Fprintln(r.out, "Creating follow relationships...")
	for _, f := range follows {
		follower, followed := users[f[0]].Name, users[f[1]].Name
		_, err := r.query(ctx, fmt.Sprintf("%s follows %s", follower, followed), social.CreateFollow, map[string]any{
			"follower_id": userIDs[f[0]],
			"followed_id": userIDs[f[1]],
		})
		if err != nil {
			return err
		}
	}

	fmt.Fprintln(r.out, "Creating posts...")
	postIDs := make([]string, len(posts))
	for i, p := range posts {
		raw, err := r.query(ctx, fmt.Sprintf("Created %s's post", users[p.Author].Name), social.CreatePost, map[string]any{
			"user_id": userIDs[p.Author],
			"content": p.Content,
		})
		if err != nil {
			return err
		}
		if postIDs[i], err = idOf(raw, "post"); err != nil {
			return fmt.Errorf("create post for %s: %w", users[p.Author].Name, err)
		}
	}

	fmt.Fprintln(r.out, "Creating post embeddings...")
	var searchVector embeddings.Vector
	for i, p := range posts {
		vec, err := r.emb.Embed(ctx, p.Content)
		if err != nil {
			return fmt.Errorf("embed post %d: %w", i, err)
		}
		if i == 0 {
			searchVector = vec
		}
		_, err = r.query(ctx, fmt.Sprintf("Created %s's embedding", users[p.Author].Name), social.CreatePostEmbedding, map[string]any{
			"post_id": postIDs[i],
			"vector":  vec,
			"content": p.Content,
		})
		if err != nil {
			return err
		}
	}

	fmt.Fprintln(r.out, "\nQuerying and displaying the data...")
	alice, bob := userIDs[0], userIDs[1]
	reads := []struct {
		title  string
		query  string
		params map[string]any
	}{
		{"All Users", social.GetUsers, map[string]any{}},
		{"All Posts", social.GetPosts, map[string]any{}},
		{"Alice's Posts", social.GetPostsByUser, map[string]any{"user_id": alice}},
		{"Who Alice is Following", social.GetFollowing, map[string]any{"user_id": alice}},
		{"Bob's Followers", social.GetFollowers, map[string]any{"user_id": bob}},
		{
			fmt.Sprintf("Searching for posts similar to Alice's embedding %v", []float64(searchVector)),
			social.SearchPostEmbeddings,
			map[string]any{"vector": searchVector, "k": searchK},
		},
	}
	for _, rd := range reads {
		if _, err := r.query(ctx, "\n"+rd.title, rd.query, rd.params); err != nil {
			return err
		}
	}
	return nil
}

// query runs one named query and prints its raw result under title.
func (r *Runner) query(ctx context.Context, title, name string, params map[string]any) (json.RawMessage, error) {
	raw, err := r.q.Query(ctx, name, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		buf.Reset()
		buf.Write(raw)
	}
	fmt.Fprintf(r.out, "%s:\n%s\n", title, buf.String())
	return raw, nil
}

// idOf reads <field>.id from a response, or from its first element when the service wraps
// results in a list.
func idOf(raw json.RawMessage, field string) (string, error) {
	for _, path := range []string{field + ".id", "0." + field + ".id"} {
		if v := gjson.GetBytes(raw, path); v.Exists() {
			return v.String(), nil
		}
	}
	return "", fmt.Errorf("response has no %s.id", field)
}
