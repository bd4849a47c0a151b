// Package social catalogs the named queries registered in the social-network HelixDB schema.
package social

const (
	CreateUser           = "createUser"
	CreateFollow         = "createFollow"
	CreatePost           = "createPost"
	CreatePostEmbedding  = "createPostEmbedding"
	GetUsers             = "getUsers"
	GetPosts             = "getPosts"
	GetPostsByUser       = "getPostsByUser"
	GetFollowers         = "getFollowers"
	GetFollowing         = "getFollowing"
	GetUserPosts         = "getUserPosts"
	SearchPostEmbeddings = "searchPostEmbeddings"
)

// Query describes one named query.
type Query struct {
	Name string
	// TakesParams is false for queries that run with an empty parameter object.
	TakesParams bool
	// Mutates marks queries that write to the graph.
	Mutates bool
}

var catalog = []Query{
	{Name: CreateUser, TakesParams: true, Mutates: true},
	{Name: CreateFollow, TakesParams: true, Mutates: true},
	{Name: CreatePost, TakesParams: true, Mutates: true},
	{Name: CreatePostEmbedding, TakesParams: true, Mutates: true},
	{Name: GetUsers},
	{Name: GetPosts},
	{Name: GetPostsByUser, TakesParams: true},
	{Name: GetFollowers, TakesParams: true},
	{Name: GetFollowing, TakesParams: true},
	{Name: GetUserPosts, TakesParams: true},
	{Name: SearchPostEmbeddings, TakesParams: true},
}

var byName = func() map[string]Query {
	m := make(map[string]Query, len(catalog))
	for _, q := range catalog {
		m[q.Name] = q
	}
	return m
}()

// Queries returns every known query in route order.
func Queries() []Query {
	out := make([]Query, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a query by name.
func Lookup(name string) (Query, bool) {
	q, ok := byName[name]
	return q, ok
}

// IsMutation reports whether name is a known write query. Unknown names are treated as writes.
func IsMutation(name string) bool {
	q, ok := byName[name]
	return !ok || q.Mutates
}
