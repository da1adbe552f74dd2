package graphrt

import (
	"context"
	"sort"
	"sync"
	"testing"

	executor "github.com/usergraph-io/usergraph/internal/executor"
	language "github.com/usergraph-io/usergraph/internal/language"
	memstore "github.com/usergraph-io/usergraph/internal/memstore"
	model "github.com/usergraph-io/usergraph/internal/model"
	schema "github.com/usergraph-io/usergraph/internal/schema"
	store "github.com/usergraph-io/usergraph/internal/store"
	"github.com/stretchr/testify/require"
)

// countingStore records fetch counts and the last predicate field per
// collection. Groups of one depth fetch concurrently, hence the lock.
type countingStore struct {
	mu         sync.Mutex
	next       store.Store
	byID       map[store.Collection]int
	where      map[store.Collection]int
	whereField map[store.Collection]string
}

func newCountingStore(next store.Store) *countingStore {
	return &countingStore{
		next:       next,
		byID:       make(map[store.Collection]int),
		where:      make(map[store.Collection]int),
		whereField: make(map[store.Collection]string),
	}
}

func (c *countingStore) GetByID(ctx context.Context, col store.Collection, id string) (any, error) {
	c.mu.Lock()
	c.byID[col]++
	c.mu.Unlock()
	return c.next.GetByID(ctx, col, id)
}

func (c *countingStore) GetWhere(ctx context.Context, col store.Collection, p *store.Predicate) ([]any, error) {
	c.mu.Lock()
	c.where[col]++
	if p != nil {
		c.whereField[col] = p.Field
	}
	c.mu.Unlock()
	return c.next.GetWhere(ctx, col, p)
}

func testData() memstore.Data {
	return memstore.Data{
		MemberTypes: []*model.MemberType{
			{ID: "basic", Discount: 0, PostsLimitPerMonth: 20},
			{ID: "business", Discount: 5, PostsLimitPerMonth: 100},
		},
		Users: []*model.User{
			{ID: "a", Name: "Ada", Balance: 10},
			{ID: "b", Name: "Grace", Balance: 20},
			{ID: "c", Name: "Edsger", Balance: 30},
		},
		Posts: []*model.Post{
			{ID: "p1", Title: "one", Content: "...", AuthorID: "a"},
			{ID: "p2", Title: "two", Content: "...", AuthorID: "a"},
			{ID: "p3", Title: "three", Content: "...", AuthorID: "b"},
		},
		Profiles: []*model.Profile{
			{ID: "pr1", IsMale: false, YearOfBirth: 1815, UserID: "a", MemberTypeID: "basic"},
			{ID: "pr2", IsMale: false, YearOfBirth: 1906, UserID: "b", MemberTypeID: "business"},
		},
		Subscriptions: []*model.Subscription{
			{SubscriberID: "a", AuthorID: "b"},
			{SubscriberID: "a", AuthorID: "c"},
			{SubscriberID: "b", AuthorID: "a"},
		},
	}
}

func newTestExecutor(t *testing.T, st store.Store) *executor.Executor {
	t.Helper()
	sch, err := NewSchema()
	require.NoError(t, err)
	rt, err := NewRuntime(sch, st)
	require.NoError(t, err)
	return executor.NewExecutor(rt, sch)
}

func execute(t *testing.T, exec *executor.Executor, query string) *executor.ExecutionResult {
	t.Helper()
	doc, err := language.ParseQuery(query)
	require.NoError(t, err)
	return exec.ExecuteRequest(context.Background(), doc, "", nil)
}

func TestNewRuntime_CoversSchema(t *testing.T) {
	sch, err := NewSchema()
	require.NoError(t, err)
	_, err = NewRuntime(sch, memstore.New(testData()))
	require.NoError(t, err)
}

func TestNewRuntime_RejectsUncoveredField(t *testing.T) {
	sch, err := NewSchema()
	require.NoError(t, err)
	// Declare a field no resolver serves.
	sch.Types["User"].Fields = append(sch.Types["User"].Fields,
		&schema.Field{Name: "nickname", Type: schema.NamedType("String")})
	_, err = NewRuntime(sch, memstore.New(testData()))
	require.Error(t, err)
}

func TestNewRuntime_RequiresRelationBinding(t *testing.T) {
	sch, err := NewSchema()
	require.NoError(t, err)
	sch.Lookup("User", "posts").Relation = nil
	_, err = NewRuntime(sch, memstore.New(testData()))
	require.Error(t, err)
	require.Contains(t, err.Error(), "relation binding")
}

func TestBatchResolvers_QueryDeclaredBinding(t *testing.T) {
	cs := newCountingStore(memstore.New(testData()))
	exec := newTestExecutor(t, cs)
	res := execute(t, exec, `{ users { posts { id } userSubscribedTo { id } } }`)

	require.Empty(t, res.Errors)
	// The predicate field each resolver queries is the foreign key declared
	// on the field's relation binding, not a value of its own.
	sch, err := NewSchema()
	require.NoError(t, err)
	require.Equal(t, sch.Lookup("User", "posts").Relation.ForeignKey, cs.whereField[store.Posts])
	require.Equal(t, sch.Lookup("User", "userSubscribedTo").Relation.ForeignKey, cs.whereField[store.Subscriptions])
}

func TestQueryUser_MissingResolvesNull(t *testing.T) {
	exec := newTestExecutor(t, memstore.New(testData()))
	res := execute(t, exec, `{ user(id: "ghost") { id } }`)

	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{"user": nil}, res.Data)
}

func TestQueryUser_ScalarsAndProfile(t *testing.T) {
	exec := newTestExecutor(t, memstore.New(testData()))
	res := execute(t, exec, `{ user(id: "a") { id name balance profile { yearOfBirth memberType { id discount } } } }`)

	require.Empty(t, res.Errors)
	user := res.Data.(map[string]any)["user"].(map[string]any)
	require.Equal(t, "a", user["id"])
	require.Equal(t, "Ada", user["name"])
	require.Equal(t, 10.0, user["balance"])
	profile := user["profile"].(map[string]any)
	require.Equal(t, 1815, profile["yearOfBirth"])
	require.Equal(t, "basic", profile["memberType"].(map[string]any)["id"])
}

func TestQueryUser_NoProfileResolvesNull(t *testing.T) {
	exec := newTestExecutor(t, memstore.New(testData()))
	res := execute(t, exec, `{ user(id: "c") { id profile { id } } }`)

	require.Empty(t, res.Errors)
	user := res.Data.(map[string]any)["user"].(map[string]any)
	require.Nil(t, user["profile"])
}

func TestUsersPosts_OneFetchPerRelationGroup(t *testing.T) {
	cs := newCountingStore(memstore.New(testData()))
	exec := newTestExecutor(t, cs)
	res := execute(t, exec, `{ users { id posts { id title } } }`)

	require.Empty(t, res.Errors)
	// One scan for the users listing, one predicate fetch covering every
	// user's posts. Never one query per user.
	require.Equal(t, 1, cs.where[store.Users])
	require.Equal(t, 1, cs.where[store.Posts])

	users := res.Data.(map[string]any)["users"].([]any)
	require.Len(t, users, 3)
	postCounts := map[string]int{}
	for _, u := range users {
		um := u.(map[string]any)
		postCounts[um["id"].(string)] = len(um["posts"].([]any))
	}
	require.Equal(t, map[string]int{"a": 2, "b": 1, "c": 0}, postCounts)
}

func TestUsersProfileMemberType_BatchedPerDepth(t *testing.T) {
	cs := newCountingStore(memstore.New(testData()))
	exec := newTestExecutor(t, cs)
	res := execute(t, exec, `{ users { id profile { id memberType { id } } } }`)

	require.Empty(t, res.Errors)
	require.Equal(t, 1, cs.where[store.Profiles])
	require.Equal(t, 1, cs.where[store.MemberTypes])
}

func TestUsers_DanglingTierNullsOneProfileOnly(t *testing.T) {
	data := testData()
	data.Profiles = append(data.Profiles,
		&model.Profile{ID: "pr3", YearOfBirth: 1930, UserID: "c", MemberTypeID: "ghost"})
	exec := newTestExecutor(t, memstore.New(data))

	res := execute(t, exec, `{ users { id profile { memberType { id } } } }`)

	// One bad row must not wipe the listing: the broken profile nulls out and
	// every other user keeps its resolved profile.
	require.Len(t, res.Errors, 1)
	users, ok := res.Data.(map[string]any)["users"].([]any)
	require.True(t, ok, "expected users list, got %v", res.Data)
	require.Len(t, users, 3)

	profiles := map[string]any{}
	for _, u := range users {
		um := u.(map[string]any)
		profiles[um["id"].(string)] = um["profile"]
	}
	require.Nil(t, profiles["c"])
	require.Equal(t, "basic", profiles["a"].(map[string]any)["memberType"].(map[string]any)["id"])
	require.Equal(t, "business", profiles["b"].(map[string]any)["memberType"].(map[string]any)["id"])
}

func TestRootUser_StitchedSubscriptions(t *testing.T) {
	cs := newCountingStore(memstore.New(testData()))
	exec := newTestExecutor(t, cs)
	res := execute(t, exec, `{
		user(id: "a") {
			id
			userSubscribedTo { id subscribedToUser { id } }
			subscribedToUser { id userSubscribedTo { id } }
		}
	}`)

	require.Empty(t, res.Errors)
	user := res.Data.(map[string]any)["user"].(map[string]any)

	following := idsOf(t, user["userSubscribedTo"])
	require.Equal(t, []string{"b", "c"}, following)
	followers := idsOf(t, user["subscribedToUser"])
	require.Equal(t, []string{"b"}, followers)

	// Cross-attachment: each followee carries a's full follower set and
	// each follower carries a's full followee set.
	for _, f := range user["userSubscribedTo"].([]any) {
		require.Equal(t, []string{"b"}, idsOf(t, f.(map[string]any)["subscribedToUser"]))
	}
	for _, f := range user["subscribedToUser"].([]any) {
		require.Equal(t, []string{"b", "c"}, idsOf(t, f.(map[string]any)["userSubscribedTo"]))
	}

	// The whole neighborhood came from the stitcher: two edge scans and one
	// user fetch, with the nested subscription fields answered from memory.
	require.Equal(t, 2, cs.where[store.Subscriptions])
	require.Equal(t, 1, cs.where[store.Users])
}

func TestRootUser_OneHopTerminality(t *testing.T) {
	exec := newTestExecutor(t, memstore.New(testData()))
	res := execute(t, exec, `{
		user(id: "a") {
			userSubscribedTo { id userSubscribedTo { id } }
		}
	}`)

	require.Empty(t, res.Errors)
	user := res.Data.(map[string]any)["user"].(map[string]any)
	// b follows a in the dataset, but the attached one-hop members are
	// terminal: their same-direction sets resolve empty.
	for _, f := range user["userSubscribedTo"].([]any) {
		require.Empty(t, f.(map[string]any)["userSubscribedTo"])
	}
}

func TestPlainUserSubscriptions_BatchedFetch(t *testing.T) {
	cs := newCountingStore(memstore.New(testData()))
	exec := newTestExecutor(t, cs)
	res := execute(t, exec, `{ users { id userSubscribedTo { id } } }`)

	require.Empty(t, res.Errors)
	// One edge scan and one user fetch for the whole group.
	require.Equal(t, 1, cs.where[store.Subscriptions])
	// users listing scan + target user fetch
	require.Equal(t, 2, cs.where[store.Users])

	users := res.Data.(map[string]any)["users"].([]any)
	byID := map[string][]string{}
	for _, u := range users {
		um := u.(map[string]any)
		byID[um["id"].(string)] = idsOf(t, um["userSubscribedTo"])
	}
	require.Equal(t, []string{"b", "c"}, byID["a"])
	require.Equal(t, []string{"a"}, byID["b"])
	require.Empty(t, byID["c"])
}

func TestPostAuthor_DanglingReferenceIsError(t *testing.T) {
	data := testData()
	data.Posts = append(data.Posts, &model.Post{ID: "p9", Title: "orphan", Content: "...", AuthorID: "ghost"})
	exec := newTestExecutor(t, memstore.New(data))

	res := execute(t, exec, `{ post(id: "p9") { id author { id } } }`)
	require.NotEmpty(t, res.Errors)
	// Post.author is non-null, so the post object collapses; the root field
	// is nullable and absorbs the null.
	require.Equal(t, map[string]any{"post": nil}, res.Data)
}

func TestQueryMemberTypes_All(t *testing.T) {
	exec := newTestExecutor(t, memstore.New(testData()))
	res := execute(t, exec, `{ memberTypes { id postsLimitPerMonth } }`)

	require.Empty(t, res.Errors)
	mts := res.Data.(map[string]any)["memberTypes"].([]any)
	require.Len(t, mts, 2)
}

func TestSerializeLeafValue(t *testing.T) {
	sch, err := NewSchema()
	require.NoError(t, err)
	rt, err := NewRuntime(sch, memstore.New(testData()))
	require.NoError(t, err)
	ctx := context.Background()

	v, err := rt.SerializeLeafValue(ctx, "Int", 42)
	require.NoError(t, err)
	require.Equal(t, 42, v)

	v, err = rt.SerializeLeafValue(ctx, "ID", "a")
	require.NoError(t, err)
	require.Equal(t, "a", v)

	_, err = rt.SerializeLeafValue(ctx, "Boolean", "not-a-bool")
	require.Error(t, err)
}

func idsOf(t *testing.T, v any) []string {
	t.Helper()
	list, ok := v.([]any)
	require.True(t, ok, "expected list, got %T", v)
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, item.(map[string]any)["id"].(string))
	}
	sort.Strings(out)
	return out
}
