// Package graphrt implements the executor's Runtime against the entity store.
//
// Resolution is table-driven: a dispatch table maps (objectType, field) to a
// resolver, split into synchronous resolvers that read off the parent value
// and batch resolvers that fetch from the store. Batch resolvers are built
// from the relation bindings the schema declares on async fields, and
// NewRuntime checks the table against the registry, so a runtime that
// constructs successfully has a resolver for every declared field, no
// resolver for an undeclared one, and no resolver querying a collection its
// field does not declare. After that check, a missing table entry at
// resolution time is a programming error and panics.
//
// Batch resolvers receive every task of one execution depth that shares the
// same (objectType, field) pair and answer the whole group with a single
// predicate fetch. That is the no-N+1 discipline: resolving posts for fifty
// users is one GetWhere with a fifty-id predicate, not fifty queries.
package graphrt

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	executor "github.com/usergraph-io/usergraph/internal/executor"
	model "github.com/usergraph-io/usergraph/internal/model"
	schema "github.com/usergraph-io/usergraph/internal/schema"
	stitch "github.com/usergraph-io/usergraph/internal/stitch"
	store "github.com/usergraph-io/usergraph/internal/store"
)

type fieldKey struct {
	Type  string
	Field string
}

func (k fieldKey) String() string { return k.Type + "." + k.Field }

type syncResolver func(source any) (any, error)

// batchResolver answers one (objectType, field) group of a depth flush. It
// returns one result per task, in task order.
type batchResolver func(ctx context.Context, r *Runtime, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult

// Runtime resolves schema fields against a Store.
type Runtime struct {
	store    store.Store
	schema   *schema.Schema
	stitcher *stitch.Stitcher
	sync     map[fieldKey]syncResolver
	batch    map[fieldKey]batchResolver
}

// NewRuntime builds the runtime for the given schema and store and verifies
// the dispatch table covers the schema exactly. Batch resolvers are
// constructed from the relation bindings the schema declares, so the
// collection and predicate field each resolver queries come from the registry
// rather than from the table.
func NewRuntime(sch *schema.Schema, st store.Store) (*Runtime, error) {
	batch, err := batchResolvers(sch)
	if err != nil {
		return nil, err
	}
	r := &Runtime{
		store:    st,
		schema:   sch,
		stitcher: stitch.New(st),
		sync:     syncResolvers(),
		batch:    batch,
	}

	for _, t := range sch.Types {
		if t.Kind != schema.TypeKindObject {
			continue
		}
		for _, f := range t.Fields {
			key := fieldKey{Type: t.Name, Field: f.Name}
			_, hasSync := r.sync[key]
			_, hasBatch := r.batch[key]
			switch {
			case f.Async && !hasBatch:
				return nil, fmt.Errorf("graphrt: async field %s has no batch resolver", key)
			case f.Async && hasSync:
				return nil, fmt.Errorf("graphrt: async field %s also has a sync resolver", key)
			case !f.Async && !hasSync:
				return nil, fmt.Errorf("graphrt: field %s has no sync resolver", key)
			case !f.Async && hasBatch:
				return nil, fmt.Errorf("graphrt: sync field %s also has a batch resolver", key)
			}
		}
	}
	for key := range r.sync {
		if f := sch.Lookup(key.Type, key.Field); f == nil || f.Async {
			return nil, fmt.Errorf("graphrt: sync resolver %s does not match a declared sync field", key)
		}
	}
	for key := range r.batch {
		if f := sch.Lookup(key.Type, key.Field); f == nil || !f.Async {
			return nil, fmt.Errorf("graphrt: batch resolver %s does not match a declared async field", key)
		}
	}
	return r, nil
}

// Schema returns the registry this runtime resolves against.
func (r *Runtime) Schema() *schema.Schema { return r.schema }

func (r *Runtime) ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error) {
	key := fieldKey{Type: objectType, Field: field}
	resolve, ok := r.sync[key]
	if !ok {
		panic(fmt.Sprintf("graphrt: no sync resolver for %s", key))
	}
	return resolve(source)
}

func (r *Runtime) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	if len(tasks) == 0 {
		return nil
	}

	type group struct {
		key     fieldKey
		indices []int
	}
	var groups []group
	groupIdx := make(map[fieldKey]int)
	for i, t := range tasks {
		key := fieldKey{Type: t.ObjectType, Field: t.Field}
		gi, ok := groupIdx[key]
		if !ok {
			gi = len(groups)
			groupIdx[key] = gi
			groups = append(groups, group{key: key})
		}
		groups[gi].indices = append(groups[gi].indices, i)
	}

	results := make([]executor.AsyncResolveResult, len(tasks))
	run := func(g group) {
		resolve, ok := r.batch[g.key]
		if !ok {
			panic(fmt.Sprintf("graphrt: no batch resolver for %s", g.key))
		}
		sub := make([]executor.AsyncResolveTask, len(g.indices))
		for i, idx := range g.indices {
			sub[i] = tasks[idx]
		}
		for i, res := range resolve(ctx, r, sub) {
			results[g.indices[i]] = res
		}
	}

	if len(groups) == 1 {
		run(groups[0])
		return results
	}

	// Distinct field groups touch distinct result slots, so they can fetch
	// concurrently.
	var wg sync.WaitGroup
	for _, g := range groups {
		wg.Add(1)
		go func(g group) {
			defer wg.Done()
			run(g)
		}(g)
	}
	wg.Wait()
	return results
}

func (r *Runtime) SerializeLeafValue(ctx context.Context, scalarTypeName string, value any) (any, error) {
	switch scalarTypeName {
	case "ID", "String":
		switch v := value.(type) {
		case string:
			return v, nil
		case int:
			return strconv.Itoa(v), nil
		}
	case "Int":
		switch v := value.(type) {
		case int:
			return v, nil
		case int32:
			return int(v), nil
		case int64:
			return int(v), nil
		case float64:
			return int(v), nil
		}
	case "Float":
		switch v := value.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case int:
			return float64(v), nil
		}
	case "Boolean":
		if v, ok := value.(bool); ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("cannot serialize %T as %s", value, scalarTypeName)
}

func syncResolvers() map[fieldKey]syncResolver {
	return map[fieldKey]syncResolver{
		{"User", "id"}:      userField(func(n *stitch.Node) any { return n.User.ID }),
		{"User", "name"}:    userField(func(n *stitch.Node) any { return n.User.Name }),
		{"User", "balance"}: userField(func(n *stitch.Node) any { return n.User.Balance }),

		{"Post", "id"}:      postField(func(p *model.Post) any { return p.ID }),
		{"Post", "title"}:   postField(func(p *model.Post) any { return p.Title }),
		{"Post", "content"}: postField(func(p *model.Post) any { return p.Content }),

		{"Profile", "id"}:          profileField(func(p *model.Profile) any { return p.ID }),
		{"Profile", "isMale"}:      profileField(func(p *model.Profile) any { return p.IsMale }),
		{"Profile", "yearOfBirth"}: profileField(func(p *model.Profile) any { return p.YearOfBirth }),

		{"MemberType", "id"}:                 memberTypeField(func(m *model.MemberType) any { return m.ID }),
		{"MemberType", "discount"}:           memberTypeField(func(m *model.MemberType) any { return m.Discount }),
		{"MemberType", "postsLimitPerMonth"}: memberTypeField(func(m *model.MemberType) any { return m.PostsLimitPerMonth }),
	}
}

func userField(get func(*stitch.Node) any) syncResolver {
	return func(source any) (any, error) {
		n, ok := source.(*stitch.Node)
		if !ok {
			return nil, fmt.Errorf("expected user source, got %T", source)
		}
		return get(n), nil
	}
}

func postField(get func(*model.Post) any) syncResolver {
	return func(source any) (any, error) {
		p, ok := source.(*model.Post)
		if !ok {
			return nil, fmt.Errorf("expected post source, got %T", source)
		}
		return get(p), nil
	}
}

func profileField(get func(*model.Profile) any) syncResolver {
	return func(source any) (any, error) {
		p, ok := source.(*model.Profile)
		if !ok {
			return nil, fmt.Errorf("expected profile source, got %T", source)
		}
		return get(p), nil
	}
}

func memberTypeField(get func(*model.MemberType) any) syncResolver {
	return func(source any) (any, error) {
		m, ok := source.(*model.MemberType)
		if !ok {
			return nil, fmt.Errorf("expected member type source, got %T", source)
		}
		return get(m), nil
	}
}

// relation is a field's store binding, taken from its schema declaration.
type relation struct {
	collection store.Collection
	foreignKey string
}

// batchResolvers builds the async dispatch table from the schema. Every entry
// is handed the relation binding declared on its field; a binding that is
// missing, or a table row naming an undeclared field, fails construction.
func batchResolvers(sch *schema.Schema) (map[fieldKey]batchResolver, error) {
	out := make(map[fieldKey]batchResolver, 15)
	for _, row := range []struct {
		typeName, fieldName string
		build               func(rel relation) batchResolver
	}{
		{"Query", "user", stitchedUserLookup},
		{"Query", "users", plainUserListing},
		{"Query", "post", byIDRoot},
		{"Query", "posts", wholeCollection},
		{"Query", "profile", byIDRoot},
		{"Query", "profiles", wholeCollection},
		{"Query", "memberType", byIDRoot},
		{"Query", "memberTypes", wholeCollection},

		{"User", "posts", resolveUserPosts},
		{"User", "profile", resolveUserProfile},
		{"User", "userSubscribedTo", subscriptionResolver(subscriptionFollowing)},
		{"User", "subscribedToUser", subscriptionResolver(subscriptionFollowers)},

		{"Post", "author", userRefResolver(store.Posts, postAuthorRef)},
		{"Profile", "user", userRefResolver(store.Profiles, profileUserRef)},
		{"Profile", "memberType", resolveProfileMemberType},
	} {
		f := sch.Lookup(row.typeName, row.fieldName)
		if f == nil || !f.Async {
			return nil, fmt.Errorf("graphrt: %s.%s is not a declared async field", row.typeName, row.fieldName)
		}
		if f.Relation == nil {
			return nil, fmt.Errorf("graphrt: async field %s.%s has no relation binding", row.typeName, row.fieldName)
		}
		out[fieldKey{Type: row.typeName, Field: row.fieldName}] = row.build(relation{
			collection: store.Collection(f.Relation.Collection),
			foreignKey: f.Relation.ForeignKey,
		})
	}
	return out, nil
}

// stitchedUserLookup answers the root user(id) lookup. A hit is stitched with
// its full one-hop subscription neighborhood before it reaches the executor;
// absence resolves null.
func stitchedUserLookup(rel relation) batchResolver {
	return func(ctx context.Context, r *Runtime, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
		out := make([]executor.AsyncResolveResult, len(tasks))
		for i, t := range tasks {
			id, err := idArg(t)
			if err != nil {
				out[i].Error = err
				continue
			}
			row, err := r.store.GetByID(ctx, rel.collection, id)
			if err != nil {
				out[i].Error = err
				continue
			}
			if row == nil {
				continue
			}
			u, ok := row.(*model.User)
			if !ok {
				out[i].Error = store.Integrityf(rel.collection, "unexpected row type %T", row)
				continue
			}
			node, err := r.stitcher.Stitch(ctx, *u)
			if err != nil {
				out[i].Error = err
				continue
			}
			out[i].Value = node
		}
		return out
	}
}

// plainUserListing lists every user. The listed nodes are plain: their
// subscription fields resolve through the batched edge path, not the stitcher.
func plainUserListing(rel relation) batchResolver {
	return func(ctx context.Context, r *Runtime, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
		out := make([]executor.AsyncResolveResult, len(tasks))
		rows, err := r.store.GetWhere(ctx, rel.collection, nil)
		if err != nil {
			return failAll(out, err)
		}
		nodes := make([]*stitch.Node, 0, len(rows))
		for _, row := range rows {
			u, ok := row.(*model.User)
			if !ok {
				return failAll(out, store.Integrityf(rel.collection, "unexpected row type %T", row))
			}
			nodes = append(nodes, stitch.Plain(*u))
		}
		for i := range out {
			out[i].Value = nodes
		}
		return out
	}
}

// byIDRoot answers a root single-entity lookup per task; absence is null.
func byIDRoot(rel relation) batchResolver {
	return func(ctx context.Context, r *Runtime, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
		out := make([]executor.AsyncResolveResult, len(tasks))
		for i, t := range tasks {
			id, err := idArg(t)
			if err != nil {
				out[i].Error = err
				continue
			}
			row, err := r.store.GetByID(ctx, rel.collection, id)
			if err != nil {
				out[i].Error = err
				continue
			}
			if row != nil {
				out[i].Value = row
			}
		}
		return out
	}
}

// wholeCollection answers a root listing with one unfiltered scan shared by
// every task in the group.
func wholeCollection(rel relation) batchResolver {
	return func(ctx context.Context, r *Runtime, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
		out := make([]executor.AsyncResolveResult, len(tasks))
		rows, err := r.store.GetWhere(ctx, rel.collection, nil)
		if err != nil {
			return failAll(out, err)
		}
		if rows == nil {
			rows = []any{}
		}
		for i := range out {
			out[i].Value = rows
		}
		return out
	}
}

// resolveUserPosts fetches every group member's posts with one predicate scan.
func resolveUserPosts(rel relation) batchResolver {
	return func(ctx context.Context, r *Runtime, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
		out := make([]executor.AsyncResolveResult, len(tasks))
		ids, err := sourceUserIDs(tasks)
		if err != nil {
			return failAll(out, err)
		}
		rows, err := r.store.GetWhere(ctx, rel.collection, store.In(rel.foreignKey, ids...))
		if err != nil {
			return failAll(out, err)
		}
		byAuthor := make(map[string][]*model.Post)
		for _, row := range rows {
			p, ok := row.(*model.Post)
			if !ok {
				return failAll(out, store.Integrityf(rel.collection, "unexpected row type %T", row))
			}
			byAuthor[p.AuthorID] = append(byAuthor[p.AuthorID], p)
		}
		for i, t := range tasks {
			n := t.Source.(*stitch.Node)
			posts := byAuthor[n.User.ID]
			if posts == nil {
				posts = []*model.Post{}
			}
			out[i].Value = posts
		}
		return out
	}
}

// resolveUserProfile fetches every group member's profile with one predicate
// scan; a user without a profile resolves null.
func resolveUserProfile(rel relation) batchResolver {
	return func(ctx context.Context, r *Runtime, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
		out := make([]executor.AsyncResolveResult, len(tasks))
		ids, err := sourceUserIDs(tasks)
		if err != nil {
			return failAll(out, err)
		}
		rows, err := r.store.GetWhere(ctx, rel.collection, store.In(rel.foreignKey, ids...))
		if err != nil {
			return failAll(out, err)
		}
		byUser := make(map[string]*model.Profile, len(rows))
		for _, row := range rows {
			p, ok := row.(*model.Profile)
			if !ok {
				return failAll(out, store.Integrityf(rel.collection, "unexpected row type %T", row))
			}
			byUser[p.UserID] = p
		}
		for i, t := range tasks {
			n := t.Source.(*stitch.Node)
			if p := byUser[n.User.ID]; p != nil {
				out[i].Value = p
			}
		}
		return out
	}
}

// resolveProfileMemberType fetches the member types for a profile group with
// one predicate scan; a dangling tier reference is an integrity failure.
func resolveProfileMemberType(rel relation) batchResolver {
	return func(ctx context.Context, r *Runtime, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
		out := make([]executor.AsyncResolveResult, len(tasks))
		ids := make([]string, 0, len(tasks))
		for _, t := range tasks {
			p, err := profileSource(t)
			if err != nil {
				return failAll(out, err)
			}
			ids = append(ids, p.MemberTypeID)
		}
		rows, err := r.store.GetWhere(ctx, rel.collection, store.In(rel.foreignKey, dedupe(ids)...))
		if err != nil {
			return failAll(out, err)
		}
		byID := make(map[string]*model.MemberType, len(rows))
		for _, row := range rows {
			m, ok := row.(*model.MemberType)
			if !ok {
				return failAll(out, store.Integrityf(rel.collection, "unexpected row type %T", row))
			}
			byID[m.ID] = m
		}
		for i, t := range tasks {
			p, _ := profileSource(t)
			m := byID[p.MemberTypeID]
			if m == nil {
				out[i].Error = store.Integrityf(store.Profiles, "profile %s references missing member type %s", p.ID, p.MemberTypeID)
				continue
			}
			out[i].Value = m
		}
		return out
	}
}

// userRefResolver resolves a non-null user reference (Post.author,
// Profile.user) for a group with one fetch against the bound collection. A
// dangling reference is an integrity failure on the referring collection.
func userRefResolver(referrer store.Collection, ref func(executor.AsyncResolveTask) (ownerID, userID string, err error)) func(rel relation) batchResolver {
	return func(rel relation) batchResolver {
		return func(ctx context.Context, r *Runtime, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
			out := make([]executor.AsyncResolveResult, len(tasks))
			ids := make([]string, 0, len(tasks))
			for _, t := range tasks {
				_, uid, err := ref(t)
				if err != nil {
					return failAll(out, err)
				}
				ids = append(ids, uid)
			}
			rows, err := r.store.GetWhere(ctx, rel.collection, store.In(rel.foreignKey, dedupe(ids)...))
			if err != nil {
				return failAll(out, err)
			}
			byID := make(map[string]*model.User, len(rows))
			for _, row := range rows {
				u, ok := row.(*model.User)
				if !ok {
					return failAll(out, store.Integrityf(rel.collection, "unexpected row type %T", row))
				}
				byID[u.ID] = u
			}
			for i, t := range tasks {
				ownerID, uid, _ := ref(t)
				u := byID[uid]
				if u == nil {
					out[i].Error = store.Integrityf(referrer, "%s references missing user %s", ownerID, uid)
					continue
				}
				out[i].Value = stitch.Plain(*u)
			}
			return out
		}
	}
}

type subscriptionDirection int

const (
	// subscriptionFollowing resolves userSubscribedTo: the users the source
	// user subscribes to.
	subscriptionFollowing subscriptionDirection = iota
	// subscriptionFollowers resolves subscribedToUser: the users subscribed
	// to the source user.
	subscriptionFollowers
)

// subscriptionResolver answers a subscription field group. Stitched sources
// carry their sets from the stitcher and cost nothing; plain sources share one
// edge scan and one user fetch for the whole group. The edge collection and
// the side of the edge to match come from the field's relation binding. The
// users returned for plain sources are terminal, so nesting the same fields
// again resolves empty rather than recursing.
func subscriptionResolver(dir subscriptionDirection) func(rel relation) batchResolver {
	return func(rel relation) batchResolver {
		return func(ctx context.Context, r *Runtime, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
			out := make([]executor.AsyncResolveResult, len(tasks))

			var plainIdx []int
			for i, t := range tasks {
				n, ok := t.Source.(*stitch.Node)
				if !ok {
					return failAll(out, fmt.Errorf("expected user source, got %T", t.Source))
				}
				if n.Stitched {
					set := n.Following
					if dir == subscriptionFollowers {
						set = n.Followers
					}
					if set == nil {
						set = []*stitch.Node{}
					}
					out[i].Value = set
					continue
				}
				plainIdx = append(plainIdx, i)
			}
			if len(plainIdx) == 0 {
				return out
			}

			targetOf := func(e *model.Subscription) string { return e.AuthorID }
			sourceOf := func(e *model.Subscription) string { return e.SubscriberID }
			if dir == subscriptionFollowers {
				targetOf = func(e *model.Subscription) string { return e.SubscriberID }
				sourceOf = func(e *model.Subscription) string { return e.AuthorID }
			}

			ids := make([]string, 0, len(plainIdx))
			for _, i := range plainIdx {
				ids = append(ids, tasks[i].Source.(*stitch.Node).User.ID)
			}
			rows, err := r.store.GetWhere(ctx, rel.collection, store.In(rel.foreignKey, dedupe(ids)...))
			if err != nil {
				return failAllAt(out, plainIdx, err)
			}

			targets := make(map[string][]string)
			targetIDs := make([]string, 0, len(rows))
			for _, row := range rows {
				e, ok := row.(*model.Subscription)
				if !ok {
					return failAllAt(out, plainIdx, store.Integrityf(rel.collection, "unexpected row type %T", row))
				}
				if e.SubscriberID == e.AuthorID {
					return failAllAt(out, plainIdx, store.Integrityf(rel.collection, "self-subscription edge for user %s", e.SubscriberID))
				}
				targets[sourceOf(e)] = append(targets[sourceOf(e)], targetOf(e))
				targetIDs = append(targetIDs, targetOf(e))
			}

			byID := make(map[string]*model.User)
			if len(targetIDs) > 0 {
				userRows, err := r.store.GetWhere(ctx, store.Users, store.In("id", dedupe(targetIDs)...))
				if err != nil {
					return failAllAt(out, plainIdx, err)
				}
				for _, row := range userRows {
					u, ok := row.(*model.User)
					if !ok {
						return failAllAt(out, plainIdx, store.Integrityf(store.Users, "unexpected row type %T", row))
					}
					byID[u.ID] = u
				}
			}

			for _, i := range plainIdx {
				srcID := tasks[i].Source.(*stitch.Node).User.ID
				set := make([]*stitch.Node, 0, len(targets[srcID]))
				for _, tid := range targets[srcID] {
					u := byID[tid]
					if u == nil {
						out[i].Error = store.Integrityf(rel.collection, "edge references missing user %s", tid)
						set = nil
						break
					}
					set = append(set, &stitch.Node{User: *u, Stitched: true})
				}
				if out[i].Error == nil {
					out[i].Value = set
				}
			}
			return out
		}
	}
}

func postAuthorRef(t executor.AsyncResolveTask) (string, string, error) {
	p, err := postSource(t)
	if err != nil {
		return "", "", err
	}
	return p.ID, p.AuthorID, nil
}

func profileUserRef(t executor.AsyncResolveTask) (string, string, error) {
	p, err := profileSource(t)
	if err != nil {
		return "", "", err
	}
	return p.ID, p.UserID, nil
}

func postSource(t executor.AsyncResolveTask) (*model.Post, error) {
	p, ok := t.Source.(*model.Post)
	if !ok {
		return nil, fmt.Errorf("expected post source, got %T", t.Source)
	}
	return p, nil
}

func profileSource(t executor.AsyncResolveTask) (*model.Profile, error) {
	p, ok := t.Source.(*model.Profile)
	if !ok {
		return nil, fmt.Errorf("expected profile source, got %T", t.Source)
	}
	return p, nil
}

func sourceUserIDs(tasks []executor.AsyncResolveTask) ([]string, error) {
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		n, ok := t.Source.(*stitch.Node)
		if !ok {
			return nil, fmt.Errorf("expected user source, got %T", t.Source)
		}
		ids = append(ids, n.User.ID)
	}
	return dedupe(ids), nil
}

func idArg(t executor.AsyncResolveTask) (string, error) {
	v, ok := t.Args["id"]
	if !ok {
		return "", fmt.Errorf("argument 'id' is required")
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument 'id' must be an ID, got %T", v)
	}
	return s, nil
}

func failAll(out []executor.AsyncResolveResult, err error) []executor.AsyncResolveResult {
	for i := range out {
		out[i] = executor.AsyncResolveResult{Error: err}
	}
	return out
}

func failAllAt(out []executor.AsyncResolveResult, idx []int, err error) []executor.AsyncResolveResult {
	for _, i := range idx {
		out[i] = executor.AsyncResolveResult{Error: err}
	}
	return out
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
