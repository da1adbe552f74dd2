// Package stitch computes a user's subscription neighborhood: who follows the
// user, whom the user follows, and the reciprocal one-hop cross-attachment
// between those two sets.
//
// The subscription relation is self-referential (users follow users, who are
// themselves users with followers), so naive recursive resolution would never
// terminate. The stitcher bounds traversal deliberately: it attaches exactly
// one reciprocal hop and nothing deeper. Members of the follower set carry
// the followee set as their own "following" view and vice versa; beyond that
// single attachment every subscription field resolves empty. Deeper traversal
// is a caller-driven repeated query, never automatic.
package stitch

import (
	"context"

	model "github.com/usergraph-io/usergraph/internal/model"
	store "github.com/usergraph-io/usergraph/internal/store"
)

// Node is a user together with its resolved one-hop subscription sets. The
// resolver runtime hands Nodes to the executor as User source values.
type Node struct {
	User model.User

	// Following are the users this user subscribes to (userSubscribedTo);
	// Followers are the users subscribed to this user (subscribedToUser).
	// Both are nil on plain (unstitched) nodes and non-nil, possibly empty,
	// on stitched ones.
	Following []*Node
	Followers []*Node

	// Stitched marks nodes whose subscription sets were populated by the
	// stitcher. Their subscription fields resolve without store access; a
	// nil set on a stitched node means "end of the attached hop" and
	// resolves as an empty list.
	Stitched bool
}

// Plain wraps a bare user row with no precomputed subscription sets.
func Plain(u model.User) *Node { return &Node{User: u} }

// Terminal wraps user rows as end-of-hop nodes: stitched, with both
// subscription sets resolving empty.
func Terminal(users []model.User) []*Node {
	out := make([]*Node, len(users))
	for i, u := range users {
		out[i] = &Node{User: u, Stitched: true}
	}
	return out
}

// Stitcher resolves subscription neighborhoods against the entity store.
type Stitcher struct {
	store store.Store
}

func New(s store.Store) *Stitcher { return &Stitcher{store: s} }

// Stitch builds the focal node for u:
//
//  1. fetch the followers of u (edges with authorId = u),
//  2. fetch the users u follows (edges with subscriberId = u),
//  3. cross-attach: every follower carries the full followee set as its
//     "following" view, and every followee carries the full follower set as
//     its "followers" view. The attached views are shared read-only slices;
//     nothing mutates result values after attachment.
//
// A store failure in any step fails the whole call; partially stitched nodes
// are never returned. A self-edge or an edge pointing at a missing user is
// an IntegrityError: the data cannot be served.
func (s *Stitcher) Stitch(ctx context.Context, u model.User) (*Node, error) {
	inEdges, err := s.edges(ctx, "authorId", u.ID)
	if err != nil {
		return nil, err
	}
	outEdges, err := s.edges(ctx, "subscriberId", u.ID)
	if err != nil {
		return nil, err
	}

	followerIDs := make([]string, 0, len(inEdges))
	for _, e := range inEdges {
		followerIDs = append(followerIDs, e.SubscriberID)
	}
	followeeIDs := make([]string, 0, len(outEdges))
	for _, e := range outEdges {
		followeeIDs = append(followeeIDs, e.AuthorID)
	}

	// One user fetch covers both directions.
	byID, err := s.users(ctx, append(append([]string{}, followerIDs...), followeeIDs...))
	if err != nil {
		return nil, err
	}

	followerUsers, err := pick(byID, followerIDs)
	if err != nil {
		return nil, err
	}
	followeeUsers, err := pick(byID, followeeIDs)
	if err != nil {
		return nil, err
	}

	// The attached reciprocal views are terminal: their own subscription
	// sets resolve empty, which is what bounds the cyclic relation to one
	// hop.
	attachedFollowing := Terminal(followeeUsers)
	attachedFollowers := Terminal(followerUsers)

	focal := &Node{User: u, Stitched: true}
	focal.Followers = make([]*Node, len(followerUsers))
	for i, fu := range followerUsers {
		focal.Followers[i] = &Node{User: fu, Stitched: true, Following: attachedFollowing}
	}
	focal.Following = make([]*Node, len(followeeUsers))
	for i, fu := range followeeUsers {
		focal.Following[i] = &Node{User: fu, Stitched: true, Followers: attachedFollowers}
	}
	return focal, nil
}

// edges fetches subscription edges matching field = id and rejects self-edges.
func (s *Stitcher) edges(ctx context.Context, field, id string) ([]*model.Subscription, error) {
	rows, err := s.store.GetWhere(ctx, store.Subscriptions, store.Eq(field, id))
	if err != nil {
		return nil, err
	}
	out := make([]*model.Subscription, 0, len(rows))
	for _, r := range rows {
		e, ok := r.(*model.Subscription)
		if !ok {
			return nil, store.Integrityf(store.Subscriptions, "unexpected row type %T", r)
		}
		if e.SubscriberID == e.AuthorID {
			return nil, store.Integrityf(store.Subscriptions, "self-subscription edge for user %s", e.SubscriberID)
		}
		out = append(out, e)
	}
	return out, nil
}

// users fetches the named users in one predicate call and indexes them by id.
func (s *Stitcher) users(ctx context.Context, ids []string) (map[string]model.User, error) {
	byID := make(map[string]model.User, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}
	rows, err := s.store.GetWhere(ctx, store.Users, store.In("id", dedupe(ids)...))
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		u, ok := r.(*model.User)
		if !ok {
			return nil, store.Integrityf(store.Users, "unexpected row type %T", r)
		}
		byID[u.ID] = *u
	}
	return byID, nil
}

// pick maps ids to users, preserving edge order; a missing id is a dangling
// foreign key.
func pick(byID map[string]model.User, ids []string) ([]model.User, error) {
	out := make([]model.User, 0, len(ids))
	for _, id := range ids {
		u, ok := byID[id]
		if !ok {
			return nil, store.Integrityf(store.Subscriptions, "edge references missing user %s", id)
		}
		out = append(out, u)
	}
	return out, nil
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
	return out
}
