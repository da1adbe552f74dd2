// Package memstore provides an in-memory Store backed by plain slices. It is
// the default backend for development and the workhorse for tests. Rows are
// returned in insertion order, which callers must not rely on.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	model "github.com/usergraph-io/usergraph/internal/model"
	store "github.com/usergraph-io/usergraph/internal/store"
)

// Data is the seed shape accepted by New and LoadFile.
type Data struct {
	MemberTypes   []*model.MemberType   `json:"memberTypes"`
	Users         []*model.User         `json:"users"`
	Posts         []*model.Post         `json:"posts"`
	Profiles      []*model.Profile      `json:"profiles"`
	Subscriptions []*model.Subscription `json:"subscriptions"`
}

// Store is an immutable in-memory entity store.
type Store struct {
	data Data
}

var _ store.Store = (*Store)(nil)

// New builds a Store from seed data. The slices are not copied; callers must
// not mutate them afterwards.
func New(data Data) *Store { return &Store{data: data} }

// LoadFile reads a JSON seed file and builds a Store from it.
func LoadFile(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode seed %s: %w", path, err)
	}
	return New(data), nil
}

func (s *Store) GetByID(ctx context.Context, c store.Collection, id string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch c {
	case store.MemberTypes:
		for _, m := range s.data.MemberTypes {
			if m.ID == id {
				return m, nil
			}
		}
	case store.Users:
		for _, u := range s.data.Users {
			if u.ID == id {
				return u, nil
			}
		}
	case store.Posts:
		for _, p := range s.data.Posts {
			if p.ID == id {
				return p, nil
			}
		}
	case store.Profiles:
		for _, p := range s.data.Profiles {
			if p.ID == id {
				return p, nil
			}
		}
	default:
		return nil, fmt.Errorf("memstore: collection %q has no primary key lookup", c)
	}
	return nil, nil
}

func (s *Store) GetWhere(ctx context.Context, c store.Collection, p *store.Predicate) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch c {
	case store.MemberTypes:
		return filter(s.data.MemberTypes, p, func(m *model.MemberType, f string) (string, bool) {
			if f == "id" {
				return m.ID, true
			}
			return "", false
		})
	case store.Users:
		return filter(s.data.Users, p, func(u *model.User, f string) (string, bool) {
			if f == "id" {
				return u.ID, true
			}
			return "", false
		})
	case store.Posts:
		return filter(s.data.Posts, p, func(post *model.Post, f string) (string, bool) {
			switch f {
			case "id":
				return post.ID, true
			case "authorId":
				return post.AuthorID, true
			}
			return "", false
		})
	case store.Profiles:
		return filter(s.data.Profiles, p, func(pr *model.Profile, f string) (string, bool) {
			switch f {
			case "id":
				return pr.ID, true
			case "userId":
				return pr.UserID, true
			case "memberTypeId":
				return pr.MemberTypeID, true
			}
			return "", false
		})
	case store.Subscriptions:
		return filter(s.data.Subscriptions, p, func(e *model.Subscription, f string) (string, bool) {
			switch f {
			case "subscriberId":
				return e.SubscriberID, true
			case "authorId":
				return e.AuthorID, true
			}
			return "", false
		})
	default:
		return nil, fmt.Errorf("memstore: unknown collection %q", c)
	}
}

// filter applies p to rows using key to read the predicate field. A nil
// predicate matches everything; an unknown field is a caller bug.
func filter[T any](rows []T, p *store.Predicate, key func(T, string) (string, bool)) ([]any, error) {
	out := make([]any, 0, len(rows))
	if p == nil {
		for _, r := range rows {
			out = append(out, r)
		}
		return out, nil
	}
	want := make(map[string]struct{}, len(p.In))
	for _, v := range p.In {
		want[v] = struct{}{}
	}
	for _, r := range rows {
		v, ok := key(r, p.Field)
		if !ok {
			return nil, fmt.Errorf("memstore: unsupported predicate field %q", p.Field)
		}
		if _, hit := want[v]; hit {
			out = append(out, r)
		}
	}
	return out, nil
}
