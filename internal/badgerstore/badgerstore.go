// Package badgerstore implements the entity store on BadgerDB for deployments
// that want the dataset on disk. Rows are stored as JSON under
// "<collection>/<id>" keys; predicate fetches are prefix scans with an
// in-process filter, which is adequate for the small datasets this service
// targets.
package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	model "github.com/usergraph-io/usergraph/internal/model"
	store "github.com/usergraph-io/usergraph/internal/store"
)

type Store struct {
	db *badger.DB
}

var _ store.Store = (*Store)(nil)

// Open opens (or creates) a Badger database at dir.
func Open(dir string) (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Seed writes the given rows, replacing nothing that is not named. Subscription
// edges are keyed by their ordered pair so duplicates collapse.
func (s *Store) Seed(data SeedData) error {
	return s.db.Update(func(txn *badger.Txn) error {
		put := func(c store.Collection, id string, v any) error {
			raw, err := json.Marshal(v)
			if err != nil {
				return err
			}
			return txn.Set(key(c, id), raw)
		}
		for _, m := range data.MemberTypes {
			if err := put(store.MemberTypes, m.ID, m); err != nil {
				return err
			}
		}
		for _, u := range data.Users {
			if err := put(store.Users, u.ID, u); err != nil {
				return err
			}
		}
		for _, p := range data.Posts {
			if err := put(store.Posts, p.ID, p); err != nil {
				return err
			}
		}
		for _, p := range data.Profiles {
			if err := put(store.Profiles, p.ID, p); err != nil {
				return err
			}
		}
		for _, e := range data.Subscriptions {
			if err := put(store.Subscriptions, e.SubscriberID+"/"+e.AuthorID, e); err != nil {
				return err
			}
		}
		return nil
	})
}

// SeedData mirrors the memstore seed shape.
type SeedData struct {
	MemberTypes   []*model.MemberType   `json:"memberTypes"`
	Users         []*model.User         `json:"users"`
	Posts         []*model.Post         `json:"posts"`
	Profiles      []*model.Profile      `json:"profiles"`
	Subscriptions []*model.Subscription `json:"subscriptions"`
}

func key(c store.Collection, id string) []byte {
	return []byte(string(c) + "/" + id)
}

func (s *Store) GetByID(ctx context.Context, c store.Collection, id string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c == store.Subscriptions {
		return nil, fmt.Errorf("badgerstore: collection %q has no primary key lookup", c)
	}
	var out any
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(c, id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(raw []byte) error {
			v, derr := decode(c, raw)
			if derr != nil {
				return derr
			}
			out = v
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("badgerstore: get %s/%s: %w", c, id, err)
	}
	return out, nil
}

func (s *Store) GetWhere(ctx context.Context, c store.Collection, p *store.Predicate) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var want map[string]struct{}
	if p != nil {
		want = make(map[string]struct{}, len(p.In))
		for _, v := range p.In {
			want[v] = struct{}{}
		}
	}
	out := make([]any, 0, 8)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(string(c) + "/")
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var row any
			err := it.Item().Value(func(raw []byte) error {
				v, derr := decode(c, raw)
				if derr != nil {
					return derr
				}
				row = v
				return nil
			})
			if err != nil {
				return err
			}
			if p != nil {
				fv, ok := fieldValue(row, p.Field)
				if !ok {
					return fmt.Errorf("unsupported predicate field %q", p.Field)
				}
				if _, hit := want[fv]; !hit {
					continue
				}
			}
			out = append(out, row)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badgerstore: scan %s: %w", c, err)
	}
	return out, nil
}

func decode(c store.Collection, raw []byte) (any, error) {
	switch c {
	case store.MemberTypes:
		v := new(model.MemberType)
		return v, json.Unmarshal(raw, v)
	case store.Users:
		v := new(model.User)
		return v, json.Unmarshal(raw, v)
	case store.Posts:
		v := new(model.Post)
		return v, json.Unmarshal(raw, v)
	case store.Profiles:
		v := new(model.Profile)
		return v, json.Unmarshal(raw, v)
	case store.Subscriptions:
		v := new(model.Subscription)
		return v, json.Unmarshal(raw, v)
	default:
		return nil, fmt.Errorf("unknown collection %q", c)
	}
}

func fieldValue(row any, field string) (string, bool) {
	switch v := row.(type) {
	case *model.MemberType:
		if field == "id" {
			return v.ID, true
		}
	case *model.User:
		if field == "id" {
			return v.ID, true
		}
	case *model.Post:
		switch field {
		case "id":
			return v.ID, true
		case "authorId":
			return v.AuthorID, true
		}
	case *model.Profile:
		switch field {
		case "id":
			return v.ID, true
		case "userId":
			return v.UserID, true
		case "memberTypeId":
			return v.MemberTypeID, true
		}
	case *model.Subscription:
		switch field {
		case "subscriberId":
			return v.SubscriberID, true
		case "authorId":
			return v.AuthorID, true
		}
	}
	return "", false
}
