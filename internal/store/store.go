// Package store defines the entity store boundary used by the resolver
// runtime. A store offers exactly two fetch shapes: a primary-key lookup and a
// predicate scan. Anything richer (caching, deduplication, retries) belongs to
// the layers above or below, not here.
package store

import (
	"context"
	"fmt"
)

// Collection names one of the entity or edge collections.
type Collection string

const (
	MemberTypes   Collection = "memberTypes"
	Posts         Collection = "posts"
	Profiles      Collection = "profiles"
	Users         Collection = "users"
	Subscriptions Collection = "subscriptions"
)

// Predicate is a simple equality or "field in set" condition. A nil Predicate
// matches every row of the collection. Field names follow the JSON names of
// the model structs ("authorId", "userId", "id", ...).
type Predicate struct {
	Field string
	In    []string
}

// Eq returns a predicate matching rows whose field equals value.
func Eq(field, value string) *Predicate { return &Predicate{Field: field, In: []string{value}} }

// In returns a predicate matching rows whose field is one of values.
func In(field string, values ...string) *Predicate { return &Predicate{Field: field, In: values} }

// Store is the persistence boundary. Implementations return model pointers
// (*model.User, *model.Post, ...) as their entity values.
//
// Contracts:
//   - GetByID returns (nil, nil) when no row matches; absence is not an error.
//   - GetWhere returns a possibly empty slice; its order is store-defined and
//     not guaranteed stable across calls. Callers must treat results as sets.
//   - Both calls may block; ctx cancellation must abort the fetch.
type Store interface {
	GetByID(ctx context.Context, c Collection, id string) (any, error)
	GetWhere(ctx context.Context, c Collection, p *Predicate) ([]any, error)
}

// IntegrityError reports a row that violates a data invariant the resolvers
// rely on, such as a self-subscription edge or a dangling foreign key. It is
// surfaced like a store failure because the data cannot be safely served.
type IntegrityError struct {
	Collection Collection
	Detail     string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity violation in %s: %s", e.Collection, e.Detail)
}

// Integrityf builds an IntegrityError with a formatted detail message.
func Integrityf(c Collection, format string, args ...any) error {
	return &IntegrityError{Collection: c, Detail: fmt.Sprintf(format, args...)}
}
