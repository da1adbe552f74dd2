package store

import (
	"context"
	"time"

	eventbus "github.com/usergraph-io/usergraph/internal/eventbus"
	events "github.com/usergraph-io/usergraph/internal/events"
)

// WithEvents wraps s so every fetch publishes StoreFetchStart/Finish events on
// the global event bus. The wrapper adds no behavior of its own.
func WithEvents(s Store) Store { return &eventStore{next: s} }

type eventStore struct {
	next Store
}

func (e *eventStore) GetByID(ctx context.Context, c Collection, id string) (any, error) {
	start := time.Now()
	eventbus.Publish(ctx, events.StoreFetchStart{Collection: string(c), Kind: events.FetchByID})
	v, err := e.next.GetByID(ctx, c, id)
	n := 0
	if v != nil {
		n = 1
	}
	eventbus.Publish(ctx, events.StoreFetchFinish{
		Collection: string(c),
		Kind:       events.FetchByID,
		Rows:       n,
		Err:        err,
		Duration:   time.Since(start),
	})
	return v, err
}

func (e *eventStore) GetWhere(ctx context.Context, c Collection, p *Predicate) ([]any, error) {
	start := time.Now()
	field := ""
	if p != nil {
		field = p.Field
	}
	eventbus.Publish(ctx, events.StoreFetchStart{Collection: string(c), Kind: events.FetchWhere, Field: field})
	rows, err := e.next.GetWhere(ctx, c, p)
	eventbus.Publish(ctx, events.StoreFetchFinish{
		Collection: string(c),
		Kind:       events.FetchWhere,
		Field:      field,
		Rows:       len(rows),
		Err:        err,
		Duration:   time.Since(start),
	})
	return rows, err
}
