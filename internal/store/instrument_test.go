package store_test

import (
	"context"
	"errors"
	"testing"

	eventbus "github.com/usergraph-io/usergraph/internal/eventbus"
	events "github.com/usergraph-io/usergraph/internal/events"
	store "github.com/usergraph-io/usergraph/internal/store"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	byIDErr error
}

func (f *fakeStore) GetByID(ctx context.Context, c store.Collection, id string) (any, error) {
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	return struct{}{}, nil
}

func (f *fakeStore) GetWhere(ctx context.Context, c store.Collection, p *store.Predicate) ([]any, error) {
	return []any{1, 2, 3}, nil
}

func TestWithEventsPublishesFetchPairs(t *testing.T) {
	eventbus.Use(eventbus.New())
	defer eventbus.Use(nil)

	var starts []events.StoreFetchStart
	var finishes []events.StoreFetchFinish
	defer eventbus.Subscribe(func(ctx context.Context, e events.StoreFetchStart) { starts = append(starts, e) })()
	defer eventbus.Subscribe(func(ctx context.Context, e events.StoreFetchFinish) { finishes = append(finishes, e) })()

	s := store.WithEvents(&fakeStore{})
	ctx := context.Background()

	_, err := s.GetByID(ctx, store.Users, "u1")
	require.NoError(t, err)
	_, err = s.GetWhere(ctx, store.Posts, store.Eq("authorId", "u1"))
	require.NoError(t, err)

	require.Len(t, starts, 2)
	require.Len(t, finishes, 2)

	require.Equal(t, events.FetchByID, starts[0].Kind)
	require.Equal(t, "users", starts[0].Collection)
	require.Equal(t, 1, finishes[0].Rows)

	require.Equal(t, events.FetchWhere, starts[1].Kind)
	require.Equal(t, "authorId", starts[1].Field)
	require.Equal(t, 3, finishes[1].Rows)
}

func TestWithEventsPropagatesErrors(t *testing.T) {
	eventbus.Use(eventbus.New())
	defer eventbus.Use(nil)

	var finishes []events.StoreFetchFinish
	defer eventbus.Subscribe(func(ctx context.Context, e events.StoreFetchFinish) { finishes = append(finishes, e) })()

	boom := errors.New("boom")
	s := store.WithEvents(&fakeStore{byIDErr: boom})

	_, err := s.GetByID(context.Background(), store.Users, "u1")
	require.ErrorIs(t, err, boom)
	require.Len(t, finishes, 1)
	require.ErrorIs(t, finishes[0].Err, boom)
}
