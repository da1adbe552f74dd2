package events

import "time"

// FetchKind distinguishes the two store access shapes.
type FetchKind string

const (
	FetchByID  FetchKind = "byId"
	FetchWhere FetchKind = "where"
)

// StoreFetchStart is emitted before an entity store fetch.
type StoreFetchStart struct {
	Collection string
	Kind       FetchKind
	// Field is the predicate field for where-fetches; empty for unfiltered
	// scans and by-id lookups.
	Field string
}

// StoreFetchFinish is emitted after an entity store fetch completes.
type StoreFetchFinish struct {
	Collection string
	Kind       FetchKind
	Field      string
	Rows       int
	Err        error
	Duration   time.Duration
}
