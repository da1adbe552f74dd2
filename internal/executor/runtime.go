package executor

import (
	"context"
)

// Runtime is the host integration surface for field resolution. The resolver
// runtime in graphrt implements it against the entity store; tests implement
// it with MockRuntime.
//
// General contract
//   - The Executor performs breadth-first execution. At each depth it drains
//     all synchronous fields first via ResolveSync, then calls
//     BatchResolveAsync ONCE with every async task collected at that depth.
//     The next depth does not begin until those results are completed. This
//     single flush per depth is what lets an implementation turn N same-shaped
//     relation fetches into one predicate query.
//   - ResolveSync is never invoked for fields marked async, and
//     BatchResolveAsync only runs when at least one async field was collected.
//   - Errors from either method become located GraphQL errors. If the field's
//     type is Non-Null, the null propagates to the nearest nullable ancestor.
//   - Implementations must be stateless or otherwise concurrency-safe, and
//     must not mutate source or args values.
//
// Identifiers: objectType is the GraphQL type name ("User"), field the field
// name on it ("posts"); for root fields objectType is "Query" and source nil.
// Args are already-coerced Go values.
//
// Partial success: BatchResolveAsync returns one result per task, in task
// order (results[i] corresponds to tasks[i]); failures are independent.
//
// Cancellation: the Executor filters out tasks under nullified paths before
// flushing, so implementations only see live tasks and need only respect ctx.
type Runtime interface {
	// ResolveSync resolves a synchronous field value immediately, without
	// touching the store. Return (nil, nil) to produce a GraphQL null.
	ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error)

	// BatchResolveAsync resolves one execution depth of async field tasks.
	// Implementations may group by (objectType, field) and fetch each group
	// with a single store call. Requirements:
	//   - len(results) == len(tasks)
	//   - results[i] corresponds to tasks[i]
	//   - errors are reported per element, never by failing the whole batch
	BatchResolveAsync(ctx context.Context, tasks []AsyncResolveTask) []AsyncResolveResult

	// SerializeLeafValue coerces a scalar value into a JSON-safe Go value.
	SerializeLeafValue(ctx context.Context, scalarTypeName string, value any) (any, error)
}

// AsyncResolveTask is one pending store-backed field resolution.
type AsyncResolveTask struct {
	// ObjectType is the parent GraphQL object type name for the field.
	ObjectType string
	// Field is the GraphQL field name to resolve.
	Field string
	// Source is the parent object value (nil for root fields).
	Source any
	// Args are the field arguments, coerced to Go values per the schema.
	Args map[string]any
}

// AsyncResolveResult carries the raw value or the per-task failure.
type AsyncResolveResult struct {
	Value any
	Error error
}
