// Package executor implements a breadth-first, batch-friendly GraphQL query
// executor with explicit runtime hooks for synchronous resolution, depth-wise
// batching of store-backed work, and leaf serialization.
//
// # Overview
//
// The executor runs level by level:
//   - Synchronous ("physical") fields expand immediately without adding depth.
//   - Asynchronous (store-backed) fields encountered at the current depth are
//     collected and resolved in a single call to Runtime.BatchResolveAsync.
//   - Values complete per the GraphQL specification (lists, leafs, objects),
//     including Non-Null null-propagation.
//   - Located errors accumulate while sibling fields keep resolving (partial
//     success).
//
// Collecting a whole depth before flushing is the property the resolver
// runtime relies on to turn N same-shaped relation lookups into one predicate
// fetch against the entity store.
//
// # Preparation
//
// Before execution the executor selects the operation (by name, or by
// uniqueness when unnamed), coerces variables against the operation's
// variable definitions, and resolves the root type from the schema registry.
// Errors in any of these steps stop execution before any resolver runs.
//
// # Non-Null propagation
//
// When a Non-Null field yields null (or fails), the null propagates to the
// nearest nullable ancestor. Because async results complete out of band, the
// executor tombstones the nullified path prefix: queued tasks under it are
// dropped before the next flush, and late results under it are ignored.
package executor
