// Package intern provides a string interner: a store that deduplicates
// strings and hands back small, stable, copyable keys in their place, so
// that equality comparison, hashing, and storage of repeated string values
// become O(1) integer operations.
//
// A [Rodeo] interns strings into an append-only block arena and indexes
// them by content in a hash table that never duplicates the arena bytes.
// Interning and resolution are both O(1) amortized. Once a string has been
// interned its key and its resolved view stay valid for the lifetime of
// the Rodeo; entries are never moved, edited, or freed individually.
//
// A Rodeo is not safe for concurrent use. Freeze it into a [Reader] for
// contention-free lookups and resolutions from multiple goroutines, or
// into a [Resolver] for resolution-only access at minimum footprint. For
// concurrent interning use [ThreadedRodeo], which shards the arena and
// index across lock-protected segments.
package intern
