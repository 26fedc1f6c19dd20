package intern

import (
	"iter"

	"github.com/Sumatoshi-tech/lariat/internal/hashutil"
)

// Reader is a frozen view of an interner: string-to-key and key-to-string
// lookups keep working, but nothing new can be interned. Because it is
// immutable, a Reader is safe for concurrent use by multiple goroutines
// without locking.
type Reader struct {
	arena *arena
	table *dedupTable
	spans []string
}

// Freeze consumes the Rodeo and returns a Reader over its contents. The
// Rodeo is reset to empty; every previously issued key remains valid
// against the Reader. Arena ownership moves, so no string data is copied.
func (r *Rodeo) Freeze() *Reader {
	reader := &Reader{
		arena: r.arena,
		table: r.table,
		spans: r.spans,
	}

	fresh := New()
	r.arena = fresh.arena
	r.table = fresh.table
	r.keys = fresh.keys
	r.spans = fresh.spans
	r.hits = 0
	r.misses = 0

	return reader
}

// Len returns the number of interned strings.
func (rd *Reader) Len() int {
	return len(rd.spans)
}

// IsEmpty reports whether the Reader holds no strings.
func (rd *Reader) IsEmpty() bool {
	return len(rd.spans) == 0
}

// Get returns the key for s if it was interned before freezing, or
// InvalidKey.
func (rd *Reader) Get(s string) Key {
	return rd.table.lookup(hashutil.HashString(s), s, rd.resolveIndexed)
}

// Contains reports whether s was interned before freezing.
func (rd *Reader) Contains(s string) bool {
	return rd.Get(s).IsValid()
}

// ContainsKey reports whether key was issued by the source interner.
func (rd *Reader) ContainsKey(key Key) bool {
	return key.IsValid() && key.Index() < len(rd.spans)
}

// Resolve returns the canonical string for key; false for keys never
// issued by the source interner.
func (rd *Reader) Resolve(key Key) (string, bool) {
	if !rd.ContainsKey(key) {
		return "", false
	}

	return rd.spans[key.Index()], true
}

// All iterates over every interned (key, string) pair in insertion order.
func (rd *Reader) All() iter.Seq2[Key, string] {
	return func(yield func(Key, string) bool) {
		for i, s := range rd.spans {
			if !yield(keyForIndex(i), s) {
				return
			}
		}
	}
}

// IntoResolver drops the dedup index, leaving key-to-string resolution
// only at the smallest possible footprint.
func (rd *Reader) IntoResolver() *Resolver {
	return &Resolver{
		arena: rd.arena,
		spans: rd.spans,
	}
}

func (rd *Reader) resolveIndexed(key Key) string {
	return rd.spans[key.Index()]
}
