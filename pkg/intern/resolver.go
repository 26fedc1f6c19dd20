package intern

import "iter"

// Resolver is the minimal frozen view of an interner: it can only turn
// keys back into strings. The dedup index is dropped entirely, making it
// the cheapest way to carry resolved vocabulary around. Immutable, so
// safe for concurrent use without locking.
type Resolver struct {
	arena *arena // Retained so the spans' backing memory stays owned here.
	spans []string
}

// IntoResolver consumes the Rodeo and returns a Resolver over its
// contents. The Rodeo is reset to empty; every previously issued key
// remains valid against the Resolver.
func (r *Rodeo) IntoResolver() *Resolver {
	return r.Freeze().IntoResolver()
}

// Len returns the number of interned strings.
func (rs *Resolver) Len() int {
	return len(rs.spans)
}

// IsEmpty reports whether the Resolver holds no strings.
func (rs *Resolver) IsEmpty() bool {
	return len(rs.spans) == 0
}

// ContainsKey reports whether key was issued by the source interner.
func (rs *Resolver) ContainsKey(key Key) bool {
	return key.IsValid() && key.Index() < len(rs.spans)
}

// Resolve returns the canonical string for key; false for keys never
// issued by the source interner.
func (rs *Resolver) Resolve(key Key) (string, bool) {
	if !rs.ContainsKey(key) {
		return "", false
	}

	return rs.spans[key.Index()], true
}

// All iterates over every interned (key, string) pair in insertion order.
func (rs *Resolver) All() iter.Seq2[Key, string] {
	return func(yield func(Key, string) bool) {
		for i, s := range rs.spans {
			if !yield(keyForIndex(i), s) {
				return
			}
		}
	}
}
