package intern

import (
	"iter"

	"github.com/Sumatoshi-tech/lariat/internal/hashutil"
)

// Rodeo is the single-threaded interner. It owns one key space, one block
// arena, and one dedup index. Created empty, it grows monotonically:
// entries are only ever inserted, never updated or removed.
//
// A Rodeo must not be shared between goroutines without external
// synchronization. See ThreadedRodeo for concurrent interning and Reader
// for contention-free concurrent lookups after interning is done.
type Rodeo struct {
	arena *arena
	table *dedupTable
	keys  keySpace
	spans []string // Key index -> view over arena-owned bytes.

	hits   uint64
	misses uint64
}

// New creates an empty interner.
func New(opts ...Option) *Rodeo {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Rodeo{
		arena: newArena(cfg.byteCapacity, cfg.memoryLimit),
		table: newDedupTable(cfg.capacity),
		keys:  newKeySpace(cfg.maxKeys),
		spans: make([]string, 0, cfg.capacity),
	}
}

// Len returns the number of distinct strings interned.
func (r *Rodeo) Len() int {
	return len(r.spans)
}

// IsEmpty reports whether nothing has been interned yet.
func (r *Rodeo) IsEmpty() bool {
	return len(r.spans) == 0
}

// MemoryUsage returns the total bytes the interner's arena has reserved.
func (r *Rodeo) MemoryUsage() int {
	return r.arena.memoryUsage()
}

// MemoryLimit returns the configured maximum total bytes.
func (r *Rodeo) MemoryLimit() int {
	return r.arena.memoryLimit()
}

// Get returns the key for s if it has been interned, or InvalidKey.
// It only probes the dedup index: no allocation, no failure.
func (r *Rodeo) Get(s string) Key {
	return r.table.lookup(hashutil.HashString(s), s, r.resolveIndexed)
}

// GetBytes is Get for a byte-slice input. The length defines the extent;
// interior zero bytes are significant.
func (r *Rodeo) GetBytes(b []byte) Key {
	return r.Get(bytesToString(b))
}

// Contains reports whether s has been interned.
func (r *Rodeo) Contains(s string) bool {
	return r.Get(s).IsValid()
}

// ContainsKey reports whether key was issued by this interner.
func (r *Rodeo) ContainsKey(key Key) bool {
	return key.IsValid() && key.Index() < len(r.spans)
}

// GetOrIntern returns the key for s, interning it first if needed.
//
// The operation is atomic: if any step fails no key is issued and the
// dedup index is unchanged, so previously interned strings resolve
// exactly as before. It is idempotent: once a string has been interned,
// every later call returns the same key without allocating.
func (r *Rodeo) GetOrIntern(s string) (Key, error) {
	hash := hashutil.HashString(s)

	key := r.table.lookup(hash, s, r.resolveIndexed)
	if key.IsValid() {
		r.hits++

		return key, nil
	}

	return r.intern(hash, stringToBytes(s))
}

// GetOrInternBytes is GetOrIntern for a byte-slice input.
func (r *Rodeo) GetOrInternBytes(b []byte) (Key, error) {
	s := bytesToString(b)
	hash := hashutil.HashString(s)

	key := r.table.lookup(hash, s, r.resolveIndexed)
	if key.IsValid() {
		r.hits++

		return key, nil
	}

	return r.intern(hash, b)
}

// intern runs the miss path: reserve key space, copy into the arena,
// issue the key, index the content. The key space is checked first so a
// doomed attempt never wastes arena memory.
func (r *Rodeo) intern(hash uint64, b []byte) (Key, error) {
	if r.keys.exhausted() {
		return InvalidKey, ErrKeySpaceExhausted
	}

	owned, err := r.arena.store(b)
	if err != nil {
		return InvalidKey, err
	}

	key, err := r.keys.issue()
	if err != nil {
		return InvalidKey, err
	}

	r.spans = append(r.spans, bytesToString(owned))
	r.table.insert(hash, key)
	r.misses++

	return key, nil
}

// Resolve returns the canonical string for key. The second result is
// false for InvalidKey and for keys never issued by this interner.
// The returned string shares the interner's arena memory and stays valid
// for the interner's lifetime.
func (r *Rodeo) Resolve(key Key) (string, bool) {
	if !r.ContainsKey(key) {
		return "", false
	}

	return r.spans[key.Index()], true
}

// ResolveBytes returns the canonical bytes for key. The slice is a view
// over arena memory and must not be modified.
func (r *Rodeo) ResolveBytes(key Key) ([]byte, bool) {
	s, ok := r.Resolve(key)
	if !ok {
		return nil, false
	}

	return stringToBytes(s), true
}

// All iterates over every interned (key, string) pair in insertion order.
func (r *Rodeo) All() iter.Seq2[Key, string] {
	return func(yield func(Key, string) bool) {
		for i, s := range r.spans {
			if !yield(keyForIndex(i), s) {
				return
			}
		}
	}
}

// resolveIndexed fetches the canonical content for a key known to be in
// the dedup index. Used as the comparison callback during probing.
func (r *Rodeo) resolveIndexed(key Key) string {
	return r.spans[key.Index()]
}
