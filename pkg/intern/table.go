package intern

import "github.com/Sumatoshi-tech/lariat/internal/hashutil"

const (
	// minTableBuckets is the smallest bucket count for the dedup index.
	minTableBuckets = 16

	// loadFactorNum and loadFactorDen define the 3/4 load factor above
	// which the index doubles its bucket count.
	loadFactorNum = 3
	loadFactorDen = 4
)

// tableEntry is one open-addressing slot: the cached content hash plus
// the assigned key. The string bytes themselves are never duplicated
// here; collisions are resolved by comparing against the arena-owned
// content for the candidate key.
type tableEntry struct {
	hash uint64
	key  Key // InvalidKey marks an empty slot.
}

// dedupTable maps string content to an already-assigned key. It is an
// open-addressing hash table with linear probing and power-of-two sizing.
// Entries are never deleted, so no tombstones are needed.
type dedupTable struct {
	entries []tableEntry
	mask    uint64
	count   int
}

// newDedupTable creates an index sized for the given number of distinct
// strings.
func newDedupTable(capacityHint int) *dedupTable {
	buckets := minTableBuckets
	for buckets*loadFactorNum < capacityHint*loadFactorDen {
		buckets *= 2
	}

	return &dedupTable{
		entries: make([]tableEntry, buckets),
		mask:    uint64(buckets - 1),
		count:   0,
	}
}

// len returns the number of indexed strings.
func (t *dedupTable) len() int {
	return t.count
}

// lookup returns the key previously inserted for content s, or InvalidKey
// when s has not been indexed. resolve fetches the canonical content for
// a candidate key; hash equality alone is never trusted.
func (t *dedupTable) lookup(hash uint64, s string, resolve func(Key) string) Key {
	idx := hashutil.Mix64(hash) & t.mask

	for {
		entry := t.entries[idx]
		if !entry.key.IsValid() {
			return InvalidKey
		}

		if entry.hash == hash && resolve(entry.key) == s {
			return entry.key
		}

		idx = (idx + 1) & t.mask
	}
}

// insert records the mapping from content with the given hash to key.
// The caller must have verified via lookup that the content is absent.
func (t *dedupTable) insert(hash uint64, key Key) {
	if (t.count+1)*loadFactorDen > len(t.entries)*loadFactorNum {
		t.rehash()
	}

	t.place(hash, key)
	t.count++
}

// place writes the entry into the first free probe slot.
func (t *dedupTable) place(hash uint64, key Key) {
	idx := hashutil.Mix64(hash) & t.mask

	for t.entries[idx].key.IsValid() {
		idx = (idx + 1) & t.mask
	}

	t.entries[idx] = tableEntry{hash: hash, key: key}
}

// rehash doubles the bucket count and re-places every entry by its cached
// hash. All existing key mappings are preserved; the content bytes are
// never re-read.
func (t *dedupTable) rehash() {
	old := t.entries

	t.entries = make([]tableEntry, len(old)*2)
	t.mask = uint64(len(t.entries) - 1)

	for _, entry := range old {
		if entry.key.IsValid() {
			t.place(entry.hash, entry.key)
		}
	}
}
