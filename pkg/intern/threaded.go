package intern

import (
	"sync"

	"github.com/Sumatoshi-tech/lariat/internal/hashutil"
	"github.com/Sumatoshi-tech/lariat/pkg/safeconv"
)

const (
	// defaultShards is the shard count for a ThreadedRodeo.
	defaultShards = 16

	// minShards is the lower bound on the shard count.
	minShards = 1
)

// WithShards sets the shard count for a ThreadedRodeo. The value is
// rounded up to a power of two. Ignored by the single-threaded Rodeo.
func WithShards(n int) Option {
	return func(c *config) {
		c.shards = max(n, minShards)
	}
}

// shard is one lock-protected segment of a ThreadedRodeo. Each shard owns
// an independent arena, dedup index, and slice of the key space.
type shard struct {
	mu    sync.RWMutex
	rodeo *Rodeo
}

// ThreadedRodeo is the sharded, thread-safe interner. Strings are routed
// to a shard by a prefix of their content hash; interning locks only that
// shard, so goroutines interning different content rarely contend.
// Lookups and resolutions take a shared lock.
//
// Keys interleave across shards, so unlike Rodeo they are not globally
// insertion-ordered. They remain non-zero, unique, and stable.
type ThreadedRodeo struct {
	shards    []*shard
	shardMask uint64
	shardBits uint
}

// NewThreaded creates an empty thread-safe interner. The configured
// memory limit and key-space cap are divided across shards, with the
// remainder going to the lowest-numbered shards, so the per-shard
// allowances sum to exactly the configured totals and the totals are
// never exceeded. A shard's slice of a cap can run out before the
// global total under skewed hashing; the error taxonomy is the same as
// Rodeo's when it does.
func NewThreaded(opts ...Option) *ThreadedRodeo {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	count := nextPowerOfTwo(cfg.shards)
	bits := trailingBits(count)

	capacity := max(cfg.capacity/count, 1)

	keyBase := cfg.maxKeys / uint32(count)
	keyRem := cfg.maxKeys % uint32(count)

	bounded := cfg.memoryLimit < safeconv.MaxInt
	memBase := cfg.memoryLimit / count
	memRem := cfg.memoryLimit % count

	shards := make([]*shard, count)
	for i := range shards {
		maxKeys := keyBase
		if uint32(i) < keyRem {
			maxKeys++
		}

		shardArena := newArena(cfg.byteCapacity, cfg.memoryLimit)
		if bounded {
			// Set directly: newArena treats a zero limit as unbounded,
			// but a shard with no byte allowance must reject every store.
			shardArena.limit = memBase
			if i < memRem {
				shardArena.limit++
			}
		}

		shards[i] = &shard{
			rodeo: &Rodeo{
				arena: shardArena,
				table: newDedupTable(capacity),
				keys:  newKeySpace(maxKeys),
				spans: make([]string, 0, capacity),
			},
		}
	}

	return &ThreadedRodeo{
		shards:    shards,
		shardMask: uint64(count - 1),
		shardBits: bits,
	}
}

// shardFor routes a content hash to its shard. The top bits of the mixed
// hash are used so the choice stays independent of the dedup index's
// bucket selection, which uses the low bits.
func (t *ThreadedRodeo) shardFor(hash uint64) uint64 {
	return (hashutil.Mix64(hash) >> (64 - t.shardBits)) & t.shardMask
}

// globalKey folds a shard ID into a shard-local key.
func (t *ThreadedRodeo) globalKey(local Key, shardID uint64) Key {
	return Key((uint64(local.Index())<<t.shardBits | shardID) + 1)
}

// splitKey recovers the shard ID and shard-local key from a global key.
func (t *ThreadedRodeo) splitKey(key Key) (uint64, Key) {
	raw := uint64(key) - 1

	return raw & t.shardMask, keyForIndex(int(raw >> t.shardBits))
}

// Get returns the key for s if it has been interned, or InvalidKey.
// Safe for concurrent use.
func (t *ThreadedRodeo) Get(s string) Key {
	hash := hashutil.HashString(s)
	shardID := t.shardFor(hash)
	sh := t.shards[shardID]

	sh.mu.RLock()
	local := sh.rodeo.Get(s)
	sh.mu.RUnlock()

	if !local.IsValid() {
		return InvalidKey
	}

	return t.globalKey(local, shardID)
}

// GetOrIntern returns the key for s, interning it first if needed. Safe
// for concurrent use; only the owning shard is locked during the miss
// path. The error taxonomy matches Rodeo.GetOrIntern, evaluated against
// the shard's slice of the configured limits.
func (t *ThreadedRodeo) GetOrIntern(s string) (Key, error) {
	hash := hashutil.HashString(s)
	shardID := t.shardFor(hash)
	sh := t.shards[shardID]

	sh.mu.Lock()
	local, err := sh.rodeo.GetOrIntern(s)
	sh.mu.Unlock()

	if err != nil {
		return InvalidKey, err
	}

	return t.globalKey(local, shardID), nil
}

// Resolve returns the canonical string for key; false for keys never
// issued by this interner. Safe for concurrent use. The returned string
// stays valid for the interner's lifetime.
func (t *ThreadedRodeo) Resolve(key Key) (string, bool) {
	if !key.IsValid() {
		return "", false
	}

	shardID, local := t.splitKey(key)
	sh := t.shards[shardID]

	sh.mu.RLock()
	s, ok := sh.rodeo.Resolve(local)
	sh.mu.RUnlock()

	return s, ok
}

// Contains reports whether s has been interned.
func (t *ThreadedRodeo) Contains(s string) bool {
	return t.Get(s).IsValid()
}

// Len returns the number of distinct strings interned across all shards.
func (t *ThreadedRodeo) Len() int {
	total := 0

	for _, sh := range t.shards {
		sh.mu.RLock()
		total += sh.rodeo.Len()
		sh.mu.RUnlock()
	}

	return total
}

// Stats aggregates statistics across all shards. MemoryLimit reports the
// sum of the per-shard limits, or MaxInt when unbounded.
func (t *ThreadedRodeo) Stats() Stats {
	var agg Stats

	unbounded := false

	for _, sh := range t.shards {
		sh.mu.RLock()
		st := sh.rodeo.Stats()
		sh.mu.RUnlock()

		agg.Interned += st.Interned
		agg.DedupHits += st.DedupHits
		agg.DedupMisses += st.DedupMisses
		agg.ArenaBytes += st.ArenaBytes
		agg.ArenaBlocks += st.ArenaBlocks

		if st.MemoryLimit == safeconv.MaxInt {
			unbounded = true
		} else {
			agg.MemoryLimit += st.MemoryLimit
		}
	}

	if unbounded {
		agg.MemoryLimit = safeconv.MaxInt
	}

	return agg
}

// nextPowerOfTwo rounds n up to the nearest power of two, minimum 1.
func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p *= 2
	}

	return p
}

// trailingBits returns log2 of a power-of-two count.
func trailingBits(n int) uint {
	bits := uint(0)
	for n > 1 {
		n >>= 1
		bits++
	}

	return bits
}
