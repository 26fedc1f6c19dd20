package intern_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/lariat/pkg/intern"
)

const (
	// exhaustionCap is the key-space capacity for exhaustion tests.
	exhaustionCap = 4

	// tinyLimit is a byte limit smaller than the strings that trip it.
	tinyLimit = 16

	// manyStrings drives growth across multiple arena blocks and rehashes.
	manyStrings = 10_000
)

func TestRodeo_Scenario(t *testing.T) {
	t.Parallel()

	rodeo := intern.New()

	k1, err := rodeo.GetOrIntern("hello")
	require.NoError(t, err)
	require.True(t, k1.IsValid())

	k2, err := rodeo.GetOrIntern("world")
	require.NoError(t, err)
	require.True(t, k2.IsValid())
	require.NotEqual(t, k1, k2)

	again, err := rodeo.GetOrIntern("hello")
	require.NoError(t, err)
	assert.Equal(t, k1, again)

	resolved, ok := rodeo.Resolve(k1)
	require.True(t, ok)
	assert.Equal(t, "hello", resolved)

	assert.Equal(t, intern.InvalidKey, rodeo.Get("missing"))
}

func TestRodeo_Idempotence(t *testing.T) {
	t.Parallel()

	rodeo := intern.New()

	first, err := rodeo.GetOrIntern("repeated")
	require.NoError(t, err)

	bytesAfterFirst := rodeo.MemoryUsage()

	for range 100 {
		key, internErr := rodeo.GetOrIntern("repeated")
		require.NoError(t, internErr)
		assert.Equal(t, first, key)
	}

	assert.Equal(t, bytesAfterFirst, rodeo.MemoryUsage(),
		"re-interning must not grow the arena")
	assert.Equal(t, 1, rodeo.Len())
}

func TestRodeo_RoundTrip(t *testing.T) {
	t.Parallel()

	rodeo := intern.New()

	inputs := []string{"", "a", "hello", "with spaces", "unicode: héllo wörld",
		"interior\x00zero", "\x00", "trailing\x00"}

	keys := make([]intern.Key, len(inputs))

	for i, s := range inputs {
		key, err := rodeo.GetOrIntern(s)
		require.NoError(t, err)

		keys[i] = key
	}

	for i, s := range inputs {
		resolved, ok := rodeo.Resolve(keys[i])
		require.True(t, ok)
		assert.Equal(t, s, resolved)
	}
}

func TestRodeo_MissBeforeIntern(t *testing.T) {
	t.Parallel()

	rodeo := intern.New()

	assert.Equal(t, intern.InvalidKey, rodeo.Get("never seen"))
	assert.False(t, rodeo.Contains("never seen"))

	_, err := rodeo.GetOrIntern("never seen")
	require.NoError(t, err)

	assert.True(t, rodeo.Contains("never seen"))
}

func TestRodeo_Distinctness(t *testing.T) {
	t.Parallel()

	rodeo := intern.New()

	seen := make(map[intern.Key]string)

	inputs := []string{"a", "b", "ab", "a\x00b", "ab\x00", "\x00ab", "", " "}

	for _, s := range inputs {
		key, err := rodeo.GetOrIntern(s)
		require.NoError(t, err)

		prev, dup := seen[key]
		require.False(t, dup, "key for %q already assigned to %q", s, prev)

		seen[key] = s
	}
}

func TestRodeo_KeySpaceExhaustion(t *testing.T) {
	t.Parallel()

	rodeo := intern.New(intern.WithMaxKeys(exhaustionCap))

	keys := make([]intern.Key, exhaustionCap)

	for i := range exhaustionCap {
		key, err := rodeo.GetOrIntern(fmt.Sprintf("s%d", i))
		require.NoError(t, err)

		keys[i] = key
	}

	_, err := rodeo.GetOrIntern("one too many")
	require.ErrorIs(t, err, intern.ErrKeySpaceExhausted)

	// Prior keys still resolve, and re-interning existing content works.
	for i, key := range keys {
		resolved, ok := rodeo.Resolve(key)
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("s%d", i), resolved)
	}

	again, err := rodeo.GetOrIntern("s0")
	require.NoError(t, err)
	assert.Equal(t, keys[0], again)
}

func TestRodeo_MemoryLimitReached(t *testing.T) {
	t.Parallel()

	rodeo := intern.New(
		intern.WithByteCapacity(tinyLimit),
		intern.WithMemoryLimit(tinyLimit),
	)

	key, err := rodeo.GetOrIntern("small")
	require.NoError(t, err)

	_, err = rodeo.GetOrIntern("this string is far longer than the limit")
	require.ErrorIs(t, err, intern.ErrMemoryLimitReached)

	// The failure leaves existing entries resolvable.
	resolved, ok := rodeo.Resolve(key)
	require.True(t, ok)
	assert.Equal(t, "small", resolved)

	// And the failed string was not indexed.
	assert.Equal(t, intern.InvalidKey, rodeo.Get("this string is far longer than the limit"))
}

func TestRodeo_ResolveUnknownKeys(t *testing.T) {
	t.Parallel()

	rodeo := intern.New()

	_, err := rodeo.GetOrIntern("only entry")
	require.NoError(t, err)

	_, ok := rodeo.Resolve(intern.InvalidKey)
	assert.False(t, ok)

	_, ok = rodeo.Resolve(intern.Key(2))
	assert.False(t, ok, "key never issued must not resolve")

	_, ok = rodeo.Resolve(intern.Key(999))
	assert.False(t, ok)
}

func TestRodeo_GetOrInternBytes(t *testing.T) {
	t.Parallel()

	rodeo := intern.New()

	buf := []byte("mutable input")

	key, err := rodeo.GetOrInternBytes(buf)
	require.NoError(t, err)

	// The interner owns its own copy; mutating the caller's buffer must
	// not change the canonical content.
	buf[0] = 'X'

	resolved, ok := rodeo.Resolve(key)
	require.True(t, ok)
	assert.Equal(t, "mutable input", resolved)

	assert.Equal(t, key, rodeo.GetBytes([]byte("mutable input")))

	got, ok := rodeo.ResolveBytes(key)
	require.True(t, ok)
	assert.Equal(t, []byte("mutable input"), got)
}

func TestRodeo_ManyStrings(t *testing.T) {
	t.Parallel()

	rodeo := intern.New()

	keys := make([]intern.Key, manyStrings)

	for i := range manyStrings {
		key, err := rodeo.GetOrIntern(fmt.Sprintf("string-number-%d", i))
		require.NoError(t, err)

		keys[i] = key
	}

	require.Equal(t, manyStrings, rodeo.Len())

	st := rodeo.Stats()
	assert.Greater(t, st.ArenaBlocks, 1, "expected growth across blocks")

	for i := range manyStrings {
		resolved, ok := rodeo.Resolve(keys[i])
		require.True(t, ok)
		require.Equal(t, fmt.Sprintf("string-number-%d", i), resolved)
	}
}

func TestRodeo_InsertionOrderIteration(t *testing.T) {
	t.Parallel()

	rodeo := intern.New()

	inputs := []string{"first", "second", "third"}
	for _, s := range inputs {
		_, err := rodeo.GetOrIntern(s)
		require.NoError(t, err)
	}

	var gotKeys []intern.Key

	var gotStrings []string

	for key, s := range rodeo.All() {
		gotKeys = append(gotKeys, key)
		gotStrings = append(gotStrings, s)
	}

	assert.Equal(t, inputs, gotStrings)
	assert.IsIncreasing(t, gotKeys)
}

func TestRodeo_Stats(t *testing.T) {
	t.Parallel()

	rodeo := intern.New()

	_, err := rodeo.GetOrIntern("x")
	require.NoError(t, err)

	_, err = rodeo.GetOrIntern("x")
	require.NoError(t, err)

	_, err = rodeo.GetOrIntern("y")
	require.NoError(t, err)

	st := rodeo.Stats()
	assert.Equal(t, 2, st.Interned)
	assert.Equal(t, uint64(1), st.DedupHits)
	assert.Equal(t, uint64(2), st.DedupMisses)
	assert.Greater(t, st.ArenaBytes, 0)
	assert.InDelta(t, 1.0/3.0, st.DedupRatio(), 1e-9)
}

func TestReader_FreezeKeepsKeysValid(t *testing.T) {
	t.Parallel()

	rodeo := intern.New()

	k1, err := rodeo.GetOrIntern("hello")
	require.NoError(t, err)

	k2, err := rodeo.GetOrIntern("world")
	require.NoError(t, err)

	reader := rodeo.Freeze()

	// The source interner is reset; the reader owns the contents.
	assert.True(t, rodeo.IsEmpty())
	assert.Equal(t, 2, reader.Len())

	resolved, ok := reader.Resolve(k1)
	require.True(t, ok)
	assert.Equal(t, "hello", resolved)

	assert.Equal(t, k2, reader.Get("world"))
	assert.Equal(t, intern.InvalidKey, reader.Get("missing"))
}

func TestReader_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	rodeo := intern.New()

	const entries = 1000

	keys := make([]intern.Key, entries)

	for i := range entries {
		key, err := rodeo.GetOrIntern(fmt.Sprintf("entry-%d", i))
		require.NoError(t, err)

		keys[i] = key
	}

	reader := rodeo.Freeze()

	var wg sync.WaitGroup

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range entries {
				s, ok := reader.Resolve(keys[i])
				if !ok || s != fmt.Sprintf("entry-%d", i) {
					t.Errorf("resolve mismatch for entry %d", i)

					return
				}

				if reader.Get(s) != keys[i] {
					t.Errorf("get mismatch for entry %d", i)

					return
				}
			}
		}()
	}

	wg.Wait()
}

func TestResolver_ResolveOnly(t *testing.T) {
	t.Parallel()

	rodeo := intern.New()

	key, err := rodeo.GetOrIntern("kept")
	require.NoError(t, err)

	resolver := rodeo.IntoResolver()

	resolved, ok := resolver.Resolve(key)
	require.True(t, ok)
	assert.Equal(t, "kept", resolved)

	_, ok = resolver.Resolve(intern.InvalidKey)
	assert.False(t, ok)

	assert.Equal(t, 1, resolver.Len())
}
