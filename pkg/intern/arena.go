package intern

import "github.com/Sumatoshi-tech/lariat/pkg/safeconv"

const (
	// defaultBlockSize is the capacity of the first arena block.
	defaultBlockSize = 4096

	// maxBlockSize caps the doubling growth of standard blocks. Strings
	// longer than the current standard size get a dedicated block of
	// exactly their length instead.
	maxBlockSize = 1 << 20

	// emptySlotSize is the number of bytes an empty string occupies.
	// The slot keeps every entry at a distinct, stable arena address.
	emptySlotSize = 1

	// growthFactor doubles the standard block size after each allocation.
	growthFactor = 2
)

// arena is an append-only block allocator owning the canonical bytes of
// every interned string. Blocks are allocated with a fixed capacity and
// never grown or moved afterwards, so subslices handed out by store stay
// valid for the arena's lifetime.
type arena struct {
	blocks    [][]byte // Each block: len = bytes in use, cap = capacity.
	blockSize int      // Capacity of the next standard block.
	used      int      // Total bytes reserved across all blocks.
	limit     int      // Maximum total bytes the arena may own.
}

// newArena creates an arena whose first block will have the given
// capacity. limit bounds the total bytes owned; pass safeconv.MaxInt for
// an unbounded arena. The first block is allocated lazily on first store.
func newArena(blockSize, limit int) *arena {
	if blockSize <= 0 {
		blockSize = defaultBlockSize
	}

	if limit <= 0 {
		limit = safeconv.MaxInt
	}

	return &arena{
		blocks:    nil,
		blockSize: blockSize,
		used:      0,
		limit:     limit,
	}
}

// memoryUsage returns the total bytes the arena has reserved.
func (a *arena) memoryUsage() int {
	return a.used
}

// memoryLimit returns the configured maximum total bytes.
func (a *arena) memoryLimit() int {
	return a.limit
}

// blockCount returns the number of allocated blocks.
func (a *arena) blockCount() int {
	return len(a.blocks)
}

// store copies b into the arena and returns the arena-owned copy. The
// returned slice has its capacity clipped so callers cannot append into
// neighbouring entries. An empty input reserves a one-byte slot but
// returns an empty slice.
//
// On failure the arena is unchanged except for possibly holding spare
// block capacity that future stores will fill; no partial entry is ever
// visible.
func (a *arena) store(b []byte) ([]byte, error) {
	need := len(b)
	if need == 0 {
		need = emptySlotSize
	}

	idx := len(a.blocks) - 1
	if idx < 0 || cap(a.blocks[idx])-len(a.blocks[idx]) < need {
		var err error

		idx, err = a.grow(need)
		if err != nil {
			return nil, err
		}
	}

	cur := a.blocks[idx]
	start := len(cur)

	if len(b) == 0 {
		cur = append(cur, 0)
	} else {
		cur = append(cur, b...)
	}

	a.blocks[idx] = cur

	end := start + len(b)

	return cur[start:end:end], nil
}

// grow allocates a block with room for at least need bytes, honoring the
// memory limit and the doubling growth policy. It returns the index of
// the block the caller should store into.
func (a *arena) grow(need int) (int, error) {
	if need > safeconv.MaxInt-a.used {
		return 0, ErrFailedAllocation
	}

	size := a.blockSize

	// Oversized strings get a dedicated, exactly-sized block so a single
	// huge input does not permanently inflate the standard block size.
	if need > size {
		if a.used+need > a.limit {
			return 0, ErrMemoryLimitReached
		}

		return a.appendDedicatedBlock(need), nil
	}

	// When the standard block would cross the limit, fall back to the
	// remaining headroom if the string still fits.
	if a.used+size > a.limit {
		remaining := a.limit - a.used
		if remaining < need {
			return 0, ErrMemoryLimitReached
		}

		return a.appendStandardBlock(remaining), nil
	}

	idx := a.appendStandardBlock(size)
	a.blockSize = min(size*growthFactor, maxBlockSize)

	return idx, nil
}

// appendStandardBlock allocates a block of the given capacity at the end
// of the block list, where subsequent stores will keep filling it.
func (a *arena) appendStandardBlock(size int) int {
	a.blocks = append(a.blocks, make([]byte, 0, size))
	a.used += size

	return len(a.blocks) - 1
}

// appendDedicatedBlock allocates an exactly-sized block for one oversized
// string. It is inserted before the current standard block (when one
// exists) so that small strings keep filling the standard block.
func (a *arena) appendDedicatedBlock(size int) int {
	blk := make([]byte, 0, size)
	a.used += size

	if len(a.blocks) == 0 {
		a.blocks = append(a.blocks, blk)

		return 0
	}

	last := len(a.blocks) - 1
	a.blocks = append(a.blocks, a.blocks[last])
	a.blocks[last] = blk

	return last
}
