package intern

import "github.com/Sumatoshi-tech/lariat/pkg/safeconv"

// defaultStringCapacity sizes the dedup index and key-to-span slice for a
// fresh interner.
const defaultStringCapacity = 512

// config collects the tunables shared by Rodeo and ThreadedRodeo.
type config struct {
	memoryLimit  int
	maxKeys      uint32
	capacity     int
	byteCapacity int
	shards       int
}

func defaultConfig() config {
	return config{
		memoryLimit:  safeconv.MaxInt,
		maxKeys:      maxKeyCount,
		capacity:     defaultStringCapacity,
		byteCapacity: defaultBlockSize,
		shards:       defaultShards,
	}
}

// Option configures a Rodeo or ThreadedRodeo.
type Option func(*config)

// WithMemoryLimit caps the total bytes the interner may own. Interning a
// string that would push the arena past the limit fails with
// ErrMemoryLimitReached. Values <= 0 mean unbounded (the default).
func WithMemoryLimit(bytes int) Option {
	return func(c *config) {
		if bytes > 0 {
			c.memoryLimit = bytes
		} else {
			c.memoryLimit = safeconv.MaxInt
		}
	}
}

// WithMaxKeys caps the number of distinct keys the interner may issue.
// Interning the (n+1)th distinct string fails with ErrKeySpaceExhausted.
// The default is the full 32-bit key space.
func WithMaxKeys(n uint32) Option {
	return func(c *config) {
		if n > 0 {
			c.maxKeys = n
		}
	}
}

// WithCapacity hints the expected number of distinct strings, pre-sizing
// the dedup index to avoid early rehashes.
func WithCapacity(strings int) Option {
	return func(c *config) {
		if strings > 0 {
			c.capacity = strings
		}
	}
}

// WithByteCapacity sets the capacity of the first arena block.
// The default is 4096 bytes.
func WithByteCapacity(bytes int) Option {
	return func(c *config) {
		if bytes > 0 {
			c.byteCapacity = bytes
		}
	}
}
