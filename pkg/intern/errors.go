package intern

import "errors"

// Sentinel errors for interning failures. None of them corrupt existing
// state: after any failure every previously issued key resolves exactly
// as before.
var (
	// ErrMemoryLimitReached is returned when storing a string would exceed
	// the configured memory limit. The interner remains usable; smaller
	// inputs may still succeed.
	ErrMemoryLimitReached = errors.New("intern: memory limit reached")

	// ErrKeySpaceExhausted is returned when no more distinct keys can be
	// issued. Existing keys and lookups keep working, but no new distinct
	// string can be interned.
	ErrKeySpaceExhausted = errors.New("intern: key space exhausted")

	// ErrFailedAllocation is returned when the requested arena growth
	// cannot be represented by the platform's address space.
	ErrFailedAllocation = errors.New("intern: allocation failed")
)
