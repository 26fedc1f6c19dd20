package intern

import "math"

// Key is an opaque handle identifying one interned string. Keys are
// non-zero, densely assigned in insertion order, and never reused while
// the owning interner is alive. The zero value is reserved as the
// "not found" sentinel.
type Key uint32

// InvalidKey is the reserved sentinel returned by lookups that miss.
// It is never assigned to real content.
const InvalidKey Key = 0

// maxKeyCount is the number of distinct keys a 32-bit key space can issue
// (indices 0 through math.MaxUint32-1, keys 1 through math.MaxUint32).
const maxKeyCount = uint32(math.MaxUint32)

// IsValid reports whether the key could have been issued by an interner.
func (k Key) IsValid() bool {
	return k != InvalidKey
}

// Index returns the zero-based insertion index of the key.
// The result is meaningless for InvalidKey.
func (k Key) Index() int {
	return int(k) - 1
}

// keyForIndex converts a zero-based insertion index into a Key.
// Index 0 maps to Key(1) so that the zero Key stays reserved.
func keyForIndex(index int) Key {
	return Key(index + 1)
}

// keySpace issues a strictly increasing sequence of non-zero keys,
// bounded by a configurable capacity.
type keySpace struct {
	next uint32 // Index of the next key to issue.
	cap  uint32 // Maximum number of issuable keys.
}

// newKeySpace creates a key space able to issue up to maxKeys keys.
func newKeySpace(maxKeys uint32) keySpace {
	return keySpace{next: 0, cap: maxKeys}
}

// exhausted reports whether the next issue call would fail.
func (ks *keySpace) exhausted() bool {
	return ks.next >= ks.cap
}

// issue returns the next key, or ErrKeySpaceExhausted when the capacity
// has been reached. Previously issued keys remain valid after a failure.
func (ks *keySpace) issue() (Key, error) {
	if ks.exhausted() {
		return InvalidKey, ErrKeySpaceExhausted
	}

	key := Key(ks.next + 1)
	ks.next++

	return key, nil
}
