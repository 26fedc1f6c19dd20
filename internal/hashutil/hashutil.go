// Package hashutil provides the hash functions shared by the dedup index
// and the sharded interner: a 64-bit FNV-1a content hash and the
// splitmix64 finalizer for bucket and shard mixing.
package hashutil

// FNV-1a 64-bit parameters.
const (
	// fnvOffset64 is the FNV-1a 64-bit offset basis.
	fnvOffset64 = 14695981039346656037

	// fnvPrime64 is the FNV-1a 64-bit prime.
	fnvPrime64 = 1099511628211
)

// Splitmix64 finalizer constants by Vigna (2014), full-avalanche mixing
// across all 64 bits.
const (
	// MixShift1 is the first right-shift in the splitmix64 finalizer.
	MixShift1 = 30

	// MixMul1 is the first multiplier in the splitmix64 finalizer.
	MixMul1 = 0xbf58476d1ce4e5b9

	// MixShift2 is the second right-shift in the splitmix64 finalizer.
	MixShift2 = 27

	// MixMul2 is the second multiplier in the splitmix64 finalizer.
	MixMul2 = 0x94d049bb133111eb

	// MixShift3 is the third right-shift in the splitmix64 finalizer.
	MixShift3 = 31
)

// Mix64 applies the splitmix64 finalizer for full-avalanche mixing.
// This is a pure output function — it does NOT advance any state.
func Mix64(v uint64) uint64 {
	v ^= v >> MixShift1
	v *= MixMul1
	v ^= v >> MixShift2
	v *= MixMul2
	v ^= v >> MixShift3

	return v
}

// HashString computes a 64-bit FNV-1a hash of the given string without
// allocating. Interior zero bytes participate like any other byte.
func HashString(s string) uint64 {
	h := uint64(fnvOffset64)

	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= fnvPrime64
	}

	return h
}

// HashBytes computes a 64-bit FNV-1a hash of the given data.
func HashBytes(data []byte) uint64 {
	h := uint64(fnvOffset64)

	for _, b := range data {
		h ^= uint64(b)
		h *= fnvPrime64
	}

	return h
}
