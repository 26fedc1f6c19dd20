package intern

import "unsafe"

// bytesToString returns a string sharing the memory of b. The bytes must
// never be modified afterwards; the arena guarantees that for interned
// content.
func bytesToString(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// stringToBytes returns a byte view sharing the memory of s. The result
// must be treated as read-only.
func stringToBytes(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
