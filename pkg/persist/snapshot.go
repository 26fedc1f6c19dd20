package persist

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"iter"
	"os"

	"github.com/Sumatoshi-tech/lariat/pkg/intern"
	"github.com/Sumatoshi-tech/lariat/pkg/safeconv"
)

// snapshotMagic identifies a lariat snapshot payload.
var snapshotMagic = [4]byte{'L', 'A', 'R', '1'}

// Snapshot parse errors.
var (
	// ErrBadMagic is returned when a payload does not start with the
	// snapshot magic.
	ErrBadMagic = errors.New("persist: not a lariat snapshot")

	// ErrTruncated is returned when a payload ends before its declared
	// contents.
	ErrTruncated = errors.New("persist: truncated snapshot")
)

// Source is any interner view that can enumerate its contents in key
// order: *intern.Rodeo, *intern.Reader, and *intern.Resolver all qualify.
type Source interface {
	Len() int
	All() iter.Seq2[intern.Key, string]
}

// Marshal encodes the interned vocabulary as a flat binary payload:
// magic, entry count, per-entry byte lengths, concatenated content.
// Entries are written in insertion order, so restoring them re-issues
// identical keys.
func Marshal(src Source) []byte {
	var buf bytes.Buffer

	buf.Write(snapshotMagic[:])

	var scratch [4]byte

	binary.LittleEndian.PutUint32(scratch[:], safeconv.MustIntToUint32(src.Len()))
	buf.Write(scratch[:])

	for _, s := range src.All() {
		binary.LittleEndian.PutUint32(scratch[:], safeconv.MustIntToUint32(len(s)))
		buf.Write(scratch[:])
	}

	for _, s := range src.All() {
		buf.WriteString(s)
	}

	return buf.Bytes()
}

// Unmarshal rebuilds an interner from a payload produced by Marshal.
// Strings are re-interned in their original order, so every key issued by
// the snapshotted interner resolves identically against the result.
func Unmarshal(payload []byte, opts ...intern.Option) (*intern.Rodeo, error) {
	if len(payload) < len(snapshotMagic)+4 {
		return nil, ErrTruncated
	}

	if !bytes.Equal(payload[:len(snapshotMagic)], snapshotMagic[:]) {
		return nil, ErrBadMagic
	}

	rest := payload[len(snapshotMagic):]
	count := safeconv.MustUint32ToInt(binary.LittleEndian.Uint32(rest[:4]))
	rest = rest[4:]

	if len(rest) < count*4 {
		return nil, ErrTruncated
	}

	lengths := make([]int, count)
	total := 0

	for i := range count {
		lengths[i] = safeconv.MustUint32ToInt(binary.LittleEndian.Uint32(rest[i*4:]))
		total += lengths[i]
	}

	content := rest[count*4:]
	if len(content) != total {
		return nil, ErrTruncated
	}

	rodeo := intern.New(append([]intern.Option{intern.WithCapacity(count)}, opts...)...)

	for i := range count {
		entry := content[:lengths[i]]
		content = content[lengths[i]:]

		_, err := rodeo.GetOrInternBytes(entry)
		if err != nil {
			return nil, fmt.Errorf("restore entry %d: %w", i, err)
		}
	}

	return rodeo, nil
}

// Save writes a snapshot of src to path using the given codec.
func Save(path string, src Source, codec Codec) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}

	encodeErr := codec.Encode(file, Marshal(src))

	closeErr := file.Close()
	if encodeErr != nil {
		return fmt.Errorf("encode snapshot: %w", encodeErr)
	}

	if closeErr != nil {
		return fmt.Errorf("close snapshot: %w", closeErr)
	}

	return nil
}

// Load reads a snapshot from path and rebuilds the interner.
func Load(path string, codec Codec, opts ...intern.Option) (*intern.Rodeo, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer file.Close()

	payload, err := codec.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	return Unmarshal(payload, opts...)
}
