// Package persist provides codec-based file persistence for interner
// snapshots: a flat binary image of the interned vocabulary that can be
// written raw or LZ4-compressed and later restored into a fresh interner.
package persist

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/Sumatoshi-tech/lariat/pkg/safeconv"
)

// File extensions for supported codecs.
const (
	rawExtension = ".lar"
	lz4Extension = ".lar.lz4"
)

// ErrCorruptPayload is returned when a compressed payload cannot be
// decoded back to its declared size.
var ErrCorruptPayload = errors.New("persist: corrupt payload")

// Codec defines how a snapshot payload is written to and read from disk.
type Codec interface {
	// Encode writes the payload to the writer.
	Encode(w io.Writer, payload []byte) error
	// Decode reads a payload previously written by Encode.
	Decode(r io.Reader) ([]byte, error)
	// Extension returns the file extension for this codec.
	Extension() string
}

// RawCodec implements Codec with no transformation.
type RawCodec struct{}

// NewRawCodec creates a pass-through codec.
func NewRawCodec() *RawCodec {
	return &RawCodec{}
}

// Encode implements Codec.Encode by writing the payload verbatim.
func (c *RawCodec) Encode(w io.Writer, payload []byte) error {
	_, err := w.Write(payload)
	if err != nil {
		return fmt.Errorf("raw encode: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode by reading the remaining stream.
func (c *RawCodec) Decode(r io.Reader) ([]byte, error) {
	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("raw decode: %w", err)
	}

	return payload, nil
}

// Extension implements Codec.Extension for raw snapshots.
func (c *RawCodec) Extension() string {
	return rawExtension
}

// LZ4Codec implements Codec using LZ4 block compression. The encoded
// form is two little-endian uint32 lengths (uncompressed, stored)
// followed by one block; incompressible payloads are stored verbatim.
type LZ4Codec struct{}

// NewLZ4Codec creates an LZ4 block codec.
func NewLZ4Codec() *LZ4Codec {
	return &LZ4Codec{}
}

// Encode implements Codec.Encode with LZ4 block compression.
func (c *LZ4Codec) Encode(w io.Writer, payload []byte) error {
	compressed := make([]byte, lz4.CompressBlockBound(len(payload)))

	written, err := lz4.CompressBlock(payload, compressed, nil)
	if err != nil {
		return fmt.Errorf("lz4 compress: %w", err)
	}

	// CompressBlock reports zero for incompressible input; fall back to
	// storing the payload verbatim.
	if written == 0 {
		compressed = payload
	} else {
		compressed = compressed[:written]
	}

	var header [8]byte

	binary.LittleEndian.PutUint32(header[:4], safeconv.MustIntToUint32(len(payload)))
	binary.LittleEndian.PutUint32(header[4:], safeconv.MustIntToUint32(len(compressed)))

	_, err = w.Write(header[:])
	if err != nil {
		return fmt.Errorf("lz4 encode header: %w", err)
	}

	_, err = w.Write(compressed)
	if err != nil {
		return fmt.Errorf("lz4 encode body: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode for LZ4 block compression.
func (c *LZ4Codec) Decode(r io.Reader) ([]byte, error) {
	var header [8]byte

	_, err := io.ReadFull(r, header[:])
	if err != nil {
		return nil, fmt.Errorf("lz4 decode header: %w", err)
	}

	rawLen := safeconv.MustUint32ToInt(binary.LittleEndian.Uint32(header[:4]))
	compLen := safeconv.MustUint32ToInt(binary.LittleEndian.Uint32(header[4:]))

	compressed := make([]byte, compLen)

	_, err = io.ReadFull(r, compressed)
	if err != nil {
		return nil, fmt.Errorf("lz4 decode body: %w", err)
	}

	// Incompressible payloads were stored verbatim.
	if compLen == rawLen {
		return compressed, nil
	}

	payload := make([]byte, rawLen)

	n, err := lz4.UncompressBlock(compressed, payload)
	if err != nil {
		return nil, fmt.Errorf("lz4 uncompress: %w", err)
	}

	if n != rawLen {
		return nil, ErrCorruptPayload
	}

	return payload, nil
}

// Extension implements Codec.Extension for LZ4 snapshots.
func (c *LZ4Codec) Extension() string {
	return lz4Extension
}
