// Package xipfs exposes one memory-mapped asset blob as a read-only,
// seekable file.
//
// The blob stays in mapped flash for the life of the process. Opening the
// logical file hands out a cursor over it; nothing is copied into RAM until
// the caller reads into its own buffer.
package xipfs

import (
	"bytes"
	"fmt"

	reserr "github.com/provide-io/xipres/pkg/errors"
)

// DefaultMagic is the signature of an internal WAD.
const DefaultMagic = "IWAD"

// Blob is a validated, immutable view of the asset bytes.
type Blob struct {
	data  []byte
	magic string
}

// NewBlob checks that data starts with magic (DefaultMagic when empty).
// A mismatch is fatal: the partition holds something other than the asset.
func NewBlob(data []byte, magic string) (*Blob, error) {
	if magic == "" {
		magic = DefaultMagic
	}

	if len(data) < len(magic) {
		return nil, fmt.Errorf("%w: blob is %d bytes, shorter than %q", reserr.ErrInvalidMagic, len(data), magic)
	}
	if !bytes.Equal(data[:len(magic)], []byte(magic)) {
		return nil, fmt.Errorf("%w: want %q, got %q", reserr.ErrInvalidMagic, magic, printable(data[:len(magic)]))
	}

	return &Blob{data: data, magic: magic}, nil
}

// Len returns the blob length in bytes.
func (b *Blob) Len() int64 {
	return int64(len(b.data))
}

// Magic returns the validated signature.
func (b *Blob) Magic() string {
	return b.magic
}

// Bytes returns the underlying mapped bytes. Callers must not modify them.
func (b *Blob) Bytes() []byte {
	return b.data
}

func printable(b []byte) string {
	out := make([]byte, len(b))
	for i, c := range b {
		if c < 0x20 || c > 0x7e {
			c = '.'
		}
		out[i] = c
	}
	return string(out)
}
