package xipfs

import (
	"fmt"
	"io"

	reserr "github.com/provide-io/xipres/pkg/errors"
)

// File is a cursor over a Blob. A File is owned by one goroutine; distinct
// Files over the same blob never share a position.
type File struct {
	name     string
	store    *Store
	data     []byte
	pos      int64
	closed   bool
	writable bool
}

var (
	_ io.ReadSeekCloser = (*File)(nil)
	_ io.ReaderAt       = (*File)(nil)
	_ io.Writer         = (*File)(nil)
)

// Name returns the logical name the file was opened under.
func (f *File) Name() string {
	return f.name
}

// Size returns the blob length.
func (f *File) Size() int64 {
	return int64(len(f.data))
}

// WriteIntent reports whether the file was opened with a write mode.
func (f *File) WriteIntent() bool {
	return f.writable
}

// Seek moves the position. A target past the end is clamped to the end;
// a negative target is rejected and leaves the position unchanged.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	if f.unusable() {
		return 0, reserr.ErrClosed
	}

	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = f.pos
	case io.SeekEnd:
		base = f.Size()
	default:
		return f.pos, fmt.Errorf("%w: whence %d", reserr.ErrInvalidArgument, whence)
	}

	target := base + offset
	if target < 0 {
		return f.pos, fmt.Errorf("%w: seek to %d", reserr.ErrInvalidArgument, target)
	}
	if target > f.Size() {
		target = f.Size()
	}

	f.pos = target
	return f.pos, nil
}

// Tell returns the current position.
func (f *File) Tell() int64 {
	return f.pos
}

// ReadElements copies up to count elements of size bytes into dst, stopping
// at the end of the blob or of dst, and returns the number of whole elements
// copied. Partial trailing bytes are still copied and still advance the
// position. Reading at the end returns 0 and no error.
func (f *File) ReadElements(dst []byte, size, count int) (int, error) {
	if f.unusable() {
		return 0, reserr.ErrClosed
	}
	if size <= 0 || count <= 0 {
		return 0, nil
	}

	want := int64(size) * int64(count)
	if int64(count) != want/int64(size) {
		return 0, fmt.Errorf("%w: %d elements of %d bytes", reserr.ErrInvalidArgument, count, size)
	}

	n := f.copyOut(dst, want)
	return n / size, nil
}

// Read implements io.Reader.
func (f *File) Read(p []byte) (int, error) {
	if f.unusable() {
		return 0, reserr.ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}
	if f.pos >= f.Size() {
		return 0, io.EOF
	}
	return f.copyOut(p, int64(len(p))), nil
}

// ReadAt implements io.ReaderAt. It does not move the position.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if f.unusable() {
		return 0, reserr.ErrClosed
	}
	if off < 0 {
		return 0, fmt.Errorf("%w: offset %d", reserr.ErrInvalidArgument, off)
	}
	if off >= f.Size() {
		return 0, io.EOF
	}

	n := copy(p, f.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Write always fails: the blob lives in read-only flash.
func (f *File) Write(p []byte) (int, error) {
	if f.unusable() {
		return 0, reserr.ErrClosed
	}
	return 0, reserr.ErrReadOnly
}

// Close releases the handle and resets its position. The blob stays mapped.
// Closing twice is harmless.
func (f *File) Close() error {
	f.closed = true
	f.pos = 0
	return nil
}

// unusable reports whether the handle, or the store behind it, is closed.
func (f *File) unusable() bool {
	return f.closed || f.store.Closed()
}

func (f *File) copyOut(dst []byte, want int64) int {
	remaining := f.Size() - f.pos
	if want > remaining {
		want = remaining
	}
	if want > int64(len(dst)) {
		want = int64(len(dst))
	}

	n := copy(dst[:want], f.data[f.pos:f.pos+want])
	f.pos += int64(n)
	return n
}
