// Package binary provides positioned byte I/O and byte-order handling for
// ICS header and data blocks.
package binary

import "io"

// Reader reads from an io.ReaderAt of known size with an independent
// position.
type Reader struct {
	r    io.ReaderAt
	size int64
	pos  int64
}

// NewReader creates a reader over the first size bytes of r.
func NewReader(r io.ReaderAt, size int64) *Reader {
	return &Reader{
		r:    r,
		size: size,
	}
}

// At returns a new reader positioned at the given offset.
// The new reader shares the underlying io.ReaderAt but has independent position.
func (r *Reader) At(offset int64) *Reader {
	return &Reader{
		r:    r.r,
		size: r.size,
		pos:  offset,
	}
}

// Size returns the size of the underlying data.
func (r *Reader) Size() int64 {
	return r.size
}

// Remaining returns the number of bytes between the position and the end.
func (r *Reader) Remaining() int64 {
	if r.pos >= r.size {
		return 0
	}
	return r.size - r.pos
}

// Section returns an io.Reader over the bytes from the current position to
// the end. Reading from it does not move r.
func (r *Reader) Section() io.Reader {
	return io.NewSectionReader(r.r, r.pos, r.Remaining())
}
