// Package codec turns the stored bytes of an ICS pixel block into a dense
// in-memory buffer and back: decompression, length checking and byte
// order conversion.
package codec

import (
	"bytes"
	"encoding/binary"
	"io"

	icsbinary "github.com/robert-malhotra/go-ics/internal/binary"
	"github.com/robert-malhotra/go-ics/internal/compression"
	"github.com/robert-malhotra/go-ics/internal/dtype"
	"github.com/robert-malhotra/go-ics/internal/icserr"
	"github.com/robert-malhotra/go-ics/internal/layout"
)

// Block is a dense pixel buffer, first axis fastest. Format.Order is the
// byte order of Data.
type Block struct {
	Data   []byte
	Format dtype.Format
	Desc   layout.Descriptor
}

// NewBlock checks that data holds exactly the pixels desc describes.
func NewBlock(data []byte, f dtype.Format, desc layout.Descriptor) (*Block, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	want, err := desc.CheckedByteLen(f)
	if err != nil {
		return nil, err
	}
	if len(data) != want {
		return nil, icserr.New(icserr.ErrShapeMismatch, "block", "%d bytes for %v %s pixels (%d bytes)",
			len(data), desc.Shape(), f, want)
	}
	return &Block{Data: data, Format: f, Desc: desc}, nil
}

// Decode decodes a stored block held in memory. See DecodeReader.
func Decode(raw []byte, desc layout.Descriptor, f dtype.Format, method compression.Method, want binary.ByteOrder) (*Block, error) {
	return DecodeReader(bytes.NewReader(raw), desc, f, method, want)
}

// DecodeReader reads one stored block from r: it decompresses exactly
// desc.ByteLen(f) bytes and converts them from f.Order to want. A nil want
// means host order.
func DecodeReader(r io.Reader, desc layout.Descriptor, f dtype.Format, method compression.Method, want binary.ByteOrder) (*Block, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if want == nil {
		want = icsbinary.NativeOrder()
	}

	n, err := desc.CheckedByteLen(f)
	if err != nil {
		return nil, err
	}
	data, err := compression.Decode(method, r, n)
	if err != nil {
		return nil, err
	}
	if !icsbinary.SameOrder(f.Order, want) {
		icsbinary.Swap(data, f.ComponentSize())
	}
	return &Block{Data: data, Format: f.WithOrder(want), Desc: desc}, nil
}

// EncodeOptions control how a block is stored.
type EncodeOptions struct {
	// Order is the stored byte order; nil keeps the block's order.
	Order  binary.ByteOrder
	Method compression.Method
	// Level is the compression level; compression.DefaultLevel selects
	// the codec default.
	Level int
}

// Encode returns the stored form of b. The block itself is not modified
// and encoding the same block twice gives identical bytes.
func Encode(b *Block, opts EncodeOptions) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := EncodeTo(&buf, b, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeTo writes the stored form of b to w and returns the stored format.
func EncodeTo(w io.Writer, b *Block, opts EncodeOptions) (dtype.Format, error) {
	if _, err := NewBlock(b.Data, b.Format, b.Desc); err != nil {
		return dtype.Format{}, err
	}
	c, err := compression.New(opts.Method, opts.Level)
	if err != nil {
		return dtype.Format{}, err
	}

	stored := b.Format
	data := b.Data
	if opts.Order != nil && !icsbinary.SameOrder(opts.Order, b.Format.Order) {
		data = bytes.Clone(b.Data)
		icsbinary.Swap(data, b.Format.ComponentSize())
		stored = stored.WithOrder(opts.Order)
	}
	if err := c.Encode(w, data); err != nil {
		return dtype.Format{}, &icserr.Error{Kind: icserr.ErrCorruptData, Op: "encode", Offset: -1, Err: err}
	}
	return stored, nil
}
