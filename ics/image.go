package ics

import (
	"encoding/binary"
	"reflect"

	icsbinary "github.com/robert-malhotra/go-ics/internal/binary"
	"github.com/robert-malhotra/go-ics/internal/dtype"
	"github.com/robert-malhotra/go-ics/internal/icserr"
	"github.com/robert-malhotra/go-ics/internal/layout"
)

// PixelFormat describes one pixel: kind, bit width and byte order.
type PixelFormat = dtype.Format

// Kind is the numeric class of a pixel.
type Kind = dtype.Kind

const (
	Unsigned = dtype.Unsigned
	Signed   = dtype.Signed
	Float    = dtype.Float
	Complex  = dtype.Complex
)

// Number is the set of Go types pixels convert to.
type Number = dtype.Number

// NewPixelFormat returns a validated pixel format in host order.
func NewPixelFormat(kind Kind, bits int) (PixelFormat, error) {
	return dtype.New(kind, bits, nil)
}

// Image is a dense N-dimensional pixel buffer. Shape lists the axis sizes
// with the first axis varying fastest in Data; Format.Order is the byte
// order of Data.
type Image struct {
	Shape  []int
	Format PixelFormat
	Data   []byte
}

// NewImage returns a zeroed image.
func NewImage(shape []int, f PixelFormat) (*Image, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	n, err := layout.NewDescriptor(shape).CheckedByteLen(f)
	if err != nil {
		return nil, err
	}
	return &Image{
		Shape:  append([]int(nil), shape...),
		Format: f,
		Data:   make([]byte, n),
	}, nil
}

// NewImageFrom returns an image holding values in host order. The pixel
// format follows T.
func NewImageFrom[T Number](shape []int, values []T) (*Image, error) {
	f, err := dtype.FromGoType(reflect.TypeFor[T](), icsbinary.NativeOrder())
	if err != nil {
		return nil, err
	}
	n, err := layout.NewDescriptor(shape).CheckedNumElements()
	if err != nil {
		return nil, err
	}
	if len(values) != n {
		return nil, icserr.New(icserr.ErrShapeMismatch, "image", "%d values for shape %v", len(values), shape)
	}
	data, err := dtype.EncodeSlice(f, values)
	if err != nil {
		return nil, err
	}
	return &Image{Shape: append([]int(nil), shape...), Format: f, Data: data}, nil
}

// ValuesOf converts the pixels of img to a new slice of T.
func ValuesOf[T Number](img *Image) ([]T, error) {
	n, err := img.check()
	if err != nil {
		return nil, err
	}
	return dtype.ConvertToSlice[T](img.Format, img.Data, n)
}

// Values converts the pixels to a slice of the Go type matching the pixel
// format, e.g. []uint16.
func (img *Image) Values() (any, error) {
	n, err := img.check()
	if err != nil {
		return nil, err
	}
	t, err := dtype.GoType(img.Format)
	if err != nil {
		return nil, err
	}
	dest := reflect.New(reflect.SliceOf(t))
	if err := dtype.Convert(img.Format, img.Data, n, dest.Interface()); err != nil {
		return nil, err
	}
	return dest.Elem().Interface(), nil
}

// NumElements returns the number of pixels, or 0 when a size is not
// positive or the count overflows an int.
func (img *Image) NumElements() int {
	n, err := layout.NewDescriptor(img.Shape).CheckedNumElements()
	if err != nil {
		return 0
	}
	return n
}

// check verifies that Data holds exactly the pixels Shape and Format
// describe, and returns the pixel count.
func (img *Image) check() (int, error) {
	if err := img.Format.Validate(); err != nil {
		return 0, err
	}
	desc := layout.NewDescriptor(img.Shape)
	want, err := desc.CheckedByteLen(img.Format)
	if err != nil {
		return 0, err
	}
	if len(img.Data) != want {
		return 0, icserr.New(icserr.ErrShapeMismatch, "image", "%d bytes for %v %s pixels (%d bytes)",
			len(img.Data), img.Shape, img.Format, want)
	}
	return desc.NumElements(), nil
}

// NumDims returns the number of axes.
func (img *Image) NumDims() int {
	return len(img.Shape)
}

// Strides returns the byte stride of each axis.
func (img *Image) Strides() []int {
	return layout.NewDescriptor(img.Shape).Strides(img.Format.ElementSize())
}

// WithOrder returns a copy of img with Data converted to order.
func (img *Image) WithOrder(order binary.ByteOrder) *Image {
	out := &Image{
		Shape:  append([]int(nil), img.Shape...),
		Format: img.Format.WithOrder(order),
		Data:   append([]byte(nil), img.Data...),
	}
	if !icsbinary.SameOrder(img.Format.Order, order) {
		icsbinary.Swap(out.Data, img.Format.ComponentSize())
	}
	return out
}
