package dtype

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"strings"

	"golang.org/x/exp/constraints"

	icsbinary "github.com/robert-malhotra/go-ics/internal/binary"
	"github.com/robert-malhotra/go-ics/internal/icserr"
)

// Kind is the numeric class of a pixel.
type Kind uint8

const (
	Unsigned Kind = iota
	Signed
	Float
	Complex
)

func (k Kind) String() string {
	switch k {
	case Unsigned:
		return "unsigned"
	case Signed:
		return "signed"
	case Float:
		return "float"
	case Complex:
		return "complex"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Number is the set of Go types a pixel converts to.
type Number interface {
	constraints.Integer | constraints.Float | constraints.Complex
}

// Format describes one pixel: its class, total bit width and the byte order
// of each component.
type Format struct {
	Kind  Kind
	Bits  int
	Order binary.ByteOrder
}

// New returns a validated format. A nil order means host order.
func New(kind Kind, bits int, order binary.ByteOrder) (Format, error) {
	if order == nil {
		order = icsbinary.NativeOrder()
	}
	f := Format{Kind: kind, Bits: bits, Order: order}
	if err := f.Validate(); err != nil {
		return Format{}, err
	}
	return f, nil
}

// Validate checks the bit width against the kind.
func (f Format) Validate() error {
	ok := false
	switch f.Kind {
	case Unsigned, Signed:
		ok = f.Bits == 8 || f.Bits == 16 || f.Bits == 32 || f.Bits == 64
	case Float:
		ok = f.Bits == 32 || f.Bits == 64
	case Complex:
		ok = f.Bits == 64 || f.Bits == 128
	}
	if !ok {
		return icserr.New(icserr.ErrUnsupportedFormat, "format", "%s pixels of %d bits", f.Kind, f.Bits)
	}
	if f.Order == nil {
		return icserr.New(icserr.ErrUnsupportedFormat, "format", "no byte order")
	}
	return nil
}

// ElementSize returns the size of a single pixel in bytes.
func (f Format) ElementSize() int {
	return f.Bits / 8
}

// ComponentSize returns the size of the unit the byte order applies to:
// the element size, or half of it for complex pixels.
func (f Format) ComponentSize() int {
	if f.Kind == Complex {
		return f.Bits / 16
	}
	return f.Bits / 8
}

// WithOrder returns f stored in order.
func (f Format) WithOrder(order binary.ByteOrder) Format {
	f.Order = order
	return f
}

// Equal reports whether f and o describe the same pixel layout.
func (f Format) Equal(o Format) bool {
	if f.Kind != o.Kind || f.Bits != o.Bits {
		return false
	}
	if f.Order == nil || o.Order == nil {
		return f.Order == nil && o.Order == nil
	}
	return f.ComponentSize() == 1 || icsbinary.SameOrder(f.Order, o.Order)
}

// String returns the Go name of the pixel type, e.g. "uint16".
func (f Format) String() string {
	switch f.Kind {
	case Unsigned:
		return fmt.Sprintf("uint%d", f.Bits)
	case Signed:
		return fmt.Sprintf("int%d", f.Bits)
	case Float:
		return fmt.Sprintf("float%d", f.Bits)
	case Complex:
		return fmt.Sprintf("complex%d", f.Bits)
	default:
		return f.Kind.String()
	}
}

// Parse builds a format from the representation.format and
// representation.sign header values. An empty sign means signed.
func Parse(format, sign string, bits int, order binary.ByteOrder) (Format, error) {
	var kind Kind
	switch strings.ToLower(format) {
	case "integer":
		switch strings.ToLower(sign) {
		case "", "signed":
			kind = Signed
		case "unsigned":
			kind = Unsigned
		default:
			return Format{}, icserr.Key(icserr.ErrUnsupportedFormat, "format", "representation.sign", "unknown sign %q", sign)
		}
	case "real", "float":
		kind = Float
	case "complex":
		kind = Complex
	default:
		return Format{}, icserr.Key(icserr.ErrUnsupportedFormat, "format", "representation.format", "unknown format %q", format)
	}
	return New(kind, bits, order)
}

// Tokens returns the representation.format and representation.sign
// header values for f.
func (f Format) Tokens() (format, sign string) {
	switch f.Kind {
	case Unsigned:
		return "integer", "unsigned"
	case Signed:
		return "integer", "signed"
	case Float:
		return "real", "signed"
	default:
		return "complex", "signed"
	}
}

// SCILType returns the SCIL_TYPE tag libics writes for the format and
// dimensionality, or false when no tag applies.
func SCILType(f Format, ndims int) (string, bool) {
	var t string
	switch {
	case (f.Kind == Unsigned || f.Kind == Signed) && f.Bits <= 16:
		t = "g"
	case f.Kind == Float && f.Bits == 32:
		t = "f"
	case f.Kind == Complex && f.Bits == 64:
		t = "c"
	default:
		return "", false
	}
	switch ndims {
	case 1, 2:
		return t + "2d", true
	case 3:
		return t + "3d", true
	default:
		return "", false
	}
}

// GoType returns the Go reflect.Type that corresponds to the format.
func GoType(f Format) (reflect.Type, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	switch f.Kind {
	case Unsigned:
		return [...]reflect.Type{
			reflect.TypeFor[uint8](), reflect.TypeFor[uint16](), nil, reflect.TypeFor[uint32](),
			nil, nil, nil, reflect.TypeFor[uint64](),
		}[f.Bits/8-1], nil
	case Signed:
		return [...]reflect.Type{
			reflect.TypeFor[int8](), reflect.TypeFor[int16](), nil, reflect.TypeFor[int32](),
			nil, nil, nil, reflect.TypeFor[int64](),
		}[f.Bits/8-1], nil
	case Float:
		if f.Bits == 32 {
			return reflect.TypeFor[float32](), nil
		}
		return reflect.TypeFor[float64](), nil
	default:
		if f.Bits == 64 {
			return reflect.TypeFor[complex64](), nil
		}
		return reflect.TypeFor[complex128](), nil
	}
}

// FromGoType derives a format from a Go type, or from the element type of a
// slice, array or pointer to either.
func FromGoType(t reflect.Type, order binary.ByteOrder) (Format, error) {
	for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return New(Unsigned, int(t.Size())*8, order)
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return New(Signed, int(t.Size())*8, order)
	case reflect.Float32, reflect.Float64:
		return New(Float, int(t.Size())*8, order)
	case reflect.Complex64, reflect.Complex128:
		return New(Complex, int(t.Size())*8, order)
	default:
		return Format{}, icserr.New(icserr.ErrUnsupportedFormat, "format", "unsupported Go type %v", t)
	}
}
