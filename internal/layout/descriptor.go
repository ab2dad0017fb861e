package layout

import (
	"fmt"
	"math"

	"github.com/robert-malhotra/go-ics/internal/dtype"
	"github.com/robert-malhotra/go-ics/internal/icserr"
)

// Default axis metadata as libics writes it.
const (
	DefaultUnit      = "undefined"
	DefaultImelUnit  = "relative"
	DefaultImelLabel = "intensity"
	BitsAxis         = "bits"
)

var defaultNames = []string{"x", "y", "z", "t", "probe"}

// DefaultName returns the axis name used when layout.order is absent.
func DefaultName(i int) string {
	if i < len(defaultNames) {
		return defaultNames[i]
	}
	return fmt.Sprintf("dim_%d", i)
}

// Axis describes one dimension of the image.
type Axis struct {
	Name   string
	Label  string
	Unit   string
	Size   int
	Origin float64
	Scale  float64
}

// Descriptor is the ordered list of axes, first axis fastest varying, plus
// the intensity (bits) pseudo-axis carrying the pixel value calibration.
type Descriptor struct {
	Axes []Axis
	Imel Axis
}

// NewDescriptor returns a descriptor with default axis metadata.
func NewDescriptor(shape []int) Descriptor {
	axes := make([]Axis, len(shape))
	for i, n := range shape {
		axes[i] = Axis{
			Name:  DefaultName(i),
			Label: DefaultName(i),
			Unit:  DefaultUnit,
			Size:  n,
			Scale: 1,
		}
	}
	return Descriptor{Axes: axes, Imel: DefaultImel()}
}

// DefaultImel returns the default intensity axis.
func DefaultImel() Axis {
	return Axis{Name: BitsAxis, Label: DefaultImelLabel, Unit: DefaultImelUnit, Scale: 1}
}

// NumDims returns the number of axes.
func (d Descriptor) NumDims() int {
	return len(d.Axes)
}

// Shape returns the axis sizes.
func (d Descriptor) Shape() []int {
	shape := make([]int, len(d.Axes))
	for i, a := range d.Axes {
		shape[i] = a.Size
	}
	return shape
}

// NumElements returns the number of pixels.
func (d Descriptor) NumElements() int {
	n := 1
	for _, a := range d.Axes {
		n *= a.Size
	}
	return n
}

// Strides returns the byte stride of each axis for pixels of elemSize
// bytes.
func (d Descriptor) Strides(elemSize int) []int {
	strides := make([]int, len(d.Axes))
	s := elemSize
	for i, a := range d.Axes {
		strides[i] = s
		s *= a.Size
	}
	return strides
}

// ByteLen returns the length of the uncompressed block. d must have
// passed Validate; see CheckedByteLen.
func (d Descriptor) ByteLen(f dtype.Format) int {
	return d.NumElements() * f.ElementSize()
}

// CheckedNumElements returns the number of pixels. It fails like Validate,
// and when the product of the sizes overflows an int.
func (d Descriptor) CheckedNumElements() (int, error) {
	if len(d.Axes) == 0 {
		return 0, icserr.Key(icserr.ErrInconsistentLayout, "layout", "layout.sizes", "no dimensions")
	}
	n := 1
	for i, a := range d.Axes {
		if a.Size <= 0 {
			return 0, icserr.Key(icserr.ErrInconsistentLayout, "layout", "layout.sizes", "dimension %d has size %d", i, a.Size)
		}
		if n > math.MaxInt/a.Size {
			return 0, icserr.Key(icserr.ErrInconsistentLayout, "layout", "layout.sizes",
				"sizes %v overflow the pixel count", d.Shape())
		}
		n *= a.Size
	}
	return n, nil
}

// CheckedByteLen returns the length of the uncompressed block of f pixels,
// failing when the pixel count or the byte length overflows an int.
func (d Descriptor) CheckedByteLen(f dtype.Format) (int, error) {
	n, err := d.CheckedNumElements()
	if err != nil {
		return 0, err
	}
	size := f.ElementSize()
	if size > 0 && n > math.MaxInt/size {
		return 0, icserr.Key(icserr.ErrInconsistentLayout, "layout", "layout.sizes",
			"%d pixels of %d bytes overflow the block length", n, size)
	}
	return n * size, nil
}

// Validate checks that there is at least one axis, every size is positive
// and the pixel count fits in an int.
func (d Descriptor) Validate() error {
	_, err := d.CheckedNumElements()
	return err
}

// Clone returns a deep copy of d.
func (d Descriptor) Clone() Descriptor {
	return Descriptor{Axes: append([]Axis(nil), d.Axes...), Imel: d.Imel}
}

// SameShape reports whether d has exactly the given shape.
func (d Descriptor) SameShape(shape []int) bool {
	if len(shape) != len(d.Axes) {
		return false
	}
	for i, a := range d.Axes {
		if a.Size != shape[i] {
			return false
		}
	}
	return true
}
