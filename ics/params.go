package ics

import (
	"errors"

	"github.com/robert-malhotra/go-ics/internal/icserr"
	"github.com/robert-malhotra/go-ics/internal/layout"
	"github.com/robert-malhotra/go-ics/internal/meta"
)

// SetLayout describes an image of shape and pixel format f in md: the
// layout and representation keys plus default axis parameters. Axis names
// and parameters already present are kept when they match the number of
// axes. The container version and compression already in md are kept.
func (md *Metadata) SetLayout(f PixelFormat, shape []int) error {
	if err := f.Validate(); err != nil {
		return err
	}
	m := md.model()

	desc, err := layout.DescriptorFrom(m, shape)
	if err != nil {
		if !errors.Is(err, icserr.ErrInconsistentLayout) {
			return err
		}
		// Names and parameters left over from another shape.
		for _, k := range []string{meta.KeyOrder, meta.KeyOrigin, meta.KeyScale, meta.KeyUnits, meta.KeyLabels} {
			m.Delete(k)
		}
		desc = layout.NewDescriptor(shape)
		if err := desc.Validate(); err != nil {
			return err
		}
	}

	v := V2
	if s := m.GetOr(meta.KeyVersion, meta.Value{}).String(); s != "" {
		if v, err = layout.ParseVersion(s); err != nil {
			return err
		}
	}
	method := Uncompressed
	if s := m.GetOr(meta.KeyCompression, meta.Value{}).String(); s != "" {
		if method, err = ParseCompression(s); err != nil {
			return err
		}
	}
	layout.Apply(m, v, desc, f, method)
	return nil
}

// descriptor returns the axes described by layout.sizes and the parameter
// keys.
func (md *Metadata) descriptor() (layout.Descriptor, error) {
	m := md.model()
	sv, err := m.Get(meta.KeySizes)
	if err != nil {
		return layout.Descriptor{}, err
	}
	sizes, err := sv.Ints()
	if err != nil {
		return layout.Descriptor{}, icserr.Key(icserr.ErrMalformedHeader, "metadata", meta.KeySizes, "%v", err)
	}
	if len(sizes) < 2 {
		return layout.Descriptor{}, icserr.Key(icserr.ErrInconsistentLayout, "metadata", meta.KeySizes,
			"need the bit width and at least one dimension, got %d entries", len(sizes))
	}
	return layout.DescriptorFrom(m, sizes[1:])
}

func (md *Metadata) updateAxis(dim int, fn func(a *layout.Axis)) error {
	desc, err := md.descriptor()
	if err != nil {
		return err
	}
	if dim < 0 || dim >= desc.NumDims() {
		return icserr.New(icserr.ErrShapeMismatch, "metadata", "axis %d out of range [0,%d)", dim, desc.NumDims())
	}
	fn(&desc.Axes[dim])
	layout.StoreAxes(md.model(), desc)
	return nil
}

func (md *Metadata) axis(dim int) (layout.Axis, error) {
	desc, err := md.descriptor()
	if err != nil {
		return layout.Axis{}, err
	}
	if dim < 0 || dim >= desc.NumDims() {
		return layout.Axis{}, icserr.New(icserr.ErrShapeMismatch, "metadata", "axis %d out of range [0,%d)", dim, desc.NumDims())
	}
	return desc.Axes[dim], nil
}

// SetPosition sets the origin, pixel spacing and unit of axis dim.
// layout.sizes must be set.
func (md *Metadata) SetPosition(dim int, origin, scale float64, unit string) error {
	return md.updateAxis(dim, func(a *layout.Axis) {
		a.Origin = origin
		a.Scale = scale
		if unit == "" {
			unit = layout.DefaultUnit
		}
		a.Unit = unit
	})
}

// Position returns the origin, pixel spacing and unit of axis dim.
func (md *Metadata) Position(dim int) (origin, scale float64, unit string, err error) {
	a, err := md.axis(dim)
	if err != nil {
		return 0, 0, "", err
	}
	return a.Origin, a.Scale, a.Unit, nil
}

// SetOrder sets the name and label of axis dim. An empty label uses the
// name.
func (md *Metadata) SetOrder(dim int, name, label string) error {
	if name == "" {
		return icserr.Key(icserr.ErrMalformedHeader, "metadata", meta.KeyOrder, "empty axis name")
	}
	return md.updateAxis(dim, func(a *layout.Axis) {
		a.Name = name
		if label == "" {
			label = name
		}
		a.Label = label
	})
}

// Order returns the name and label of axis dim.
func (md *Metadata) Order(dim int) (name, label string, err error) {
	a, err := md.axis(dim)
	if err != nil {
		return "", "", err
	}
	return a.Name, a.Label, nil
}

// SetImelUnits sets the calibration of pixel values: value = origin +
// scale * stored, expressed in units.
func (md *Metadata) SetImelUnits(origin, scale float64, units string) error {
	desc, err := md.descriptor()
	if err != nil {
		return err
	}
	desc.Imel.Origin = origin
	desc.Imel.Scale = scale
	if units == "" {
		units = layout.DefaultImelUnit
	}
	desc.Imel.Unit = units
	layout.StoreAxes(md.model(), desc)
	return nil
}

// ImelUnits returns the calibration of pixel values.
func (md *Metadata) ImelUnits() (origin, scale float64, units string, err error) {
	desc, err := md.descriptor()
	if err != nil {
		return 0, 0, "", err
	}
	return desc.Imel.Origin, desc.Imel.Scale, desc.Imel.Unit, nil
}

// SetCoordinateSystem sets layout.coordinates. An empty value restores
// the default.
func (md *Metadata) SetCoordinateSystem(coord string) {
	if coord == "" {
		coord = layout.DefaultCoordinates
	}
	md.model().SetString(meta.KeyCoordinates, coord)
}

// CoordinateSystem returns layout.coordinates, "video" when absent.
func (md *Metadata) CoordinateSystem() string {
	if s := md.GetString(meta.KeyCoordinates); s != "" {
		return s
	}
	return layout.DefaultCoordinates
}

// SetSignificantBits sets the number of meaningful bits per pixel. Writes
// reset values larger than the pixel bit width.
func (md *Metadata) SetSignificantBits(n int) error {
	if n <= 0 {
		return icserr.Key(icserr.ErrInconsistentLayout, "metadata", meta.KeySignificantBits, "%d bits", n)
	}
	md.model().SetInts(meta.KeySignificantBits, n)
	return nil
}

// SignificantBits returns layout.significant_bits, falling back to the
// bit width in layout.sizes.
func (md *Metadata) SignificantBits() (int, error) {
	m := md.model()
	if v := m.GetOr(meta.KeySignificantBits, meta.Value{}); !v.IsZero() {
		n, err := v.Int()
		if err != nil {
			return 0, icserr.Key(icserr.ErrMalformedHeader, "metadata", meta.KeySignificantBits, "%v", err)
		}
		return n, nil
	}
	sv, err := m.Get(meta.KeySizes)
	if err != nil {
		return 0, err
	}
	sizes, err := sv.Ints()
	if err != nil || len(sizes) == 0 {
		return 0, icserr.Key(icserr.ErrMalformedHeader, "metadata", meta.KeySizes, "no bit width")
	}
	return sizes[0], nil
}
