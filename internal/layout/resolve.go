package layout

import (
	"fmt"
	"strings"

	icsbinary "github.com/robert-malhotra/go-ics/internal/binary"
	"github.com/robert-malhotra/go-ics/internal/compression"
	"github.com/robert-malhotra/go-ics/internal/dtype"
	"github.com/robert-malhotra/go-ics/internal/icserr"
	"github.com/robert-malhotra/go-ics/internal/meta"
)

// Version is the ICS container version.
type Version uint8

const (
	// V1 stores the header in .ics and the data in a sibling .ids file.
	V1 Version = 1
	// V2 stores header and data in a single .ics file.
	V2 Version = 2
)

func (v Version) String() string {
	switch v {
	case V1:
		return "1.0"
	case V2:
		return "2.0"
	default:
		return fmt.Sprintf("Version(%d)", uint8(v))
	}
}

// ParseVersion converts an ics_version value.
func ParseVersion(s string) (Version, error) {
	switch strings.TrimSpace(s) {
	case "1.0", "1":
		return V1, nil
	case "2.0", "2":
		return V2, nil
	default:
		return 0, icserr.Key(icserr.ErrUnsupportedFormat, "resolve", meta.KeyVersion, "unknown version %q", s)
	}
}

// DefaultCoordinates is the coordinate system assumed when
// layout.coordinates is absent.
const DefaultCoordinates = "video"

// Resolved is the binary layout derived from a header.
type Resolved struct {
	Version     Version
	Desc        Descriptor
	Format      dtype.Format
	Compression compression.Method

	// DataFile is the source.file of a version 2.0 header; empty for
	// inline data and for version 1.0, whose data lives in the .ids file.
	DataFile string
	// DataOffset is where the (possibly compressed) block starts in its
	// file.
	DataOffset int64
	// DataLength is the uncompressed block length.
	DataLength int64
	// DeclaredLength is the source.length value, or -1.
	DeclaredLength int64

	SignificantBits int
	Coordinates     string

	// Ignored lists keys present in the header that have no effect.
	Ignored []string
}

// Resolve derives the binary layout from m. headerEnd is the offset just
// past the header's "end" line.
func Resolve(m *meta.Model, headerEnd int64) (*Resolved, error) {
	r := &Resolved{DeclaredLength: -1}

	v, err := m.Get(meta.KeyVersion)
	if err != nil {
		return nil, resolveErr(err)
	}
	if r.Version, err = ParseVersion(v.String()); err != nil {
		return nil, err
	}

	bits, desc, err := resolveAxes(m)
	if err != nil {
		return nil, err
	}
	r.Desc = desc

	if r.Format, err = resolveFormat(m, bits); err != nil {
		return nil, err
	}

	method := compression.None.String()
	if r.Version == V2 {
		cv, err := m.Get(meta.KeyCompression)
		if err != nil {
			return nil, resolveErr(err)
		}
		method = cv.Field(0)
	} else if cv := m.GetOr(meta.KeyCompression, meta.Value{}); !cv.IsZero() {
		method = cv.Field(0)
	}
	if r.Compression, err = compression.ParseMethod(method); err != nil {
		return nil, err
	}

	n, err := r.Desc.CheckedByteLen(r.Format)
	if err != nil {
		return nil, err
	}
	r.DataLength = int64(n)
	if err := r.resolveSource(m, headerEnd); err != nil {
		return nil, err
	}

	r.SignificantBits = bits
	if sv := m.GetOr(meta.KeySignificantBits, meta.Value{}); !sv.IsZero() {
		sb, err := sv.Int()
		if err != nil {
			return nil, icserr.Key(icserr.ErrMalformedHeader, "resolve", meta.KeySignificantBits, "%v", err)
		}
		if sb <= 0 || sb > bits {
			return nil, icserr.Key(icserr.ErrInconsistentLayout, "resolve", meta.KeySignificantBits,
				"%d significant bits in a %d bit pixel", sb, bits)
		}
		r.SignificantBits = sb
	}

	r.Coordinates = m.GetOr(meta.KeyCoordinates, meta.String(DefaultCoordinates)).String()
	return r, nil
}

// resolveErr gives a missing key error the resolve operation.
func resolveErr(err error) error {
	if e, ok := err.(*icserr.Error); ok {
		c := *e
		c.Op = "resolve"
		return &c
	}
	return err
}

func resolveAxes(m *meta.Model) (int, Descriptor, error) {
	sv, err := m.Get(meta.KeySizes)
	if err != nil {
		return 0, Descriptor{}, resolveErr(err)
	}
	sizes, err := sv.Ints()
	if err != nil {
		return 0, Descriptor{}, icserr.Key(icserr.ErrMalformedHeader, "resolve", meta.KeySizes, "%v", err)
	}
	if len(sizes) < 2 {
		return 0, Descriptor{}, icserr.Key(icserr.ErrInconsistentLayout, "resolve", meta.KeySizes,
			"need the bit width and at least one dimension, got %d entries", len(sizes))
	}

	if pv := m.GetOr(meta.KeyParameters, meta.Value{}); !pv.IsZero() {
		n, err := pv.Int()
		if err != nil {
			return 0, Descriptor{}, icserr.Key(icserr.ErrMalformedHeader, "resolve", meta.KeyParameters, "%v", err)
		}
		if n != len(sizes) {
			return 0, Descriptor{}, icserr.Key(icserr.ErrInconsistentLayout, "resolve", meta.KeyParameters,
				"%d parameters but %d sizes", n, len(sizes))
		}
	}

	desc, err := DescriptorFrom(m, sizes[1:])
	if err != nil {
		return 0, Descriptor{}, err
	}
	return sizes[0], desc, nil
}

// DescriptorFrom builds the descriptor of an image of the given shape,
// taking axis names from layout.order and calibration from the parameter
// keys of m.
func DescriptorFrom(m *meta.Model, shape []int) (Descriptor, error) {
	desc := NewDescriptor(shape)
	if err := desc.Validate(); err != nil {
		return Descriptor{}, err
	}
	n := len(shape) + 1

	if ov := m.GetOr(meta.KeyOrder, meta.Value{}); !ov.IsZero() {
		names := ov.Fields()
		if len(names) != n {
			return Descriptor{}, icserr.Key(icserr.ErrInconsistentLayout, "resolve", meta.KeyOrder,
				"%d names but %d sizes", len(names), n)
		}
		if !strings.EqualFold(names[0], BitsAxis) {
			return Descriptor{}, icserr.Key(icserr.ErrInconsistentLayout, "resolve", meta.KeyOrder,
				"first entry is %q, want %q", names[0], BitsAxis)
		}
		for i, name := range names[1:] {
			desc.Axes[i].Name = name
			desc.Axes[i].Label = name
		}
	}

	if err := applyParameters(m, &desc, n); err != nil {
		return Descriptor{}, err
	}
	return desc, nil
}

// applyParameters fills origin, scale, units and labels. Entry 0 belongs
// to the bits axis. Missing trailing entries keep their defaults.
func applyParameters(m *meta.Model, desc *Descriptor, n int) error {
	axis := func(i int) *Axis {
		if i == 0 {
			return &desc.Imel
		}
		return &desc.Axes[i-1]
	}

	for _, key := range []string{meta.KeyOrigin, meta.KeyScale} {
		v := m.GetOr(key, meta.Value{})
		if v.IsZero() {
			continue
		}
		fs, err := v.Floats()
		if err != nil {
			return icserr.Key(icserr.ErrMalformedHeader, "resolve", key, "%v", err)
		}
		for i := 0; i < len(fs) && i < n; i++ {
			if key == meta.KeyOrigin {
				axis(i).Origin = fs[i]
			} else {
				axis(i).Scale = fs[i]
			}
		}
	}

	for _, key := range []string{meta.KeyUnits, meta.KeyLabels} {
		fs := m.GetOr(key, meta.Value{}).Fields()
		for i := 0; i < len(fs) && i < n; i++ {
			if key == meta.KeyUnits {
				axis(i).Unit = fs[i]
			} else {
				axis(i).Label = fs[i]
			}
		}
	}
	return nil
}

func resolveFormat(m *meta.Model, bits int) (dtype.Format, error) {
	fv, err := m.Get(meta.KeyFormat)
	if err != nil {
		return dtype.Format{}, resolveErr(err)
	}
	bv, err := m.Get(meta.KeyByteOrder)
	if err != nil {
		return dtype.Format{}, resolveErr(err)
	}
	list, err := bv.Ints()
	if err != nil {
		return dtype.Format{}, icserr.Key(icserr.ErrMalformedHeader, "resolve", meta.KeyByteOrder, "%v", err)
	}
	order, err := icsbinary.ParseOrderList(list)
	if err != nil {
		return dtype.Format{}, icserr.Key(icserr.ErrUnsupportedFormat, "resolve", meta.KeyByteOrder, "%v", err)
	}

	f, err := dtype.Parse(fv.Field(0), m.GetOr(meta.KeySign, meta.Value{}).Field(0), bits, order)
	if err != nil {
		return dtype.Format{}, err
	}
	if len(list) != f.ComponentSize() {
		return dtype.Format{}, icserr.Key(icserr.ErrInconsistentLayout, "resolve", meta.KeyByteOrder,
			"%d entries for %d byte components", len(list), f.ComponentSize())
	}
	return f, nil
}

func (r *Resolved) resolveSource(m *meta.Model, headerEnd int64) error {
	if r.Version == V1 {
		for _, k := range []string{meta.KeySourceFile, meta.KeySourceOffset, meta.KeySourceLength} {
			if m.Has(k) {
				r.Ignored = append(r.Ignored, k)
			}
		}
		return nil
	}

	r.DataOffset = headerEnd
	if fv := m.GetOr(meta.KeySourceFile, meta.Value{}); !fv.IsZero() {
		r.DataFile = fv.String()
		r.DataOffset = 0
	}
	if ov := m.GetOr(meta.KeySourceOffset, meta.Value{}); !ov.IsZero() {
		off, err := ov.Int64()
		if err != nil || off < 0 {
			return icserr.Key(icserr.ErrMalformedHeader, "resolve", meta.KeySourceOffset, "invalid offset %q", ov)
		}
		r.DataOffset = off
	}
	if lv := m.GetOr(meta.KeySourceLength, meta.Value{}); !lv.IsZero() {
		n, err := lv.Int64()
		if err != nil || n < 0 {
			return icserr.Key(icserr.ErrMalformedHeader, "resolve", meta.KeySourceLength, "invalid length %q", lv)
		}
		if n != r.DataLength {
			return icserr.Key(icserr.ErrInconsistentLayout, "resolve", meta.KeySourceLength,
				"declared %d bytes but the layout needs %d", n, r.DataLength)
		}
		r.DeclaredLength = n
	}
	return nil
}
