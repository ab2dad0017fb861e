package layout

import (
	icsbinary "github.com/robert-malhotra/go-ics/internal/binary"
	"github.com/robert-malhotra/go-ics/internal/compression"
	"github.com/robert-malhotra/go-ics/internal/dtype"
	"github.com/robert-malhotra/go-ics/internal/meta"
)

// Apply stores the keys describing a block of desc and f, compressed with
// method, into m. Keys already present keep their position in the model.
// Source keys are replaced: version 2.0 gets source.length, version 1.0
// gets none.
func Apply(m *meta.Model, v Version, desc Descriptor, f dtype.Format, method compression.Method) {
	m.SetString(meta.KeyVersion, v.String())

	sizes := make([]int, 0, desc.NumDims()+1)
	sizes = append(sizes, f.Bits)
	sizes = append(sizes, desc.Shape()...)
	m.SetInts(meta.KeyParameters, len(sizes))
	m.SetFields(meta.KeyOrder, axisNames(desc)...)
	m.SetInts(meta.KeySizes, sizes...)
	if !m.Has(meta.KeyCoordinates) {
		m.SetString(meta.KeyCoordinates, DefaultCoordinates)
	}
	if sb, err := m.GetOr(meta.KeySignificantBits, meta.Value{}).Int(); err != nil || sb <= 0 || sb > f.Bits {
		m.SetInts(meta.KeySignificantBits, f.Bits)
	}

	format, sign := f.Tokens()
	m.SetString(meta.KeyFormat, format)
	m.SetString(meta.KeySign, sign)
	m.SetString(meta.KeyCompression, method.String())
	m.SetInts(meta.KeyByteOrder, icsbinary.OrderList(f.Order, f.ComponentSize())...)
	if t, ok := dtype.SCILType(f, desc.NumDims()); ok {
		m.SetString(meta.KeySCILType, t)
	} else {
		m.Delete(meta.KeySCILType)
	}

	StoreAxes(m, desc)

	m.DeletePrefix("source")
	if v == V2 {
		m.SetInts(meta.KeySourceLength, desc.ByteLen(f))
	}
}

// StoreAxes writes the axis names and the parameter origin, scale, units
// and labels lists of desc into m.
func StoreAxes(m *meta.Model, desc Descriptor) {
	names := axisNames(desc)
	n := len(names)
	axes := append([]Axis{desc.Imel}, desc.Axes...)

	origin := make([]float64, n)
	scale := make([]float64, n)
	units := make([]string, n)
	labels := make([]string, n)
	for i, a := range axes {
		origin[i] = a.Origin
		scale[i] = a.Scale
		units[i] = orDefault(a.Unit, DefaultUnit)
		labels[i] = orDefault(a.Label, names[i])
	}
	units[0] = orDefault(desc.Imel.Unit, DefaultImelUnit)
	labels[0] = orDefault(desc.Imel.Label, DefaultImelLabel)

	m.SetFields(meta.KeyOrder, names...)
	m.SetFloats(meta.KeyOrigin, origin...)
	m.SetFloats(meta.KeyScale, scale...)
	m.SetFields(meta.KeyUnits, units...)
	m.SetFields(meta.KeyLabels, labels...)
}

func axisNames(desc Descriptor) []string {
	names := make([]string, 0, desc.NumDims()+1)
	names = append(names, BitsAxis)
	for i, a := range desc.Axes {
		names = append(names, orDefault(a.Name, DefaultName(i)))
	}
	return names
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
