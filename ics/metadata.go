package ics

import (
	"iter"

	"github.com/robert-malhotra/go-ics/internal/meta"
)

// Value is the value of a header key: the tokens following the key-path.
type Value = meta.Value

// HistoryEntry is one history line.
type HistoryEntry = meta.HistoryEntry

// Value constructors.
var (
	StringValue = meta.String
	FieldsValue = meta.Fields
	IntsValue   = meta.Ints
	FloatsValue = meta.Floats
)

// Well-known key-paths.
const (
	KeyVersion         = meta.KeyVersion
	KeyFilename        = meta.KeyFilename
	KeyParameters      = meta.KeyParameters
	KeyOrder           = meta.KeyOrder
	KeySizes           = meta.KeySizes
	KeyCoordinates     = meta.KeyCoordinates
	KeySignificantBits = meta.KeySignificantBits
	KeyFormat          = meta.KeyFormat
	KeySign            = meta.KeySign
	KeyCompression     = meta.KeyCompression
	KeyByteOrder       = meta.KeyByteOrder
	KeySCILType        = meta.KeySCILType
	KeyOrigin          = meta.KeyOrigin
	KeyScale           = meta.KeyScale
	KeyUnits           = meta.KeyUnits
	KeyLabels          = meta.KeyLabels
	KeySensorType      = meta.KeySensorType
	KeySensorModel     = meta.KeySensorModel
)

// Metadata is the header of an ICS file: dotted, case-insensitive
// key-paths mapped to values, in file order, plus the history lines.
type Metadata struct {
	m *meta.Model
}

// NewMetadata returns empty metadata.
func NewMetadata() *Metadata {
	return &Metadata{m: meta.New()}
}

func (md *Metadata) model() *meta.Model {
	if md.m == nil {
		md.m = meta.New()
	}
	return md.m
}

// Get returns the value of key, or an error wrapping ErrMissingKey.
func (md *Metadata) Get(key string) (Value, error) {
	return md.model().Get(key)
}

// GetString returns the value of key joined with spaces, or "".
func (md *Metadata) GetString(key string) string {
	return md.model().GetOr(key, Value{}).String()
}

// Set inserts or overwrites key.
func (md *Metadata) Set(key string, v Value) {
	md.model().Set(key, v)
}

// SetString sets key to a single token.
func (md *Metadata) SetString(key, s string) {
	md.model().SetString(key, s)
}

// SetFields sets key to a list of tokens.
func (md *Metadata) SetFields(key string, fs ...string) {
	md.model().SetFields(key, fs...)
}

// SetInts sets key to a list of integers.
func (md *Metadata) SetInts(key string, vs ...int) {
	md.model().SetInts(key, vs...)
}

// SetFloats sets key to a list of floats.
func (md *Metadata) SetFloats(key string, vs ...float64) {
	md.model().SetFloats(key, vs...)
}

// Has reports whether key is set.
func (md *Metadata) Has(key string) bool {
	return md.model().Has(key)
}

// Delete removes key.
func (md *Metadata) Delete(key string) {
	md.model().Delete(key)
}

// Keys returns the keys in order.
func (md *Metadata) Keys() []string {
	return md.model().Keys()
}

// Len returns the number of keys, history excluded.
func (md *Metadata) Len() int {
	return md.model().Len()
}

// All iterates over keys and values in order.
func (md *Metadata) All() iter.Seq2[string, Value] {
	return md.model().All()
}

// AddHistory appends a history line.
func (md *Metadata) AddHistory(key, value string) {
	md.model().AddHistory(key, value)
}

// History returns the history lines in order.
func (md *Metadata) History() []HistoryEntry {
	return md.model().History()
}

// HistoryIter iterates over the history lines with the given key; an
// empty key selects all of them.
func (md *Metadata) HistoryIter(key string) iter.Seq[HistoryEntry] {
	return md.model().HistoryIter(key)
}

// ClearHistory removes every history line.
func (md *Metadata) ClearHistory() {
	md.model().ClearHistory()
}

// Clone returns a deep copy.
func (md *Metadata) Clone() *Metadata {
	return &Metadata{m: md.model().Clone()}
}
